package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment variables read outside of viper.
type Env struct {
	// ConfigHome is searched first for speaks.yml.
	ConfigHome string `env:"SPEAKS_CONFIG_HOME"`
	// Debug raises the log level.
	Debug bool `env:"SPEAKS_DEBUG"`
	// NoColor turns console styling off when set to any value.
	NoColor string `env:"NO_COLOR"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return e, nil
}

// ColorDisabled reports whether NO_COLOR is set.
func (e Env) ColorDisabled() bool {
	return e.NoColor != ""
}
