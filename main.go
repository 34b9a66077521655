// Package main provides the entry point for the speaks CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/operavondervollmer/speaks/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	voiceName  string

	settings config.Settings
	environ  config.Env

	rootCmd = &cobra.Command{
		Use:   "speaks",
		Short: "Speak text on the output device of your choice",
		Long: paragraph(
			fmt.Sprintf("\nRender text to speech and play it, %s.", keyword("one utterance at a time")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	e, err := config.ParseEnv()
	if err != nil {
		return err //nolint:wrapcheck
	}
	environ = e

	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	s, err := config.Load(viper.GetViper())
	if err != nil {
		return err //nolint:wrapcheck
	}
	settings = s

	if settings.Debug || environ.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Settings loaded", "model", settings.Model, "voice", settings.Voice, "config", viper.ConfigFileUsed())
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("model", "m", "1", `model to use: "1"/"espeak" or "2"/"piper", empty to be asked`)
	flags.Int("voice", -1, "zero-based voice index, -1 for the backend default")
	flags.StringVar(&voiceName, "voice-name", "", "pick the voice whose name best matches")
	flags.Int("speaker-index", -1, "output device index (requires --speaker-name)")
	flags.String("speaker-name", "", "output device name (requires --speaker-index)")
	flags.String("file", "", "directory of "+config.SpeakerFileName+" (default: next to the executable)")
	flags.Bool("strip-markdown", false, "strip markdown syntax before speaking")
	flags.Duration("render-timeout", 0, "bound each synthesis (0 disables the limit)")
	flags.String("cache-size", "0", `keep rendered audio in memory for repeated text, e.g. "16MB"`)
	flags.Bool("debug", false, "log at debug level")

	// Config bindings
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("speaker.index", flags.Lookup("speaker-index"))
	_ = viper.BindPFlag("speaker.name", flags.Lookup("speaker-name"))
	_ = viper.BindPFlag("speaker.file", flags.Lookup("file"))
	_ = viper.BindPFlag("strip_markdown", flags.Lookup("strip-markdown"))
	_ = viper.BindPFlag("render_timeout", flags.Lookup("render-timeout"))
	_ = viper.BindPFlag("cache_size", flags.Lookup("cache-size"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(sayCmd, demoCmd, devicesCmd, speakerCmd, checkCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "speaks")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "speaks")}, dirs...)
	}

	if e, err := config.ParseEnv(); err == nil && e.ConfigHome != "" {
		dirs = append([]string{e.ConfigHome}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("speaks")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("speaks")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "speaks.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
