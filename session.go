package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"

	"github.com/operavondervollmer/speaks/internal/config"
	"github.com/operavondervollmer/speaks/internal/console"
	"github.com/operavondervollmer/speaks/internal/speaker"
	"github.com/operavondervollmer/speaks/internal/tts"
	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

const (
	originMain = "Speaks - Main"

	actionPrompt = "Select an action:\n1. Start\n2. Configure Voice\nInput"
	inputPrompt  = "Input (Say STOP_THIS to stop)"
	stopWord     = "STOP_THIS"
)

func newConsole(in io.Reader) *console.Console {
	return console.New(console.Options{
		In:      in,
		Logger:  log.Default(),
		NoColor: environ.ColorDisabled(),
	})
}

// initSpeaker resolves the output device. reselect forces the prompt.
func initSpeaker(ctx context.Context, c speaker.Console, reselect bool) (config.Selection, error) {
	file, err := config.LoadSpeakerFile(settings.Speaker.File)
	if err != nil {
		return config.Selection{}, err //nolint:wrapcheck
	}

	opts := speaker.Options{
		Console:  c,
		Logger:   log.Default(),
		File:     file,
		Reselect: reselect,
	}
	if settings.ExplicitSpeaker() && !reselect {
		opts.Explicit = &config.Selection{Index: settings.Speaker.Index, Name: settings.Speaker.Name}
	}
	return speaker.Initialize(ctx, opts) //nolint:wrapcheck
}

func modelOptions(c tts.Console, sel config.Selection) tts.Options {
	cacheSize, _ := settings.CacheBytes() // checked by Validate
	return tts.Options{
		Logger:        log.Default(),
		Console:       c,
		Voice:         tts.VoiceSelection{VoiceIndex: settings.Voice, SpeakerIndex: sel.Index},
		StripMarkdown: settings.StripMarkdown,
		RenderTimeout: settings.RenderTimeout,
		CacheSize:     cacheSize,
		Espeak:        engines.EspeakConfig{Binary: settings.Espeak.Binary},
		Piper: engines.PiperConfig{
			Binary:    settings.Piper.Binary,
			ModelDirs: settings.Piper.ModelDirs,
			Speed:     settings.Piper.Speed,
		},
	}
}

// newModel builds the configured model and applies --voice-name.
func newModel(ctx context.Context, c tts.Console, sel config.Selection) (tts.Model, error) {
	m, err := tts.NewModel(ctx, settings.Model, modelOptions(c, sel))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if voiceName != "" {
		voices := m.Voices()
		i, err := findVoice(voices, voiceName)
		if err != nil {
			return nil, err
		}
		if err := m.SelectVoice(i); err != nil {
			return nil, err //nolint:wrapcheck
		}
		log.Debug("Voice matched", "pattern", voiceName, "voice", voices[i].Name)
	}
	return m, nil
}

// openModel resolves the speaker and builds the model on one console.
func openModel(ctx context.Context, c *console.Console) (tts.Model, error) {
	sel, err := initSpeaker(ctx, c, false)
	if err != nil {
		return nil, err
	}
	return newModel(ctx, c, sel)
}

type voiceNames []tts.Voice

func (v voiceNames) String(i int) string { return v[i].Name }
func (v voiceNames) Len() int            { return len(v) }

// findVoice returns the index of the voice named pattern, matching the
// id or name exactly before falling back to the best fuzzy match.
func findVoice(voices []tts.Voice, pattern string) (int, error) {
	for i, v := range voices {
		if strings.EqualFold(v.ID, pattern) || strings.EqualFold(v.Name, pattern) {
			return i, nil
		}
	}

	matches := fuzzy.FindFrom(pattern, voiceNames(voices))
	if len(matches) == 0 {
		return -1, fmt.Errorf("%w: no voice matches %q", tts.ErrInvalidVoice, pattern)
	}
	return matches[0].Index, nil
}

// quitting reports whether err ends the session normally.
func quitting(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}

// runInteractive lets the user configure the voice, then speaks every
// line until STOP_THIS, EOF or cancellation.
func runInteractive(ctx context.Context, c tts.Console, m tts.Model) error {
	defer func() {
		m.Stop()
		c.PrintFrom(originMain, "Stopping Speaks...")
	}()

menu:
	for {
		decision, err := console.Prompt(ctx, c, originMain, actionPrompt)
		if err != nil {
			if quitting(err) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(decision) {
		case "1":
			break menu
		case "2":
			if err := m.Demo(ctx); err != nil {
				if quitting(err) {
					return nil
				}
				return err //nolint:wrapcheck
			}
		}
	}

	m.Start()
	for {
		text, err := console.Prompt(ctx, c, originMain, inputPrompt)
		if err != nil {
			if quitting(err) {
				return nil
			}
			return err
		}
		if text == stopWord {
			return nil
		}
		m.Say(ctx, text)
	}
}
