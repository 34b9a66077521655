// Package speaker resolves the output device speech is played on.
package speaker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/operavondervollmer/speaks/internal/audio"
	"github.com/operavondervollmer/speaks/internal/config"
	"github.com/operavondervollmer/speaks/internal/console"
)

const (
	originInitialize = "Speaks - Initialize"
	originSelect     = "Speaks - Select Speaker"
)

// ErrNoConsole is returned when a selection has to be prompted for but
// there is no console to prompt on.
var ErrNoConsole = errors.New("speaker selection needs a console")

// Console prompts the user and prints status lines.
type Console interface {
	PrintFrom(origin, message string, severity ...int)
	InputFrom(origin, prompt string) (string, error)
}

// Options configure Initialize.
type Options struct {
	Console Console
	Logger  *log.Logger

	// File persists the selection. Required.
	File *config.SpeakerFile

	// Explicit, when set, is used as is.
	Explicit *config.Selection

	// Reselect ignores the stored selection and prompts.
	Reselect bool

	// Devices lists the output devices; audio.Devices when nil.
	Devices func() ([]audio.Device, error)
}

// Initialize picks the speaker: the explicit selection, else the stored
// one, else one chosen on the console. The result is written back to the
// speaker file.
func Initialize(ctx context.Context, opts Options) (config.Selection, error) {
	if opts.File == nil {
		return config.Selection{}, errors.New("speaker file is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var sel config.Selection
	stored, haveStored := opts.File.Selected()

	switch {
	case opts.Explicit != nil:
		sel = *opts.Explicit
	case haveStored && !opts.Reselect:
		sel = stored
	default:
		s, err := Select(ctx, opts)
		if err != nil {
			return config.Selection{}, err
		}
		sel = s
	}

	opts.File.SetSelected(sel)
	if err := opts.File.Save(); err != nil {
		logger.Warn("Could not save speaker selection", "path", opts.File.Path(), "err", err)
	}

	if opts.Console != nil {
		opts.Console.PrintFrom(originInitialize, "Selected Speaker: "+sel.Name)
	}
	logger.Debug("Speaker selected", "index", sel.Index, "name", sel.Name, "path", opts.File.Path())

	return sel, nil
}

// Select prompts for one of the output devices until the answer is
// valid. With no output devices it returns config.NoSpeaker.
func Select(ctx context.Context, opts Options) (config.Selection, error) {
	list := opts.Devices
	if list == nil {
		list = audio.Devices
	}

	devices, err := list()
	if err != nil {
		return config.Selection{}, fmt.Errorf("unable to list devices: %w", err)
	}
	outputs := audio.OutputDevices(devices)

	c := opts.Console
	if len(outputs) == 0 {
		if c != nil {
			c.PrintFrom(originSelect, "No output devices found.", console.SeverityNotice)
		}
		return config.NoSpeaker, nil
	}
	if c == nil {
		return config.Selection{}, ErrNoConsole
	}

	var b strings.Builder
	for i, d := range outputs {
		fmt.Fprintf(&b, "\n%d -> %s", i+1, d.Name)
	}
	listing := b.String()

	for {
		if err := ctx.Err(); err != nil {
			return config.Selection{}, err
		}

		c.PrintFrom(originSelect, listing, console.SeverityNotice)
		input, err := console.Prompt(ctx, c, originSelect, "No selected speaker selected. Please select from the above")
		if err != nil {
			return config.Selection{}, err
		}

		n, ok := parseChoice(input, len(outputs))
		if !ok {
			c.PrintFrom(originSelect, "Invalid Input")
			continue
		}

		d := outputs[n-1]
		c.PrintFrom(originSelect, fmt.Sprintf("Selected Speaker: %s | Index: %d", d.Name, d.Index))
		return config.Selection{Index: d.Index, Name: d.Name}, nil
	}
}

func parseChoice(input string, max int) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" || strings.TrimLeft(input, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}
