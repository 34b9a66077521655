package tts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/operavondervollmer/speaks/internal/console"
)

const (
	originDemo = "Speaks - Demo Voice"

	// DemoText is played with every voice.
	DemoText = "This is a test message to demonstrate the sound of the voices"
	// SelectedText is played with the chosen voice.
	SelectedText = "This is the voice you have selected"
)

// Demo plays DemoText with every voice, lets the user choose one, and
// plays SelectedText with the result. Playback is synchronous on the
// selected device, so Demo refuses to run while the worker does. Without
// a console the choice is skipped and the current voice is kept. The
// voice is restored whenever Demo returns early.
func (s *Speech) Demo(ctx context.Context) error {
	if err := s.worker.reserve(); err != nil {
		s.report.print(originDemo, "FAILED: Stop speaking before running the demo", console.SeverityError)
		return err
	}
	defer s.worker.release()

	current := s.voice
	keep := false
	defer func() {
		if !keep {
			_ = s.SelectVoice(current)
		}
	}()

	for i, v := range s.voices {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.report.print(originDemo, "Name: "+v.Name, console.SeverityInfo)
		if err := s.SelectVoice(i); err != nil {
			s.report.print(originDemo, "WARNING: Skipping voice "+v.Name, console.SeverityWarning, "err", err)
			continue
		}
		_ = s.speakNow(ctx, DemoText)
	}

	selected := current
	if s.report.console != nil {
		choice, err := s.chooseVoice(ctx)
		if err != nil {
			return err
		}
		if choice >= 0 {
			selected = choice
		}
	}

	if err := s.SelectVoice(selected); err != nil {
		return err
	}
	keep = true
	_ = s.speakNow(ctx, SelectedText)

	s.report.print(originDemo, "SUCCESS: Demo voice completed", console.SeverityNotice)
	return nil
}

// chooseVoice asks whether to change the voice and returns the zero-based
// choice, or -1 to keep the current voice.
func (s *Speech) chooseVoice(ctx context.Context) (int, error) {
	c := s.report.console

	answer, err := console.Prompt(ctx, c, originDemo, "Would you like to change the voice? (y/n)")
	if err != nil {
		return -1, err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return -1, nil
	}

	lines := make([]string, len(s.voices))
	for i, v := range s.voices {
		lines[i] = fmt.Sprintf("%d -> %s", i+1, v.Name)
	}

	for {
		c.PrintFrom(originDemo, "Available voices:\n"+strings.Join(lines, "\n"))

		input, err := console.Prompt(ctx, c, originDemo, "Please select a voice by entering its index")
		if err != nil {
			return -1, err
		}
		if n, ok := parseChoice(input, len(s.voices)); ok {
			return n - 1, nil
		}
		c.PrintFrom(originDemo, "Invalid input. Please enter a valid voice index.", console.SeverityWarning)
	}
}

// parseChoice accepts a string of ASCII digits in 1..max.
func parseChoice(input string, max int) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}
