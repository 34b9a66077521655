package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/operavondervollmer/speaks/internal/tts"
)

var sayCmd = &cobra.Command{
	Use:     "say [TEXT...]",
	Short:   "Speak text and exit",
	Long:    paragraph(fmt.Sprintf("\n%s the arguments as one utterance, or every line of stdin when there are none, then wait for playback to finish.", keyword("Say"))),
	Example: paragraph("speaks say hello world\ncat notes.md | speaks say --strip-markdown"),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// the console and the line reader share one buffer
		in := bufio.NewReader(os.Stdin)
		c := newConsole(in)

		m, err := openModel(ctx, c)
		if err != nil {
			return err
		}
		m.Start()
		defer m.Stop()

		var texts []string
		if len(args) > 0 {
			texts = []string{strings.Join(args, " ")}
		} else if texts, err = readLines(in); err != nil {
			return err
		}

		failed := speakAll(ctx, m, texts)

		if err := m.Wait(ctx); err != nil {
			return fmt.Errorf("playback interrupted: %w", err)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d utterances could not be spoken", failed, len(texts))
		}
		return nil
	},
}

// speakAll queues every non-blank text and returns how many failed.
func speakAll(ctx context.Context, m tts.Model, texts []string) int {
	failed := 0
	for _, text := range texts {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !m.Say(ctx, text) {
			failed++
		}
	}
	return failed
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read from stdin: %w", err)
	}
	return lines, nil
}
