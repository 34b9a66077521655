// Package console implements the interactive line protocol: every line
// is tagged with the component it comes from and styled by severity.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Severities accepted by PrintFrom.
const (
	SeverityInfo = iota
	SeverityWarning
	SeverityNotice
	SeverityError
)

var (
	infoColor    = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"}
	warningColor = lipgloss.Color("214")
	noticeColor  = lipgloss.Color("39")
	errorColor   = lipgloss.Color("196")
	textColor    = lipgloss.AdaptiveColor{Light: "#303030", Dark: "#DDDDDD"}
)

// Options configure a Console.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Logger *log.Logger
	// NoColor disables styling even on a terminal.
	NoColor bool
}

// Console reads prompts and prints tagged lines. Output and input are
// locked separately so lines keep printing while a read is waiting.
type Console struct {
	mu     sync.Mutex
	readMu sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	logger *log.Logger

	tags    [4]lipgloss.Style
	message [4]lipgloss.Style
}

// New creates a console. Stdin and stdout are used when In or Out is nil.
func New(opts Options) *Console {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	r := lipgloss.NewRenderer(opts.Out)
	if opts.NoColor || !isTerminal(opts.Out) {
		r.SetColorProfile(termenv.Ascii)
	}

	c := &Console{
		in:     bufio.NewReader(opts.In),
		out:    opts.Out,
		logger: opts.Logger,
	}

	colors := [4]lipgloss.TerminalColor{infoColor, warningColor, noticeColor, errorColor}
	for i, color := range colors {
		c.tags[i] = r.NewStyle().Foreground(color).Bold(true)
		c.message[i] = r.NewStyle().Foreground(textColor)
	}
	c.message[SeverityNotice] = r.NewStyle().Foreground(noticeColor)
	c.message[SeverityError] = r.NewStyle().Foreground(errorColor)

	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderLines styles each line on its own so lines keep their width.
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func clampSeverity(severity []int) int {
	if len(severity) == 0 {
		return SeverityInfo
	}
	s := severity[0]
	if s < SeverityInfo || s > SeverityError {
		return SeverityInfo
	}
	return s
}

// PrintFrom prints "[origin] message" and mirrors it to the logger.
func (c *Console) PrintFrom(origin, message string, severity ...int) {
	s := clampSeverity(severity)

	c.mu.Lock()
	fmt.Fprintf(c.out, "%s %s\n", c.tags[s].Render("["+origin+"]"), renderLines(c.message[s], message))
	c.mu.Unlock()

	l := c.logger.With("origin", origin)
	switch s {
	case SeverityError:
		l.Error(message)
	case SeverityWarning:
		l.Warn(message)
	default:
		l.Info(message)
	}
}

// InputFrom prints "[origin] prompt: " and reads one line. A final line
// without a newline is returned as is; io.EOF is returned only when
// nothing was read.
func (c *Console) InputFrom(origin, prompt string) (string, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	c.mu.Lock()
	fmt.Fprintf(c.out, "%s %s: ", c.tags[SeverityNotice].Render("["+origin+"]"), renderLines(c.message[SeverityInfo], prompt))
	c.mu.Unlock()

	line, err := c.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			c.mu.Lock()
			fmt.Fprintln(c.out)
			c.mu.Unlock()
			return "", io.EOF
		}
	}

	c.logger.Debug("Input", "origin", origin, "prompt", firstLine(prompt), "chars", len(line))
	return line, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Prompter reads one line of input after showing a prompt.
type Prompter interface {
	InputFrom(origin, prompt string) (string, error)
}

// Prompt reads one line from p, giving up when ctx is done. The read
// itself cannot be interrupted; its line is dropped once ctx is done.
func Prompt(ctx context.Context, p Prompter, origin, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err //nolint:wrapcheck
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.InputFrom(origin, prompt)
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err() //nolint:wrapcheck
	}
}
