package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

var errNoBackend = errors.New("no speech backend is installed")

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Check which speech backends are installed",
	Example: paragraph("speaks check\nSPEAKS_PIPER_BINARY=~/bin/piper speaks check"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		checks := []engines.Check{
			engines.CheckEspeak(engines.EspeakConfig{Binary: settings.Espeak.Binary}),
			engines.CheckPiper(engines.PiperConfig{
				Binary:    settings.Piper.Binary,
				ModelDirs: settings.Piper.ModelDirs,
			}),
		}
		writeChecks(cmd.OutOrStdout(), checks)

		for _, c := range checks {
			if c.Usable() {
				return nil
			}
		}
		return errNoBackend
	},
}

var (
	checkTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	checkFound   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	checkMissing = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// writeChecks prints one block per backend, with install hints for
// anything missing.
func writeChecks(w io.Writer, checks []engines.Check) {
	fmt.Fprintln(w, checkTitle.Render("Speech backend check"))
	for _, c := range checks {
		fmt.Fprintf(w, "\n%s:\n", c.Backend)
		for _, p := range c.Parts {
			if !p.Found {
				fmt.Fprintf(w, "%s not found\n", checkMissing.Render("  ✗ "+p.Name+":"))
				for _, line := range strings.Split(p.Instructions, "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
				continue
			}
			line := p.Path
			if p.Detail != "" {
				line += " (" + p.Detail + ")"
			}
			fmt.Fprintf(w, "%s %s\n", checkFound.Render("  ✓ "+p.Name+":"), line)
		}
	}
}
