package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/operavondervollmer/speaks/internal/audio"
)

var allDevices bool

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Short:   "List the audio output devices",
	Example: paragraph("speaks devices\nspeaks devices --all"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := audio.Devices()
		if err != nil {
			return fmt.Errorf("unable to list devices: %w", err)
		}
		if !allDevices {
			devices = audio.OutputDevices(devices)
		}
		writeDevices(cmd.OutOrStdout(), devices)
		return nil
	},
}

func init() {
	devicesCmd.Flags().BoolVarP(&allDevices, "all", "a", false, "include devices without output channels")
}

var defaultMark = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Render("*")

// writeDevices prints one device per line; the default output is marked.
func writeDevices(w io.Writer, devices []audio.Device) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No output devices found.")
		return
	}
	for _, d := range devices {
		mark := " "
		if d.IsDefaultOutput {
			mark = defaultMark
		}
		fmt.Fprintf(w, "%s %3d  %-40s %2d ch  %6.0f Hz\n", mark, d.Index, d.Name, d.MaxOutputChannels, d.DefaultSampleRate)
	}
}
