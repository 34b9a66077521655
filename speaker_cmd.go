package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var speakerCmd = &cobra.Command{
	Use:     "speaker",
	Short:   "Choose the output device",
	Long:    paragraph(fmt.Sprintf("\n%s the output device and store it in the speaker file, replacing the stored selection.", keyword("Choose"))),
	Example: paragraph("speaks speaker\nspeaks speaker --file ~/.config/speaks"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err := initSpeaker(ctx, newConsole(os.Stdin), true)
		if err != nil && !quitting(err) {
			return err
		}
		return nil
	},
}
