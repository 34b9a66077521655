package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:     "demo",
	Short:   "Play every voice and pick one",
	Long:    paragraph(fmt.Sprintf("\n%s every voice of the model, then optionally choose the voice used from now on in this run.", keyword("Play"))),
	Example: paragraph("speaks demo\nspeaks demo --model piper"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := newConsole(os.Stdin)
		m, err := openModel(ctx, c)
		if err != nil {
			return err
		}
		defer m.Stop()

		if err := m.Demo(ctx); err != nil && !quitting(err) {
			return err //nolint:wrapcheck
		}
		return nil
	},
}
