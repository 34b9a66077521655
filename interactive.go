package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func execute(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newConsole(os.Stdin)
	c.PrintFrom(originMain, "Starting Speaks...")

	m, err := openModel(ctx, c)
	if err != nil {
		if quitting(err) {
			return nil
		}
		return err
	}
	return runInteractive(ctx, c, m)
}
