package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "deskfolio:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deskfolio",
		Short:         "Simulated desktop shell backend for a portfolio site",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	serve := newServeCmd()
	root.AddCommand(serve)
	root.AddCommand(newVersionCmd())

	// Running the bare binary serves
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}
