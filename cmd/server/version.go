package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/deskfolio/internal/api/http"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "deskfolio", apihttp.Version)
			return err
		},
	}
}
