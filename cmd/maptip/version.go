package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skobkin/maptip/internal/app"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.Name, app.BuildVersionWithDate())
		},
	}
}
