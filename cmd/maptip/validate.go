package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skobkin/maptip/internal/domain"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Check a marker catalog without opening the map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := domain.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d markers OK\n", args[0], len(cat.Markers))

			return nil
		},
	}
}
