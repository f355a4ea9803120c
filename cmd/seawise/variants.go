package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seawise/seawise/pkg/fouling"
)

func newVariantsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List estimator variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := fouling.Variants()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				marker := ""
				if n == fouling.VariantEnhanced {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", n, marker)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
