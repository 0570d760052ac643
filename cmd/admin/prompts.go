package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// seedPromptsCmd represents the seed-prompts command
var seedPromptsCmd = &cobra.Command{
	Use:   "seed-prompts",
	Short: "Insert the default global motivational prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), false, func(e *env) error {
			n, err := e.c.Prompts.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d prompts\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedPromptsCmd)
}
