package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var promoteEmail string

// promoteCmd represents the promote command
var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the admin role to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), false, func(e *env) error {
			if err := e.c.Auth.Promote(cmd.Context(), promoteEmail); err != nil {
				return fmt.Errorf("promote %s: %w", promoteEmail, err)
			}
			e.log.Info("User promoted to admin", zap.String("email", promoteEmail))
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", promoteEmail)
			return nil
		})
	},
}

var (
	exportEmail string
	exportOut   string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data of one user as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), false, func(e *env) error {
			exp, err := e.c.Export.ExportByEmail(cmd.Context(), exportEmail)
			if err != nil {
				return fmt.Errorf("export %s: %w", exportEmail, err)
			}

			out := cmd.OutOrStdout()
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(exp)
		})
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the user to promote")
	_ = promoteCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(promoteCmd)

	exportCmd.Flags().StringVar(&exportEmail, "email", "", "email of the user to export")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	_ = exportCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(exportCmd)
}
