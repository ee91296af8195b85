package cmd

import (
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/kalender-parser/internal/verifycmd"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Parser verification tools",
		Long: `Verification tools for measuring parser accuracy against reference data.

Supports scoring a parsed calendar against ground-truth event datasets,
rendering saved verification results as reports, and inspecting grid
and pictogram detection on individual pages.`,
	}

	// Add verify subcommands
	cmd.AddCommand(verifycmd.NewRunCmd())
	cmd.AddCommand(verifycmd.NewReportCmd())
	cmd.AddCommand(verifycmd.NewInspectCmd())

	return cmd
}
