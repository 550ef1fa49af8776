package main

import (
	"fmt"

	"github.com/spf13/cobra"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/service"
)

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Show a stored report (requires sign-in)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := c.app.Orchestrator.RequireAuth(cmd.Context(), domainauth.ViewReport(args[0]))
			if err != nil {
				return err
			}
			if outcome == service.OutcomeQueued {
				fmt.Fprintln(c.errOut, c.styles.muted.Render("Checking your session; the report opens once it is confirmed."))
			}
			return nil
		},
	}
}
