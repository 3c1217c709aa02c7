package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldaudit/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, audit, and catalog state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				out := cmd.OutOrStdout()

				if !e.sess.Authenticated() {
					fmt.Fprintln(out, "Session: not logged in")
					return nil
				}
				fmt.Fprintf(out, "Session: %s (%s)\n", e.sess.User.DisplayName(), e.sess.User.Email)

				empty, err := e.catalog.IsEmpty(cmd.Context())
				if err != nil {
					return err
				}
				switch {
				case empty:
					fmt.Fprintln(out, "Catalog: empty; run `fieldaudit sync`")
				case e.sess.SyncNeeded(catalog.Version):
					fmt.Fprintln(out, "Catalog: stale; run `fieldaudit sync`")
				default:
					fmt.Fprintln(out, "Catalog: synced")
				}

				open, err := e.db.ResumeAudit(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}
				if open != nil {
					fmt.Fprintf(out, "Open audit: %s at %s (started %s)\n",
						open.ID, open.StoreDescription, formatTime(open.StartedAt))
				} else {
					fmt.Fprintln(out, "Open audit: none")
				}

				pending, err := e.db.CompletedCount(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Completed audits awaiting upload: %d\n", pending)
				return nil
			})
		},
	}
}
