package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldaudit/internal/faults"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Manage store audits",
	}

	auditCmd.AddCommand(newAuditStartCommand(ctx))
	auditCmd.AddCommand(newAuditCompleteCommand(ctx))
	auditCmd.AddCommand(newAuditReopenCommand(ctx))
	auditCmd.AddCommand(newAuditListCommand(ctx))
	auditCmd.AddCommand(newAuditDeleteCommand(ctx))

	return auditCmd
}

func newAuditStartCommand(ctx *commandContext) *cobra.Command {
	var auditTypeID int
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "start <store-id>",
		Short: "Start an audit at a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := parsePositiveID(args[0], "store id")
			if err != nil {
				return err
			}
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				latPtr, lonPtr := coordinateFlags(cmd, lat, lon)
				audit, err := e.manager().Start(cmd.Context(), storeID, auditTypeID, latPtr, lonPtr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started audit %s at %s\n", audit.ID, audit.StoreDescription)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&auditTypeID, "type", 1, "Audit type id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude at start")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude at start")
	return cmd
}

func newAuditCompleteCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete the open audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				latPtr, lonPtr := coordinateFlags(cmd, lat, lon)
				audit, missingNotes, err := e.manager().Complete(cmd.Context(), latPtr, lonPtr, force)
				if err != nil {
					return err
				}
				if missingNotes {
					return faults.State("the audit has no notes; add some with `fieldaudit notes` or re-run with --force")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed audit %s at %s\n", audit.ID, audit.StoreDescription)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Complete even when notes are missing")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude at end")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude at end")
	return cmd
}

func newAuditReopenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <audit-id>",
		Short: "Reopen a completed audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				audit, err := e.manager().Reopen(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened audit %s at %s\n", audit.ID, audit.StoreDescription)
				return nil
			})
		},
	}
}

func newAuditListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user's audits on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}

				open, err := e.db.ResumeAudit(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}
				completed, err := e.db.CompletedAudits(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(completed)+1)
				if open != nil {
					rows = append(rows, auditRow(open.ID, open.StoreDescription, formatTime(open.StartedAt), "open"))
				}
				for _, audit := range completed {
					rows = append(rows, auditRow(audit.ID, audit.StoreDescription, formatTime(audit.StartedAt), "completed"))
				}

				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No audits on this device")
					return nil
				}
				headers := []string{"Audit", "Store", "Started", "State"}
				fmt.Fprintln(out, renderTable(out, headers, rows, nil))
				return nil
			})
		},
	}
}

func auditRow(id, store, started, state string) []string {
	return []string{id, store, started, state}
}

func newAuditDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <audit-id>",
		Short: "Discard a completed audit without uploading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				if err := e.manager().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted audit %s\n", args[0])
				return nil
			})
		},
	}
}
