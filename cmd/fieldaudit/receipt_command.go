package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/reconcile"
)

func newReceiptCommand(ctx *commandContext) *cobra.Command {
	var auditID string

	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Render the store receipt for an audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}

				var audit *auditdb.Audit
				var err error
				if auditID != "" {
					audit, err = e.db.GetAudit(cmd.Context(), auditID)
					if err != nil {
						return err
					}
					if audit.UserID != e.sess.User.ID {
						return faults.NotFound("audit not found")
					}
				} else {
					audit, err = e.db.ResumeAudit(cmd.Context(), e.sess.User.ID)
					if err != nil {
						return err
					}
					if audit == nil {
						return faults.State("no audit in progress; pass --audit for a completed one")
					}
				}

				store, err := e.catalog.Store(cmd.Context(), audit.StoreID)
				if err != nil {
					return err
				}
				products, err := e.catalog.ProductsForStore(cmd.Context(), *store)
				if err != nil {
					return err
				}

				receipt, err := reconcile.BuildReceipt(cmd.Context(), e.db, audit, *store, products, e.sess, e.logger)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), receipt.Render())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&auditID, "audit", "", "Audit id; defaults to the open audit")
	return cmd
}
