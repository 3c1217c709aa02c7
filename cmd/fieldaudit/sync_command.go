package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldaudit/internal/api"
	"fieldaudit/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload completed audits and refresh the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}

				client := api.NewClient(e.cfg, e.logger)
				orch := syncer.New(e.cfg, client, e.db, e.catalog, e.sess, e.logger)
				result, err := orch.Run(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if result.AuditsUploaded > 0 {
					fmt.Fprintf(out, "Uploaded %d audit(s)\n", result.AuditsUploaded)
				}
				fmt.Fprintf(out, "Catalog refreshed: %d stores, %d products\n", result.Stores, result.Products)
				return nil
			})
		},
	}
}
