package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldaudit/internal/api"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/session"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Authenticate against the backend and store the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client := api.NewClient(cfg, logger)
			token, err := client.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			profile, err := client.User(cmd.Context(), token)
			if err != nil {
				return err
			}

			// Carry the synced-catalog marker across re-logins.
			previous, err := ctx.loadSession()
			if err != nil {
				return err
			}
			sess := &session.Session{
				Token:                    token,
				User:                     profile.User,
				Settings:                 profile.Settings,
				SKUConditions:            profile.SKUConditions,
				LastSyncedCatalogVersion: previous.LastSyncedCatalogVersion,
			}
			if err := session.Save(cfg.SessionPath(), sess); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s (%s)\n", sess.User.DisplayName(), sess.User.Email)
			if sess.SyncNeeded(catalog.Version) {
				fmt.Fprintln(out, "Run `fieldaudit sync` to download the store and product catalog.")
			}
			return nil
		},
	}
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := session.Clear(cfg.SessionPath()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.loadSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !sess.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "User:   %s (%s)\n", sess.User.DisplayName(), sess.User.Email)
			fmt.Fprintf(out, "Role:   %s\n", dash(sess.User.RoleName))
			fmt.Fprintf(out, "Client: %s\n", dash(sess.User.ClientName))
			return nil
		},
	}
}
