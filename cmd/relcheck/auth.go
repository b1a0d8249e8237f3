package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/relcheck/internal/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the checklist server session token",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("Paste your session token: ")
			var token string
			if _, err := fmt.Scanln(&token); err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			if err := auth.SetToken(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			okay("logged in")
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == "env" {
				okay("token is provided by " + auth.EnvToken + " (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			okay("logged out")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the session token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Println(cliMutedStyle.Render("not logged in"))
				fmt.Println("Run: relcheck auth login")
				return nil
			}
			fmt.Printf("source: %s\n", ti.Source)
			if ti.ExpiresAt != nil {
				fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Println("expires: (unknown)")
			}
			fmt.Println("env override: " + auth.EnvToken)
			return nil
		},
	}
}
