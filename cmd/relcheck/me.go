package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/relcheck/internal/checklist"
)

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user and their recent pull requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newGatewayClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.FetchMe(cmd.Context())
			if err != nil {
				var authErr *checklist.AuthError
				if errors.As(err, &authErr) {
					fail("not signed in")
					fmt.Println("Open in your browser to sign in, then run `relcheck auth login`:")
					fmt.Println(cliAccentStyle.Render(client.AuthURL("/")))
					return nil
				}
				return err
			}

			if resp.Me == nil {
				fmt.Println(cliMutedStyle.Render("anonymous session"))
				return nil
			}
			fmt.Println(cliTitleStyle.Render(resp.Me.Login))

			if len(resp.PullRequests) == 0 {
				fmt.Println(cliMutedStyle.Render("no recent pull requests"))
				return nil
			}

			repos := make([]string, 0, len(resp.PullRequests))
			for repo := range resp.PullRequests {
				repos = append(repos, repo)
			}
			sort.Strings(repos)

			for _, repo := range repos {
				fmt.Println()
				fmt.Println(cliAccentStyle.Render(repo))
				for _, pr := range resp.PullRequests[repo] {
					fmt.Printf("  #%d %s\n", pr.Number, pr.Title)
				}
			}
			return nil
		},
	}
}
