package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/relcheck/internal/checklist"
	"github.com/Makepad-fr/relcheck/internal/tui"
)

func newOpenCmd() *cobra.Command {
	var stage string
	var ascii bool
	cmd := &cobra.Command{
		Use:   "open <owner/repo#number | owner/repo/pull/number | URL>",
		Short: "Open a release checklist in the terminal",
		Long: `Open fetches the checklist for a release pull request and renders it
interactively. Space checks or unchecks the selected feature item; the
server's answer always wins over the local view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := newGatewayClient(cmd)
			if err != nil {
				return err
			}
			defaultStage := cfg.Defaults.Stage
			if cmd.Flags().Changed("stage") {
				defaultStage = stage
			}
			ref, err := checklist.ParseRef(args[0], defaultStage)
			if err != nil {
				return err
			}

			model, err := tui.New(client, ref,
				tui.WithASCII(ascii || cfg.UI.ASCII),
				tui.WithTimeout(time.Duration(cfg.Server.TimeoutSeconds)*time.Second),
			)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "deployment stage to open (e.g. qa, production)")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "use [x]/[ ] markers instead of checkbox glyphs")
	return cmd
}
