package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/relcheck/internal/appconfig"
	"github.com/Makepad-fr/relcheck/internal/auth"
	"github.com/Makepad-fr/relcheck/internal/gateway"
)

// loadConfig resolves configuration for a command, honoring --config.
func loadConfig(cmd *cobra.Command) (appconfig.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := appconfig.Load(path)
	if err != nil {
		return appconfig.Config{}, err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.BaseURL = server
	}
	return cfg, nil
}

// newGatewayClient builds the API client from config plus the stored session
// token, if any.
func newGatewayClient(cmd *cobra.Command) (*gateway.Client, appconfig.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, appconfig.Config{}, err
	}

	opts := []gateway.Option{
		gateway.WithTimeout(time.Duration(cfg.Server.TimeoutSeconds) * time.Second),
	}
	if ti, err := auth.GetToken(); err == nil && ti != nil {
		opts = append(opts, gateway.WithToken(ti.Token))
	}

	return gateway.NewClient(cfg.Server.BaseURL, opts...), cfg, nil
}
