package main

import (
	"fmt"
	"os"

	"storefront/backend/internal/config"
	"storefront/backend/internal/logging"

	"github.com/spf13/cobra"

	// Swagger imports
	_ "storefront/backend/docs" // This is important for swag to find the generated docs
)

// @title           Storefront API
// @version         1.0
// @description     Game storefront: listings, media galleries and a session cart.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envDir string
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Game storefront backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding the .env file")

	load := func() (*config.Config, error) {
		cfg, err := config.LoadConfig(envDir)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load), newSweepCmd(load), newTokenCmd(load))
	return root
}
