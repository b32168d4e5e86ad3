package client

import (
	"context"
	"fmt"

	"github.com/mwantia/filechest/internal/chest"
	"github.com/mwantia/filechest/internal/config"
	"github.com/spf13/cobra"
)

// runChest loads the configuration and runs fn against an open chest.
func runChest(cmd *cobra.Command, fn func(ctx context.Context, c *chest.Chest) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return chest.Run(ctx, cfg, func(c *chest.Chest) error {
		return fn(ctx, c)
	})
}
