package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/deliverykit/orchestrator"
)

type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Request personalized content from a delivery endpoint",
		Long: `mboxctl requests content units (mboxes) from a delivery endpoint and
keeps the visitor profile, session and content cache in a local SQLite file.

Examples:
  mboxctl prefetch home-hero promo-banner
  mboxctl load product-recs --param category=shoes
  mboxctl display home-hero
  mboxctl click home-hero
  mboxctl session
  mboxctl reset`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to the config file (default: ./mboxctl.yml or the user config dir)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to a .env file")

	cmd.AddCommand(newPrefetchCmd(flags))
	cmd.AddCommand(newLoadCmd(flags))
	cmd.AddCommand(newDisplayCmd(flags))
	cmd.AddCommand(newClickCmd(flags))
	cmd.AddCommand(newResetCmd(flags))
	cmd.AddCommand(newSessionCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// withApp opens the profile, runs fn and saves the profile.
func withApp(ctx context.Context, flags *rootFlags, fn func(context.Context, *app) error) error {
	cfg, err := loadAppConfig(flags.configFile, flags.envFile)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	return fn(ctx, a)
}

// awaitResult waits for res or ctx.
func awaitResult(ctx context.Context, res <-chan orchestrator.Result) (orchestrator.Result, error) {
	select {
	case r := <-res:
		return r, nil
	case <-ctx.Done():
		return orchestrator.Result{}, ctx.Err()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
