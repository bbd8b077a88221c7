package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lightforgemedia/go-highrise/pkg/bots"
	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/config"
	"github.com/lightforgemedia/go-highrise/pkg/logger"
	"github.com/lightforgemedia/go-highrise/pkg/session"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "highrise",
		Short:         "Run Highrise bots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registry := bots.Default()
	root.AddCommand(newRunCmd(registry), newBotsCmd(registry))
	return root
}

func newBotsCmd(registry *bots.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "bots",
		Short: "List the bots that can be run",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newRunCmd(registry *bots.Registry) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run BOT ROOM_ID API_TOKEN",
		Short: "Connect a bot to a room",
		Long: "Connects the bot registered as BOT to the room ROOM_ID using API_TOKEN,\n" +
			"reconnecting when the connection drops, until interrupted.\n" +
			"Set HR_WEBAPI_URL to use a different web API endpoint.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.RoomID = args[1]
			cfg.APIToken = args[2]
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			appLogger, err := logger.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			slog.SetDefault(appLogger)
			log := appLogger.With("component", "cmd.run")

			bot, err := registry.New(args[0])
			if err != nil {
				return err
			}
			policy, err := client.ParseFailurePolicy(cfg.FailurePolicy)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting bot", "bot", args[0], "room", cfg.RoomID, "endpoint", cfg.Endpoint)
			runner := session.NewRunner(bot, runnerOptions(cfg, policy, appLogger))
			if err := runner.Run(ctx); err != nil {
				return err
			}
			log.Info("Bot stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")
	return cmd
}

func runnerOptions(cfg *config.Config, policy client.FailurePolicy, log *slog.Logger) session.Options {
	return session.Options{
		URL:               cfg.Endpoint,
		RoomID:            cfg.RoomID,
		APIToken:          cfg.APIToken,
		Logger:            log,
		RequestTimeout:    requestTimeout(cfg),
		KeepaliveInterval: cfg.KeepaliveInterval,
		ReconnectBurst:    cfg.Reconnect.Burst,
		ReconnectRecharge: cfg.Reconnect.Recharge,
		FailurePolicy:     policy,
	}
}

// A configured timeout of zero means no timeout, which the runner spells
// as a negative value.
func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout == 0 {
		return -1
	}
	return cfg.RequestTimeout
}
