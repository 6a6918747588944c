package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"ainews/internal/app"
	"ainews/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	outputDir  string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ainews",
		Short:         "AI news aggregator",
		Long:          "ainews collects AI news from RSS feeds and a news search API, scores and ranks them, and publishes the top list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (json or yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with secrets, ignored when missing")
	cmd.PersistentFlags().StringVar(&opts.outputDir, "output", "", "override output directory")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(newCollectCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load читает .env, конфигурацию и применяет флаги поверх нее.
func (o *rootOptions) load() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", o.envFile, err)
		}
	}
	cfg, _, err := config.Resolve(o.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if o.outputDir != "" {
		cfg.Output.Dir = o.outputDir
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	o.cfg = cfg
	return nil
}

// signalContext отменяется по SIGINT или SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newApp(ctx context.Context, o *rootOptions) (*app.App, error) {
	a, err := app.New(ctx, o.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}
