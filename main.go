package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reality-archive/internal/app"
	"reality-archive/internal/config"
	"reality-archive/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "reality-archive",
		Short:         "Turn physical symptoms into experiments that test catastrophic thoughts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path, overrides the config")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newNewCmd(flags))
	root.AddCommand(newCompleteCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newAchievementsCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newThemeCmd(flags))
	return root
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	return cfg, nil
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon: chat host, reminders and daily summary",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			application, err := app.New(cfg, log)
			if err != nil {
				return fmt.Errorf("create application: %w", err)
			}
			if err := application.Start(); err != nil {
				return fmt.Errorf("start application: %w", err)
			}
			defer application.Stop()

			waitForShutdown()
			log.Info("👋 Shutting down", zap.String("db", cfg.Database.Path))
			return nil
		},
	}
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}
