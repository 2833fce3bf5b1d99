package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmchat/internal/config"
	"llmchat/internal/logx"
)

// app carries the resolved configuration and logger into the subcommands.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	closer io.Closer

	lookup func(string) (string, bool)
}

func buildRootCmd() *cobra.Command { return buildRootCmdWith(os.LookupEnv) }

// buildRootCmdWith constructs the command tree reading environment overrides via lookup.
func buildRootCmdWith(lookup func(string) (string, bool)) *cobra.Command {
	a := &app{cfg: config.Default(), log: zerolog.Nop(), lookup: lookup}
	var (
		cfgPath  string
		envFile  string
		logLevel string
	)
	root := &cobra.Command{
		Use:           "llmchat",
		Short:         "Chat demo, inference API server and remote inference client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading LLMCHAT_* variables (ignored if missing)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LLMCHAT_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		if cfgPath != "" {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
		}
		if err := config.ApplyEnv(&a.cfg, a.lookup); err != nil {
			return err
		}
		if logLevel != "" {
			a.cfg.Log.Level = logLevel
		}
		a.log, a.closer = logx.New(logx.Options{
			Level:      a.cfg.Log.Level,
			File:       a.cfg.Log.File,
			MaxSizeMB:  a.cfg.Log.MaxSizeMB,
			MaxBackups: a.cfg.Log.MaxBackups,
			MaxAgeDays: a.cfg.Log.MaxAgeDays,
			JSON:       a.cfg.Log.JSON,
		})
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}

	root.AddCommand(newServeCmd(a), newUICmd(a), newClientCmd(a))
	return root
}
