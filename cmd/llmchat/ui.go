package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmchat/internal/config"
	"llmchat/internal/history"
	"llmchat/internal/scoring"
	"llmchat/internal/seed"
	"llmchat/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	var addr, model, modelsDir, driver, dsn string
	cmd := &cobra.Command{
		Use:     "ui",
		Short:   "Serve the chat front-end (chat, history, sample data)",
		Example: "  llmchat ui --addr :8501 --history-driver sqlite --history-dsn chat_history.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &a.cfg
			if cmd.Flags().Changed("addr") {
				c.UI.Addr = addr
			}
			if cmd.Flags().Changed("model") {
				c.Model.Name = model
			}
			if cmd.Flags().Changed("models-dir") {
				c.Model.Dir = modelsDir
			}
			if cmd.Flags().Changed("history-driver") {
				c.History.Driver = driver
			}
			if cmd.Flags().Changed("history-dsn") {
				c.History.DSN = dsn
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runUI(ctx, *c, a.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.cfg.UI.Addr, "HTTP listen address (defaults LLMCHAT_UI_ADDR or :8501)")
	cmd.Flags().StringVar(&model, "model", a.cfg.Model.Name, "Model id or path (defaults LLMCHAT_MODEL or MODEL_NAME)")
	cmd.Flags().StringVar(&modelsDir, "models-dir", a.cfg.Model.Dir, "Directory to scan for *.gguf model files")
	cmd.Flags().StringVar(&driver, "history-driver", a.cfg.History.Driver, "History backend: sqlite|redis")
	cmd.Flags().StringVar(&dsn, "history-dsn", a.cfg.History.DSN, "sqlite file/DSN or redis address/URL")
	return cmd
}

// buildUI runs the startup sequence: metrics, history schema, sample data, model.
func buildUI(ctx context.Context, c config.Config, log zerolog.Logger) (*ui.Server, func(), error) {
	scoring.Init()

	store, err := history.Open(c.History)
	if err != nil {
		return nil, nil, err
	}
	if added, err := seed.EnsureInitialData(ctx, store); err != nil {
		_ = store.Close()
		return nil, nil, err
	} else if added {
		log.Info().Msg("history was empty; sample data inserted")
	}

	opts := ui.Options{
		Title:         c.UI.Title,
		ModelName:     c.Model.Name,
		SessionSecret: []byte(c.UI.SessionSecret),
		HistoryLimit:  c.UI.HistoryLimit,
		Logger:        log.With().Str("component", "ui").Logger(),
	}
	var gen ui.Generator
	p, err := newPipeline(ctx, c.Model, log)
	switch {
	case p == nil:
		opts.LoadErr = err
	case err != nil:
		opts.LoadErr = err
		log.Error().Err(err).Str("model", c.Model.Name).Msg("model load failed; chat disabled")
	default:
		gen = p
		log.Info().Str("model", p.ModelName()).Msg("model ready")
	}
	cleanup := func() {
		if p != nil {
			_ = p.Close()
		}
		_ = store.Close()
	}

	srv, err := ui.New(gen, store, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return srv, cleanup, nil
}

func runUI(ctx context.Context, c config.Config, log zerolog.Logger) error {
	srv, cleanup, err := buildUI(ctx, c, log)
	if err != nil {
		return err
	}
	defer cleanup()
	return listenAndShutdown(ctx, &http.Server{
		Addr:              c.UI.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, log)
}
