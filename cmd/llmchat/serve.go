package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmchat/internal/config"
	"llmchat/internal/fortune"
	"llmchat/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr, model, modelsDir, cors string
		timeout                      int64
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the inference API (/health, /model, /fortune, /generate)",
		Example: "  llmchat serve --addr :8000 --model tinyllama-q4.gguf --models-dir ~/models/llm",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &a.cfg
			if cmd.Flags().Changed("addr") {
				c.Server.Addr = addr
			}
			if cmd.Flags().Changed("model") {
				c.Model.Name = model
			}
			if cmd.Flags().Changed("models-dir") {
				c.Model.Dir = modelsDir
			}
			if cmd.Flags().Changed("cors-origins") {
				c.Server.CORSOrigins = config.SplitCSV(cors)
			}
			if cmd.Flags().Changed("generate-timeout") {
				c.Server.GenerateTimeoutSeconds = timeout
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *c, a.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.cfg.Server.Addr, "HTTP listen address (defaults LLMCHAT_ADDR or :8000)")
	cmd.Flags().StringVar(&model, "model", a.cfg.Model.Name, "Model id or path (defaults LLMCHAT_MODEL or MODEL_NAME)")
	cmd.Flags().StringVar(&modelsDir, "models-dir", a.cfg.Model.Dir, "Directory to scan for *.gguf model files")
	cmd.Flags().StringVar(&cors, "cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	cmd.Flags().Int64Var(&timeout, "generate-timeout", 0, "Generate timeout in seconds (0 disables)")
	return cmd
}

// configureHTTPAPI applies the server section to the HTTP layer.
func configureHTTPAPI(ctx context.Context, c config.Config, log zerolog.Logger) {
	httpapi.SetLogger(log.With().Str("component", "httpapi").Logger())
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(c.Server.MaxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(c.Server.GenerateTimeoutSeconds)
	httpapi.SetCORSOptions(len(c.Server.CORSOrigins) > 0, c.Server.CORSOrigins, nil, nil)
}

func runServe(ctx context.Context, c config.Config, log zerolog.Logger) error {
	p, err := newPipeline(ctx, c.Model, log)
	if p == nil {
		return err
	}
	defer p.Close()
	if err != nil {
		// keep serving: /readyz reports loading and /generate answers 503
		log.Error().Err(err).Str("model", c.Model.Name).Msg("model load failed")
	}

	configureHTTPAPI(ctx, c, log)
	srv := &http.Server{
		Addr:              c.Server.Addr,
		Handler:           httpapi.NewMux(p, fortune.New(0)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return listenAndShutdown(ctx, srv, log)
}

// listenAndShutdown serves until ctx is canceled, then shuts down gracefully.
func listenAndShutdown(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
