package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/commentary"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/config"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/httpapi"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/hub"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/logging"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN, log.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	rules := engine.Rules{Lookahead: cfg.Draw.Lookahead}
	h := hub.NewHub(ctx, lobby.Options{
		RevealDelay:  cfg.Draw.RevealDelay,
		AutoInterval: cfg.Draw.AutoInterval,
		NewSession:   func() *engine.Session { return engine.StartDraw(engine.WithRules(rules)) },
		Log:          log.Named("lobby"),
	})

	summarizer := commentary.NewGeminiClient(commentary.Config{
		APIKey:  cfg.Commentary.APIKey,
		Model:   cfg.Commentary.Model,
		BaseURL: cfg.Commentary.BaseURL,
		Timeout: cfg.Commentary.Timeout,
	})
	handler := httpapi.NewHandler(h, st, summarizer, rules, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.SetupRoutes(handler, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("lookahead", rules.Lookahead))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		h.Inbox() <- hub.ShutdownHub{}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
