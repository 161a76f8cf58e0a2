package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"jotjot/internal/bot"
	"jotjot/internal/config"
	"jotjot/internal/idgen"
	"jotjot/internal/preview"
	"jotjot/internal/share"
	"jotjot/internal/storage"
	"jotjot/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long:  `Serve the editor, the share API, shared pages and preview images. Starts the Telegram bot when a token is configured.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(os.Stdout)
		log.WithFields(logrus.Fields{
			"base_url":     cfg.BaseURL,
			"addr":         cfg.ServerAddr,
			"store_driver": cfg.StoreDriver,
			"renderer":     cfg.PreviewRenderer,
		}).Info("Configuration loaded successfully")

		// Create context that listens for interrupt signals
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, stop)
	},
}

// runServer starts every component and blocks until ctx is cancelled or the
// HTTP server fails. Components opened before an error are closed on return.
func runServer(ctx context.Context, stop context.CancelFunc) error {
	// --- Initialize Components ---
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		log.Info("Closing store...")
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Error closing store")
		}
	}()

	shares := share.NewService(store, idgen.NanoID{}, cfg.BaseURL, log)
	handler := web.NewHandler(shares, newRenderer(cfg, log), cfg.BaseURL, log)
	router := web.NewRouter(handler, web.Options{
		BaseURL:           cfg.BaseURL,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimit:         rate.Limit(cfg.RateLimitRPS),
		RateBurst:         cfg.RateLimitBurst,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	if cfg.TelegramBotToken != "" {
		botHandler, err := bot.NewHandler(cfg.TelegramBotToken, shares, log)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot handler: %w", err)
		}
		go botHandler.Start(ctx)
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ServerAddr).Info("JotJot is running. Press Ctrl+C to exit.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Wait for Shutdown Signal ---
	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("HTTP server failed")
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	// --- Graceful Shutdown ---
	log.Info("Shutting down JotJot...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	log.Info("JotJot shut down gracefully.")
	return runErr
}

// openStore opens the configured content store. The Badger store also gets
// its value-log GC loop, bound to ctx.
func openStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (storage.ContentStore, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		return storage.NewRedisStore(cfg.RedisURL, logger)
	default:
		s, err := storage.NewBadgerStore(cfg.BadgerDBPath, logger)
		if err != nil {
			return nil, err
		}
		go s.RunGC(ctx, cfg.BadgerGCInterval)
		return s, nil
	}
}

func newRenderer(cfg config.Config, logger logrus.FieldLogger) preview.Renderer {
	if cfg.PreviewRenderer == config.RendererBrowser {
		return preview.NewBrowserRenderer(logger)
	}
	return preview.NewRasterRenderer(logger)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
