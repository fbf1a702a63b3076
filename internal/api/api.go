// Package api provides the HTTP server and top-level wiring for insbot.
//
// It mounts the Telegram webhook and health endpoints, and assembles the
// catalog, conversation store, completion client, orchestrator, and
// dispatcher into a running service.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straxovka-go/insbot/internal/catalog"
	"github.com/straxovka-go/insbot/internal/convo"
	"github.com/straxovka-go/insbot/internal/dialog"
	"github.com/straxovka-go/insbot/internal/genai"
	"github.com/straxovka-go/insbot/internal/messaging"
	"github.com/straxovka-go/insbot/internal/telegram"
)

// DefaultAddr is the default HTTP listen address.
const DefaultAddr = ":8080"

// shutdownTimeout bounds graceful HTTP server shutdown.
const shutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	WebhookURL  string
	CatalogFile string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithWebhookURL sets the public webhook URL registered with Telegram.
func WithWebhookURL(url string) Option {
	return func(o *Opts) { o.WebhookURL = url }
}

// WithCatalogFile sets the YAML catalog override file.
func WithCatalogFile(path string) Option {
	return func(o *Opts) { o.CatalogFile = path }
}

// Server holds the handler dependencies for the HTTP endpoints.
type Server struct {
	store *convo.Store
}

// Run wires all modules together and serves until SIGINT/SIGTERM.
func Run(tgOpts []telegram.Option, storeOpts []convo.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
	}

	tgClient, err := telegram.NewClient(tgOpts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}
	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	store := convo.NewStore(storeOpts...)
	prompts := convo.NewBuilder(store)
	orchestrator := dialog.NewOrchestrator(cat, store, prompts, genaiClient)
	msgService := telegram.NewService(tgClient, cfg.WebhookURL)
	dispatcher := messaging.NewDispatcher(msgService, orchestrator, cat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher.Start(ctx)

	server := &Server{store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("/", server.rootHandler)
	mux.HandleFunc("/health", server.healthHandler)
	mux.Handle("/webhook", msgService.WebhookHandler())

	httpServer := &http.Server{Addr: cfg.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("api.Run: HTTP server listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Webhook registration happens after the server is up so Telegram's
	// verification request can be answered.
	if err := msgService.Start(ctx); err != nil {
		slog.Error("api.Run: messaging service failed to start", "error", err)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return fmt.Errorf("failed to start messaging service: %w", err)
	}

	select {
	case err := <-errCh:
		slog.Error("api.Run: HTTP server failed", "error", err)
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		slog.Info("api.Run: shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("api.Run: HTTP shutdown failed", "error", err)
	}
	if err := msgService.Stop(); err != nil {
		slog.Error("api.Run: messaging service stop failed", "error", err)
	}
	dispatcher.Wait()
	slog.Info("api.Run: shutdown complete")
	return nil
}
