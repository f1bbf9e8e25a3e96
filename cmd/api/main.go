package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/partdesk/backend/internal/config"
	"github.com/partdesk/backend/internal/handler"
	"github.com/partdesk/backend/internal/service/ai"
	"github.com/partdesk/backend/internal/service/chat"
	"github.com/partdesk/backend/internal/service/knowledge"
	"github.com/partdesk/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	catalog, err := knowledge.Open(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalog.Close()
	log.Printf("catalog database opened at %s", cfg.Catalog.Path)

	var generator chat.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize generation service: %v", err)
			log.Println("continuing with fallback replies only - check the ARK_* environment variables")
		} else {
			generator = aiService
			log.Println("generation service initialized successfully")
		}
	} else {
		log.Println("generation credentials not configured, replies will fall back to the apology message")
	}

	sessions := session.NewStore()
	chatService := chat.NewService(sessions, catalog, generator)

	router := handler.NewRouter(chatService, catalog)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PartDesk backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
