package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect-chat/internal/chat"
	"connect-chat/internal/config"
	"connect-chat/internal/handlers"
	"connect-chat/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	coord := chat.NewCoordinator(chat.Options{
		HistoryLimit:       cfg.Chat.HistoryLimit,
		JoinHistoryLimit:   cfg.Chat.JoinHistoryLimit,
		PinLimit:           cfg.Chat.PinLimit,
		NotifySelfMentions: cfg.Chat.NotifySelfMentions,
		SendRateRPS:        cfg.Chat.SendRateRPS,
		SendRateBurst:      cfg.Chat.SendRateBurst,
	})

	janitor := chat.NewJanitor(coord, cfg.Janitor.Interval, cfg.Janitor.IdleEvictAfter)
	go janitor.Run(ctx)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handlers.NewRouter(coord),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	if err := runServer(ctx, server); err != nil {
		logger.Fatal("Server error: %v", err)
	}
	logger.Info("Server shut down")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server shutting down...")
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
