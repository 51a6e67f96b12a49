package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the REST routes of the game.
func NewRouter(logger *slog.Logger, manager gameManager) http.Handler {
	router := chi.NewRouter()
	handler := newHandlers(logger, manager)

	router.Get("/ping", pingHandler)
	router.Post("/sessions", handler.createSession)
	router.Route("/sessions/{id}", func(router chi.Router) {
		router.Get("/", handler.getSession)
		router.Delete("/", handler.endSession)
		router.Post("/turns", handler.playTurn)
		router.Post("/games", handler.newGame)
	})

	return router
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
