package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	handlerTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
}

// New - builds the router. Extra mounts (the websocket endpoint) are registered on the same router.
func New(logger *slog.Logger, gameUseCase gameUseCase, mounts ...func(r chi.Router)) *Server {
	server := &Server{
		logger: logger.With("component", "rest"),
		router: chi.NewRouter(),
	}

	handlers := newHandlers(server.logger, gameUseCase)

	server.router.Use(chimw.RequestID)
	server.router.Use(chimw.RealIP)
	server.router.Use(server.requestLogger)
	server.router.Use(chimw.Recoverer)

	server.router.Get("/ping", handlers.Ping)

	server.router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(handlerTimeout))
		r.Use(jsonContentType)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", handlers.ListGames)
			r.Post("/", handlers.CreateGame)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", handlers.GetGame)
				r.Delete("/", handlers.DeleteGame)

				r.Get("/movements", handlers.ListMovements)
				r.Post("/movements", handlers.CreateMovement)
			})
		})
	})

	for _, mount := range mounts {
		mount(server.router)
	}

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("HTTP server started", "port", port)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info("HTTP server stopped")

	return nil
}

func (that *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		that.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started),
			"requestID", chimw.GetReqID(r.Context()),
		)
	})
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
