package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
}

func New(logger *slog.Logger, players playerUseCase, analyzer analyzer) *Server {
	log := logger.With("component", "rest")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				log.LogAttrs(context.Background(), slog.LevelError, "request failed", append(attrs, slog.String("error", v.Error.Error()))...)
				return nil
			}

			log.LogAttrs(context.Background(), slog.LevelDebug, "request", attrs...)
			return nil
		},
	}))

	ping := NewPingHandler()
	handlers := NewHandlers(log, players, analyzer)

	e.GET("/ping", ping.PingHandler)
	e.GET("/players/:id/stats", handlers.Stats)
	e.GET("/players/:id/history", handlers.History)
	e.GET("/players/:id/difficulty", handlers.Difficulty)
	e.POST("/analyze", handlers.Analyze)

	return &Server{
		logger: log,
		echo:   e,
	}
}

// ServeHTTP lets the server be mounted or tested without a listener.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	that.echo.ServeHTTP(w, r)
}

// Start serves until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := that.echo.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	that.logger.Info("Starting HTTP server", "port", port)

	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
