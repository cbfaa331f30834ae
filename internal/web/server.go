package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salama135/discord-bots/internal/commands"
)

type Dispatcher interface {
	DispatchText(ctx context.Context, userID, text string) (commands.Outcome, bool)
	Dispatch(ctx context.Context, userID string, inv commands.Invocation) commands.Outcome
	Prefix() string
}

type LogExporter interface {
	Export(ctx context.Context, actorID, format string) ([]byte, error)
}

// Server exposes the bot over HTTP so any chat frontend can drive it.
type Server struct {
	dispatcher Dispatcher
	logs       LogExporter
	logger     *slog.Logger
	router     *gin.Engine
}

func NewServer(d Dispatcher, logs LogExporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		dispatcher: d,
		logs:       logs,
		logger:     logger,
		router:     router,
	}
	router.Use(s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		users := api.Group("/users/:id")
		users.POST("/messages", s.handleMessage)
		users.POST("/commands", s.handleCommand)
		users.GET("/logs", s.handleLogs)
		users.GET("/stats", s.handleStats)
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}
