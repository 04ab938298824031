// Package web serves the task store over a small local JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/store"
	"github.com/idilsaglam/taskday/internal/suggest"
)

// Options configure a Server.
type Options struct {
	Store     *store.Store
	Suggester suggest.Suggester
	Now       func() time.Time
	Version   string

	// Registry defaults to a fresh prometheus registry.
	Registry *prometheus.Registry
}

// Server is the HTTP API.
type Server struct {
	store     *store.Store
	suggester suggest.Suggester
	now       func() time.Time
	version   string
	started   time.Time

	metrics *Metrics
	engine  *gin.Engine
}

// New builds the server and its routes.
func New(opt Options) *Server {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Registry == nil {
		opt.Registry = prometheus.NewRegistry()
	}
	if opt.Suggester == nil {
		opt.Suggester = suggest.Unavailable(errors.New("no suggester configured"))
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		store:     opt.Store,
		suggester: opt.Suggester,
		now:       opt.Now,
		version:   opt.Version,
		started:   time.Now(),
		metrics:   NewMetrics(opt.Registry),
		engine:    gin.New(),
	}

	r := s.engine
	r.Use(gin.Recovery(), requestLog(), s.metrics.middleware())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opt.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)
	api.POST("/suggest", s.suggest)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
