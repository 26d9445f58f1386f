package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/auth"
	"github.com/Adda-Baaj/arogya-feed/internal/home"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/Adda-Baaj/arogya-feed/internal/store"
	"github.com/Adda-Baaj/arogya-feed/pkg/publishers"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Pages      *home.Service
	Documents  store.Documents
	Verifier   auth.Verifier
	Publishers *publishers.Fanout
	Log        logger.Logger
	RateRPS    float64
	RateBurst  int
}

type handlers struct {
	pages    *home.Service
	docs     store.Documents
	verifier auth.Verifier
	pubs     *publishers.Fanout
	log      logger.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	h := &handlers{
		pages:    d.Pages,
		docs:     d.Documents,
		verifier: d.Verifier,
		pubs:     d.Publishers,
		log:      logger.Ensure(d.Log),
	}
	rps, burst := d.RateRPS, d.RateBurst
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	limit := newIPLimiter(rps, burst, h.log).middleware()

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())

	r.GET("/healthz", h.health)

	g := r.Group("/api", h.identify())
	g.GET("/session", h.getSession)
	g.GET("/feed", h.getFeed)
	g.GET("/welcome", h.getWelcome)
	g.GET("/home", h.requireSignedIn(), h.getHome)
	g.GET("/testimonials", h.listTestimonials)
	g.POST("/testimonials", limit, h.requireSignedIn(), h.postTestimonial)
	g.POST("/subscriptions", limit, h.postSubscription)
	return r
}

// Server runs the router until its context ends.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// NewServer builds an HTTP server on addr.
func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, log logger.Logger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             logger.Ensure(log),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "http_listen", map[string]any{"addr": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.InfoObj("http server stopped", "http_stopped", nil)
	return nil
}

func (h *handlers) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.DebugObj("http request", "http_request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
