package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaekwang-park/todo-items-api/internal/http/handler"
	"github.com/jaekwang-park/todo-items-api/internal/middleware"
	"github.com/jaekwang-park/todo-items-api/internal/service"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type serverOptions struct {
	auth *middleware.Auth
	db   handler.Pinger
}

type Option func(*serverOptions)

// WithAuth requires a valid bearer token on every route except /health.
func WithAuth(auth *middleware.Auth) Option {
	return func(o *serverOptions) { o.auth = auth }
}

// WithHealthCheck makes /health ping the datastore.
func WithHealthCheck(db handler.Pinger) Option {
	return func(o *serverOptions) { o.db = db }
}

func NewServer(port string, logger *slog.Logger, itemSvc *service.ItemService, opts ...Option) *Server {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	var h http.Handler = NewRouter(itemSvc, o.db)
	if o.auth != nil {
		h = o.auth.Middleware(h)
	}

	// Apply middleware chain: recovery -> logging -> [auth] -> router
	chain := middleware.Recovery(logger)(middleware.Logging(logger)(h))

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      chain,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
