package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/tw5keep/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Wiki serves and saves the document.
	Wiki handler.WikiService

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics receives per-request observations; nil disables it.
	Metrics RequestObserver

	// RateLimit is the per-IP limit in requests/second; 0 disables it.
	RateLimit int
}

// NewRouter wraps the dispatcher in the middleware chain:
// Recover -> RequestID -> AccessLog -> Metrics -> RateLimit -> dispatcher.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		AccessLog(log),
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, Metrics(cfg.Metrics))
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit))
	}

	return Chain(handler.New(cfg.Wiki, log), middlewares...)
}
