package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yndnr/tw5keep/internal/storage/wikistore"
)

const (
	// DAVHeader is the capability header probed by the browser saver.
	DAVHeader = "dav"
	// DAVValue advertises PUT-saver support.
	DAVValue = "tw5/put"

	contentTypeHTML  = "text/html"
	contentTypePlain = "text/plain"
)

// WikiService is the document protocol the handlers drive.
type WikiService interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, body io.Reader) (*wikistore.SnapshotInfo, error)
}

// Handler is the request dispatcher.
type Handler struct {
	wiki   WikiService
	logger *slog.Logger
}

// New creates a new Handler. A nil logger falls back to slog.Default().
func New(wiki WikiService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		wiki:   wiki,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r)
	case http.MethodPut:
		h.handleUpdate(w, r)
	case http.MethodOptions:
		h.handleCapability(w, r)
	default:
		h.handleNotAllowed(w, r)
	}
}

// writeResponse sends a fully formed response: headers, status, then the
// whole body in a single write.
func writeResponse(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// writeError sends a 500 whose body is the error text.
func writeError(w http.ResponseWriter, err error) {
	writeResponse(w, http.StatusInternalServerError, contentTypePlain, []byte(err.Error()))
}
