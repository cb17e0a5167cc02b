package handler

import (
	"net/http"

	"github.com/yndnr/tw5keep/internal/core/domain"
)

// handleRead handles GET: the current document as text/html.
func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	content, err := h.wiki.Load(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "couldn't read wiki file",
			"code", domain.GetErrorCode(err),
			"error", err,
		)
		writeError(w, err)
		return
	}

	writeResponse(w, http.StatusOK, contentTypeHTML, content)
}

// handleUpdate handles PUT: the body replaces the document after being
// written to a fresh snapshot.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	info, err := h.wiki.Save(r.Context(), r.Body)
	if err != nil {
		attrs := []any{
			"code", domain.GetErrorCode(err),
			"error", err,
		}
		if info != nil {
			attrs = append(attrs, "snapshot", info.Name)
		}
		h.logger.ErrorContext(r.Context(), "couldn't update wiki", attrs...)
		writeError(w, err)
		return
	}

	writeResponse(w, http.StatusOK, "", nil)
}

// handleCapability handles OPTIONS without touching storage.
func (h *Handler) handleCapability(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(DAVHeader, DAVValue)
	writeResponse(w, http.StatusOK, "", nil)
}

// handleNotAllowed rejects every other method with an empty body.
func (h *Handler) handleNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "method not allowed", "method", r.Method)
	writeResponse(w, http.StatusMethodNotAllowed, contentTypePlain, nil)
}
