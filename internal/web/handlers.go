package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jotjot/internal/domain"
	"jotjot/internal/metrics"
	"jotjot/internal/preview"
	"jotjot/internal/share"
	"jotjot/internal/view"
)

// MaxBodyBytes caps the size of a share request body.
const MaxBodyBytes = 1 << 20

const (
	msgInvalidBody      = "Invalid request body"
	msgContentTooLarge  = "Content too large (max 1MB)"
	msgTooManyRequests  = "Too many requests"
	msgImageFailed      = "Failed to generate image"
	previewCacheControl = "public, max-age=86400"
	contentTypeHTML     = "text/html; charset=utf-8"
	contentTypePNG      = "image/png"
)

// CreateShareRequest is the body of POST /api/share.
type CreateShareRequest struct {
	Content string `json:"content"`
}

// ShareContent is the body returned by GET /api/share/{id}.
type ShareContent struct {
	Content string `json:"content"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CreateShare handles POST /api/share
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusBadRequest, msgContentTooLarge)
			return
		}
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.shares.Create(r.Context(), req.Content)
	if err != nil {
		respondError(w, statusFor(err), domain.Message(err, share.MsgCreateFailed))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GetShare handles GET /api/share/{id}
func (h *Handler) GetShare(w http.ResponseWriter, r *http.Request) {
	content, err := h.shares.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusFor(err), domain.Message(err, share.MsgFetchFailed))
		return
	}
	respondJSON(w, http.StatusOK, ShareContent{Content: content})
}

// PreviewImage handles GET /api/og
func (h *Handler) PreviewImage(w http.ResponseWriter, r *http.Request) {
	content := r.URL.Query().Get("content")

	img, err := h.renderer.Render(r.Context(), content)
	if err != nil {
		h.log.WithError(err).Error("Failed to generate preview image")
		metrics.PreviewsRendered.WithLabelValues(metrics.ResultError).Inc()
		respondError(w, http.StatusInternalServerError, msgImageFailed)
		return
	}

	metrics.PreviewsRendered.WithLabelValues(metrics.ResultOK).Inc()
	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", previewCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// SharedPage handles GET /s/{id}
func (h *Handler) SharedPage(w http.ResponseWriter, r *http.Request) {
	v := view.NewSharedView(chi.URLParam(r, "id"))

	var meta preview.Metadata
	status := http.StatusOK
	switch v.Load(r.Context(), h.shares) {
	case view.Found:
		meta = preview.MetadataFor(h.baseURL, v.Content)
	default:
		status = http.StatusNotFound
		meta = preview.NotFoundMetadata()
		if v.Err != nil && !errors.Is(v.Err, domain.ErrNotFound) {
			status = http.StatusInternalServerError
			meta = preview.DefaultMetadata()
		}
	}

	h.writePage(w, status, func(buf *bytes.Buffer) error {
		return view.RenderShared(buf, v, meta)
	})
}

// EditorPage handles GET /
func (h *Handler) EditorPage(w http.ResponseWriter, _ *http.Request) {
	h.writePage(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return view.RenderEditor(buf)
	})
}

// writePage renders the page fully before writing the status line.
func (h *Handler) writePage(w http.ResponseWriter, status int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.log.WithError(err).Error("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
