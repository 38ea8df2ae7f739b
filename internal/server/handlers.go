package server

import (
	"net/http"
	"strings"
	"time"

	"namearchive/internal/logging"
	"namearchive/internal/namestore"
	"namearchive/internal/ogcache"
	"namearchive/internal/resolve"
	"namearchive/internal/router"
)

const (
	msgNotFound        = "Name not found"
	msgTooManyRequests = "Too many requests"
	msgQuotaExceeded   = "Rate limit exceeded"
	msgUpstreamError   = "Temporary upstream error"
)

func (s *Server) handleName(w http.ResponseWriter, r *http.Request, params router.Params) {
	outcome := s.resolver.Resolve(r.Context(), params["name"], clientIdentity(r))

	switch outcome.Status {
	case resolve.StatusFound:
		s.writeJSON(w, http.StatusOK, outcome.Page)
	case resolve.StatusRateLimited:
		s.writeError(w, http.StatusTooManyRequests, msgTooManyRequests, "")
	case resolve.StatusUpstreamRateLimited:
		s.writeError(w, http.StatusTooManyRequests, msgQuotaExceeded, outcome.Detail)
	case resolve.StatusUpstreamTimeout, resolve.StatusUpstreamError:
		s.writeError(w, http.StatusServiceUnavailable, msgUpstreamError, outcome.Detail)
	default:
		s.writeError(w, http.StatusNotFound, msgNotFound, outcome.Detail)
	}
}

type bulkResponse struct {
	Keys   []string                     `json:"keys"`
	Series map[string][]namestore.Point `json:"series"`
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, _ router.Params) {
	names, err := s.store.ListNames(r.Context())
	if err != nil {
		s.logger.Error("bulk listing failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	payload := bulkResponse{
		Keys:   make([]string, 0, len(names)),
		Series: make(map[string][]namestore.Point, len(names)),
	}
	for _, name := range names {
		series, err := s.store.TrendFor(r.Context(), name)
		if err != nil {
			s.logger.Error("bulk trend load failed", logging.String("name", name), logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "Internal error", "")
			return
		}
		payload.Keys = append(payload.Keys, name)
		payload.Series[name] = series
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, params router.Params) {
	image := params["image"]
	if !strings.HasSuffix(image, ".png") {
		s.writeError(w, http.StatusNotFound, msgNotFound, "")
		return
	}
	name := strings.TrimSuffix(image, ".png")

	path, err := s.previews.EnsureImage(r.Context(), name)
	if err != nil {
		s.logger.Error("preview render failed", logging.String("name", name), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	if path == "" {
		s.writeError(w, http.StatusNotFound, msgNotFound, "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}

type statusResponse struct {
	Status         string `json:"status"`
	Names          int    `json:"names"`
	UptimeSeconds  int64  `json:"uptimeSeconds"`
	PreviewVersion string `json:"previewVersion"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ router.Params) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status count failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:         "ok",
		Names:          count,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		PreviewVersion: ogcache.Version,
	})
}
