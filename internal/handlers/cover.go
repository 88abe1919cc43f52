package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Placeholder cover (simple gray SVG)
var placeholderCoverSVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="264" height="352" viewBox="0 0 264 352">
  <rect width="264" height="352" fill="#e5e7eb"/>
  <text x="132" y="176" font-family="Arial, sans-serif" font-size="16" fill="#9ca3af" text-anchor="middle" dominant-baseline="middle">No Cover</text>
</svg>`)

// handleGameCover proxies a game's cover art or returns the placeholder
func (h *Handlers) handleGameCover(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		servePlaceholderCover(w)
		return
	}

	cover, err := h.Catalog.GetCover(r.Context(), id)
	if err != nil {
		servePlaceholderCover(w)
		return
	}

	w.Header().Set("Content-Type", cover.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(cover.Data)
}

func servePlaceholderCover(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(placeholderCoverSVG)
}
