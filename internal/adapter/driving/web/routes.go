package web

import "net/http"

// RegisterRoutes registers the HTML report routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /repos/{owner}/{repo}/pulls/{number}/report", h.Report)
}
