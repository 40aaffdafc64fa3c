package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)

	// POST /bicks
	mux.HandleFunc("/bicks", h.Bicks)

	// GET/DELETE /bicks/{id}, POST /bicks/{id}/process, POST /bicks/{id}/retry,
	// POST /bicks/from-url
	// Важно: trailing slash, чтобы handler мог TrimPrefix("/bicks/")
	mux.HandleFunc("/bicks/", h.BickByID)

	return mux
}

func NewExtractRouter(h *ExtractHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/extract", h.Extract)

	return mux
}
