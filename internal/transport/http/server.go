package http

import (
	"log/slog"
	"net/http"
)

// ServerOptions задает CORS, ограничение частоты и каталог статических артефактов.
// Пустой StaticDir отключает раздачу файлов.
type ServerOptions struct {
	AllowedOrigins []string
	StaticDir      string
	RateLimit      float64
	RateBurst      int
}

// NewServer создает HTTP-обработчик с роутингом и middleware.
// Артефакты прогона (latest-news.json, rss.xml и др.) раздаются по /files/.
func NewServer(log *slog.Logger, h *Handler, opts ServerOptions) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", h.getNews)
	mux.HandleFunc("GET /api/news/important", h.getImportant)
	mux.HandleFunc("GET /api/stats", h.getStats)
	mux.HandleFunc("GET /api/archive", h.getArchive)
	mux.HandleFunc("GET /api/health", h.healthCheck)
	if opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(opts.StaticDir))
		mux.Handle("GET /files/", http.StripPrefix("/files/", fs))
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(opts.RateLimit, opts.RateBurst)(handler)
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(opts.AllowedOrigins)(handler)
	return handler
}
