package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ainews/internal/domain"
)

type newsGetter interface {
	GetNews(ctx context.Context, limit int) (*domain.Result, error)
	GetImportant(ctx context.Context, threshold int) ([]domain.Article, error)
	GetLatest(ctx context.Context) (*domain.Result, error)
	GetArchive(ctx context.Context, limit int) ([]domain.Article, error)
}

type newsResponse struct {
	RunID       string           `json:"runId,omitempty"`
	LastUpdated time.Time        `json:"lastUpdated,omitzero"`
	TotalCount  int              `json:"totalCount"`
	News        []domain.Article `json:"news"`
}

type statsResponse struct {
	RunID      string       `json:"runId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Stats      domain.Stats `json:"stats"`
}

type Handler struct {
	log                *slog.Logger
	newsGetter         newsGetter
	importantThreshold int
}

// NewHandler создает обработчики API. importantThreshold используется,
// когда запрос не задает порог явно.
func NewHandler(log *slog.Logger, getter newsGetter, importantThreshold int) *Handler {
	return &Handler{
		log:                log,
		newsGetter:         getter,
		importantThreshold: importantThreshold,
	}
}

// getNews - хендлер для эндпоинта GET /api/news
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r, "transport.http/getNews")
	limit, ok := intParam(w, r, log, "limit", 0, 1, 1000)
	if !ok {
		return
	}
	latest, err := h.newsGetter.GetNews(r.Context(), limit)
	if err != nil {
		h.respondWithStorageError(w, log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newsResponse{
		RunID:       latest.RunID,
		LastUpdated: latest.FinishedAt,
		TotalCount:  len(latest.Articles),
		News:        latest.Articles,
	})
}

// getImportant - хендлер для эндпоинта GET /api/news/important
func (h *Handler) getImportant(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r, "transport.http/getImportant")
	threshold, ok := intParam(w, r, log, "threshold", h.importantThreshold, domain.MinImportance, domain.MaxImportance)
	if !ok {
		return
	}
	news, err := h.newsGetter.GetImportant(r.Context(), threshold)
	if err != nil {
		h.respondWithStorageError(w, log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newsResponse{TotalCount: len(news), News: news})
}

// getStats - хендлер для эндпоинта GET /api/stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r, "transport.http/getStats")
	latest, err := h.newsGetter.GetLatest(r.Context())
	if err != nil {
		h.respondWithStorageError(w, log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, statsResponse{
		RunID:      latest.RunID,
		StartedAt:  latest.StartedAt,
		FinishedAt: latest.FinishedAt,
		Stats:      latest.Stats,
	})
}

// getArchive - хендлер для эндпоинта GET /api/archive
func (h *Handler) getArchive(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r, "transport.http/getArchive")
	limit, ok := intParam(w, r, log, "limit", 0, 1, 1000)
	if !ok {
		return
	}
	news, err := h.newsGetter.GetArchive(r.Context(), limit)
	if err != nil {
		h.respondWithStorageError(w, log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newsResponse{TotalCount: len(news), News: news})
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if latest, err := h.newsGetter.GetLatest(r.Context()); err == nil {
		body["lastRunId"] = latest.RunID
		body["lastUpdated"] = latest.FinishedAt
	}
	respondWithJSON(w, http.StatusOK, body)
}

func (h *Handler) requestLogger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("component", "http"),
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
}

func (h *Handler) respondWithStorageError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNoSnapshot):
		respondWithError(w, http.StatusServiceUnavailable, "No collection has completed yet")
	case errors.Is(err, domain.ErrArchiveDisabled):
		respondWithError(w, http.StatusNotFound, "Archive is not enabled")
	default:
		log.Error("Failed to read news", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// intParam читает целочисленный параметр запроса в пределах [lo,hi].
// При ошибке сам отвечает 400 и возвращает false.
func intParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		log.Warn("invalid query parameter", slog.String("param", name), slog.String("value", raw))
		respondWithError(w, http.StatusBadRequest, "Invalid '"+name+"' parameter")
		return 0, false
	}
	return v, true
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
