package fetcher

import (
	"ainews/internal/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second
	// maxBodyBytes ограничивает размер загружаемой ленты или ответа API.
	maxBodyBytes = 10 << 20
)

// HTTPFetcher загружает сырые ответы источников по HTTP.
// Один запрос на источник, без повторов; таймаут покрывает соединение и чтение тела.
type HTTPFetcher struct {
	client    *http.Client
	log       *slog.Logger
	timeout   time.Duration
	userAgent string
}

// NewHTTPFetcher создает HTTPFetcher с заданным таймаутом на запрос.
// Нулевой или отрицательный таймаут заменяется DefaultTimeout.
func NewHTTPFetcher(log *slog.Logger, timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{},
		log:       log,
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Timeout возвращает действующий таймаут запроса.
func (f *HTTPFetcher) Timeout() time.Duration { return f.timeout }

// Fetch выполняет GET-запрос к источнику и возвращает тело ответа целиком.
// Превышение таймаута возвращается как *domain.TimeoutError, прочие сбои транспорта
// и статусы, отличные от 200, - как *domain.ConnectionError.
// Отмена родительского контекста возвращается без обертки, чтобы прервать весь прогон.
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	log := f.log.With(
		slog.String("component", "fetcher"),
		slog.String("source", src.Name),
		slog.String("url", src.URL),
	)
	log.Debug("Fetching URL")

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src.URL, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, &domain.ConnectionError{URL: src.URL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(ctx, src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, &domain.ConnectionError{URL: src.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, f.classify(ctx, src.URL, err)
	}
	log.Debug("Successfully fetched URL", slog.Int("bytes", len(body)))
	return body, nil
}

func (f *HTTPFetcher) classify(parent context.Context, url string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.TimeoutError{URL: url, Timeout: f.timeout, Err: err}
	}
	return &domain.ConnectionError{URL: url, Err: err}
}
