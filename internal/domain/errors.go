package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	KindTimeout       = "timeout"
	KindConnection    = "connection"
	KindParse         = "parse"
	KindConfiguration = "configuration"
	KindFatal         = "fatal"
	KindUnknown       = "unknown"
)

// TimeoutError - запрос к источнику не уложился в отведенное время.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s: %v", e.URL, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ConnectionError - сбой транспорта (DNS, TLS, обрыв соединения) или неожиданный HTTP-статус.
// StatusCode равен нулю, если ответ не был получен.
type ConnectionError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected status code: %d for url %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch url %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ParseError - ответ источника не удалось разобрать на статьи.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigurationError - источник не может быть опрошен из-за отсутствующей или неверной настройки.
type ConfigurationError struct {
	Source  string
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("source %s is not configured: %s: %s", e.Source, e.Field, e.Message)
}

// FatalError прерывает весь прогон. Возникает вне границ обработки отдельного источника.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error at stage %s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsFatal(err error) bool {
	var target *FatalError
	return errors.As(err, &target)
}

// KindOf возвращает короткое имя категории ошибки для логов и статистики.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case IsFatal(err):
		return KindFatal
	case IsTimeout(err):
		return KindTimeout
	case IsConnection(err):
		return KindConnection
	case IsParse(err):
		return KindParse
	case IsConfiguration(err):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

var (
	// ErrNoSnapshot - ни один прогон еще не опубликовал результат.
	ErrNoSnapshot = errors.New("no collection result available yet")
	// ErrArchiveDisabled - архив в базе данных не настроен.
	ErrArchiveDisabled = errors.New("archive storage is disabled")
)
