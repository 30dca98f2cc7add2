package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// ErrorType buckets errors by the stage that produced them.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Stable error codes attached to AppErrors. API clients and log queries
// key on these, so they never change once shipped.
const (
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable   = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat     = "INVALID_FORMAT"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeUnsupportedDoc    = "UNSUPPORTED_DOCUMENT_TYPE"
	ErrCodeDecodingFailed    = "DECODING_FAILED"
	ErrCodeMalformedJobInput = "MALFORMED_JOB_INPUT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeTaggerInitFailed  = "TAGGER_INIT_FAILED"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
)

// AppError carries a typed code plus optional structured context, so the
// same error renders usefully in logs, API responses and CLI output.
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext attaches a key/value pair, allocating the map on first use.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, Cause: cause}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

// NewExtractionError wraps failures to pull text out of a document binary.
// Extraction errors always propagate; no partial text is returned.
func NewExtractionError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeExtraction, code, message, cause)
}

// NewParseError wraps failures to parse a job description blob.
func NewParseError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeParse, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// Logger is a thin wrapper over slog's JSON handler that knows how to
// unpack AppErrors into structured fields.
type Logger struct {
	logger *slog.Logger
}

// NewLogger builds a JSON logger writing to stdout at the given level.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{logger: slog.New(handler)}
}

// New builds a Logger from a textual level name.
func New(level string) (*Logger, error) {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	slogLevel, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return NewLogger(slogLevel), nil
}

// LogError logs err at error level. An AppError contributes its type,
// code, message and context as individual fields.
func (l *Logger) LogError(err error, message string, args ...any) {
	appErr, ok := err.(*AppError)
	if !ok {
		l.logger.Error(message, append([]any{"error", err.Error()}, args...)...)
		return
	}

	fields := []any{
		"error_type", appErr.Type,
		"error_code", appErr.Code,
		"error_message", appErr.Message,
	}
	for key, value := range appErr.Context {
		fields = append(fields, key, value)
	}
	l.logger.Error(message, append(fields, args...)...)
}

func (l *Logger) Info(message string, args ...any) { l.logger.Info(message, args...) }

func (l *Logger) Debug(message string, args ...any) { l.logger.Debug(message, args...) }

func (l *Logger) Warn(message string, args ...any) { l.logger.Warn(message, args...) }
