package adapter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Kind classifies a failed query.
type Kind int

const (
	KindTransport Kind = iota
	KindAuth
	KindRateLimit
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindEmpty:
		return "empty_response"
	default:
		return "transport"
	}
}

var (
	// ErrAuthentication matches errors caused by a rejected API key.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRateLimit matches errors caused by vendor throttling.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// Error wraps provider errors with the adapter name and status metadata.
type Error struct {
	Adapter string
	Kind    Kind
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Adapter, e.Err)
	}
	return fmt.Sprintf("%s API error (status=%d)", e.Adapter, e.Status)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuth
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	}
	return false
}

// classify turns an SDK error into an *Error and logs the vendor-specific
// diagnostic line.
func classify(name, vendor string, err error, logger *zap.Logger) error {
	status := statusCode(err)
	e := &Error{Adapter: name, Status: status, Err: err, Kind: kindForStatus(status)}

	switch e.Kind {
	case KindAuth:
		logger.Error(fmt.Sprintf("Invalid %s API key", vendor), zap.Int("status", status))
	case KindRateLimit:
		logger.Error("Rate limit exceeded", zap.String("adapter", name))
	default:
		logger.Error(fmt.Sprintf("%s API error", vendor), zap.Error(err))
	}
	return e
}

func emptyResponse(name, vendor string, logger *zap.Logger) error {
	logger.Error(fmt.Sprintf("%s returned no content", vendor))
	return &Error{Adapter: name, Kind: KindEmpty, Err: fmt.Errorf("%s returned no content", name)}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindTransport
	}
}

func statusCode(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	return 0
}
