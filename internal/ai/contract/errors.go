// Package contract holds what every AI provider shares: the error taxonomy,
// prompts, and the strict decoding of structured responses.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means the credential was rejected. The operator must supply a different key.
	ErrUnauthorized        = errors.New("ai provider rejected credentials")
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrQuotaExceeded       = errors.New("ai provider quota exceeded")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// entityNotFound is how the Gemini API reports a key that lost access to the model.
const entityNotFound = "Requested entity was not found"

// ClassifyStatus maps an HTTP-level provider failure onto the error taxonomy.
// The original error stays in the chain.
func ClassifyStatus(status int, message string, cause error) error {
	switch {
	case strings.Contains(message, entityNotFound):
		return fmt.Errorf("%w: %w", ErrUnauthorized, cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, cause)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, cause)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", ErrInferenceTimeout, cause)
	case status >= 500:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, cause)
	default:
		return fmt.Errorf("ai request failed with status %d: %w", status, cause)
	}
}

// ClassifyTransport maps a failure that never produced an HTTP status.
func ClassifyTransport(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if strings.Contains(err.Error(), entityNotFound) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

// IsRetryable reports whether err is transient and worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInferenceTimeout)
}
