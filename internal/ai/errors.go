package ai

import "github.com/kiranshivaraju/careercoach/internal/ai/contract"

// Re-exported so callers outside the provider tree only import ai.
var (
	ErrUnauthorized        = contract.ErrUnauthorized
	ErrProviderUnavailable = contract.ErrProviderUnavailable
	ErrQuotaExceeded       = contract.ErrQuotaExceeded
	ErrInferenceTimeout    = contract.ErrInferenceTimeout
	ErrInvalidResponse     = contract.ErrInvalidResponse
)

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	return contract.IsRetryable(err)
}
