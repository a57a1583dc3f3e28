// Package handler holds the HTTP handlers. Each constructor takes the narrow
// service interface it needs and returns an http.HandlerFunc.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kiranshivaraju/careercoach/internal/ai"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 16 << 20 // base64 of a 10 MiB document plus JSON overhead
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decode reads a JSON body into dst and validates its struct tags. It writes
// the error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil)
		case errors.Is(err, io.EOF):
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is required", nil)
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		}
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", nil)
		return
	}
	fe := fieldErrs[0]
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
		fieldMessage(fe), map[string]string{"field": fe.Field(), "tag": fe.Tag()})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s long", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "uuid":
		return fe.Field() + " must be a UUID"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// writeError maps service and provider errors onto the response envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *career.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(),
			map[string]string{"field": verr.Field})
	case errors.Is(err, career.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, "SESSION_NOT_FOUND",
			"Session not found or expired", nil)
	case errors.Is(err, career.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, career.ErrGuestNotAllowed):
		response.Error(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Sign in to use this endpoint", nil)
	case errors.Is(err, career.ErrRoundLocked):
		response.Error(w, http.StatusForbidden, "ROUND_LOCKED",
			"Pass the previous round for this role first", nil)
	case errors.Is(err, career.ErrEmailTaken):
		response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered", nil)
	case errors.Is(err, career.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	case errors.Is(err, ai.ErrUnauthorized):
		response.Error(w, http.StatusBadGateway, "AI_CREDENTIALS_REJECTED",
			"The AI provider rejected the configured API key. Supply a different key and reload the server.", nil)
	case errors.Is(err, ai.ErrQuotaExceeded):
		response.Error(w, http.StatusTooManyRequests, "AI_QUOTA_EXCEEDED",
			"The AI provider quota is exhausted, try again later", nil)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"The AI provider took too long and the request was cancelled", nil)
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_INVALID_RESPONSE",
			"The AI provider returned a malformed response", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"owner_id", mw.OwnerID(r),
		)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
