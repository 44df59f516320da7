// Package v1handler implements the version 1 HTTP handlers of the MRZ
// reading service.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mrzreader/internal/config"
	"mrzreader/internal/mrz"
	"mrzreader/pkg/logger"
	"mrzreader/pkg/serrors"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Deps holds the dependencies the handlers call into.
type Deps struct {
	// Reader runs the MRZ recognition pipeline.
	Reader mrz.Reader
}

// Options configure the v1 handlers. These settings are typically derived
// from application configuration.
type Options struct {
	// APIKey, when non-empty, is required in the X-API-Key header of read
	// requests.
	APIKey string
	// MaxUploadBytes caps the size of an uploaded document image.
	MaxUploadBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		APIKey:         cfg.HTTP.APIKey,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}
}

func (o Options) maxUploadBytes() int64 {
	if o.MaxUploadBytes > 0 {
		return o.MaxUploadBytes
	}

	return DefaultMaxUploadBytes
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	return &Handler{deps: deps, options: options}
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a semantic error to its HTTP status and renders the error
// body. Unclassified errors are logged and reported as internal without
// leaking their message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code, status := "INTERNAL", http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, serrors.ErrInvalidImage):
		code, status = "INVALID_IMAGE", http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, serrors.ErrBadRequest):
		code, status = "BAD_REQUEST", http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, serrors.ErrUnauthorized):
		code, status = "UNAUTHORIZED", http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, serrors.ErrTimeout):
		code, status = "TIMEOUT", http.StatusGatewayTimeout
		message = err.Error()
	default:
		logger.Error(ctx, err.Error())
	}

	writeJSON(ctx, w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(ctx, "could not encode response: "+err.Error())
	}
}
