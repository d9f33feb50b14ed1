// file: internal/response/response.go
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskhive/internal/contextutils"
	"taskhive/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool   `json:"pretty_json"`
	IncludeRequestID   bool   `json:"include_request_id"`
	IncludeTimestamp   bool   `json:"include_timestamp"`
	APIVersion         string `json:"api_version"`
	MaskInternalErrors bool   `json:"mask_internal_errors"`
}

// DefaultConfig returns production-ready response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		IncludeRequestID:   true,
		IncludeTimestamp:   true,
		APIVersion:         "v1",
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
	Version   string       `json:"version,omitempty"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder helps construct standardized responses
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{config: config, logger: logger}
}

// WriteSuccess writes a 200 response with the given payload
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, http.StatusOK, b.success(r.Context(), data))
}

// WriteCreated writes a 201 response with the given payload
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, http.StatusCreated, b.success(r.Context(), data))
}

// WriteStatus writes a success envelope with an explicit status code
func (b *Builder) WriteStatus(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	b.writeJSON(w, status, b.success(r.Context(), data))
}

// WriteNoContent writes an empty success response
func (b *Builder) WriteNoContent(w http.ResponseWriter, r *http.Request) {
	b.writeJSON(w, http.StatusOK, b.success(r.Context(), nil))
}

// WriteError converts err into a structured error response. Service errors
// carry their own status codes; anything else becomes a masked 500.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := http.StatusInternalServerError
	detail := &ErrorDetail{
		Type:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred",
	}

	if se, ok := services.IsServiceError(err); ok {
		status = se.GetStatusCode()
		detail = &ErrorDetail{
			Type:    se.Type,
			Message: se.Message,
			Code:    se.Code,
			Details: se.Details,
		}
	} else if !b.config.MaskInternalErrors && err != nil {
		detail.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		contextutils.GetLogger(ctx).Error("Request failed", zap.Error(err), zap.Int("status", status))
	}

	resp := &APIResponse{
		Success: false,
		Error:   detail,
	}
	b.stamp(ctx, resp)
	b.writeJSON(w, status, resp)
}

// WriteNotFound writes a 404 error response
func (b *Builder) WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewNotFoundError(message))
}

// WriteBadRequest writes a 400 error response
func (b *Builder) WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewValidationError(message, nil))
}

// WriteMethodNotAllowed writes a 405 error response
func (b *Builder) WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp := &APIResponse{
		Success: false,
		Error: &ErrorDetail{
			Type:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed for this endpoint",
		},
	}
	b.stamp(r.Context(), resp)
	b.writeJSON(w, http.StatusMethodNotAllowed, resp)
}

// ===============================
// INTERNAL HELPERS
// ===============================

func (b *Builder) success(ctx context.Context, data interface{}) *APIResponse {
	resp := &APIResponse{
		Success: true,
		Data:    data,
	}
	b.stamp(ctx, resp)
	return resp
}

func (b *Builder) stamp(ctx context.Context, resp *APIResponse) {
	if b.config.IncludeRequestID {
		resp.RequestID = contextutils.GetRequestID(ctx)
	}
	if b.config.IncludeTimestamp {
		resp.Timestamp = time.Now().Unix()
	}
	resp.Version = b.config.APIVersion
}

func (b *Builder) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(payload); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}
