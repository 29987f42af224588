package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"ledger/internal/core"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	empty      bool
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	b.payload = v
	b.empty = false
	return b
}

// Empty sends the status with no body and no content type.
func (b *JSONResponseBuilder) Empty() *JSONResponseBuilder {
	b.payload = nil
	b.empty = true
	return b
}

// Write sends the built response. The body is encoded before the status is
// written so an encoding failure can still become a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.empty {
		w.WriteHeader(b.statusCode)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(b.payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err, "status_code", b.statusCode)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(buf.Bytes())
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Issues  []core.Issue `json:"issues,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		JSON(errorBody{Error: code, Message: message})
}

// ValidationErrorResponse creates a 400 response listing every issue.
func ValidationErrorResponse(verr *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		JSON(errorBody{
			Error:   "validation_error",
			Message: verr.Error(),
			Issues:  verr.Issues,
		})
}

// InternalServerError creates a 500 response that discloses nothing.
func InternalServerError() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusInternalServerError).
		JSON(errorBody{Error: "internal_error"})
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, please try again later")
}
