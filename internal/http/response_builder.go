// Package http provides the JSON API server and its handlers.
//
// This file implements a small builder for JSON responses. Successful
// mutations carry a toast notification in the X-Notification header so a
// client can show it without inspecting the body.

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	NotificationHeader         = "X-Notification"
	NotificationDurationHeader = "X-Notify-Duration"

	// notificationDuration is how long a success toast stays visible, in milliseconds.
	notificationDuration = 2000
)

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode   int
	payload      any
	headers      map[string]string
	notification *notification
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Notify attaches a toast notification with the given display duration.
func (b *JSONResponseBuilder) Notify(notifType NotificationType, message string, durationMs int) *JSONResponseBuilder {
	b.notification = &notification{Type: notifType, Message: message, Duration: durationMs}
	return b
}

// NotifySuccess is a convenience method for success toasts.
func (b *JSONResponseBuilder) NotifySuccess(message string) *JSONResponseBuilder {
	return b.Notify(NotificationSuccess, message, notificationDuration)
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.notification != nil {
		if raw, err := json.Marshal(b.notification); err == nil {
			w.Header().Set(NotificationHeader, string(raw))
			w.Header().Set(NotificationDurationHeader, strconv.Itoa(b.notification.Duration))
		}
	}

	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.payload)
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// UnprocessableEntityError creates a 422 response for input that failed validation.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
