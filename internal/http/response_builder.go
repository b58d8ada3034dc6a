// Package http provides the web server: dashboard pages, HTMX partials
// and the form endpoints that mutate records.
//
// This file implements the response side of the HTMX contract: a
// builder that collects status, body and HX-Trigger events, and the
// error fragment helpers shared by every form endpoint.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder accumulates a response before writing it out in
// one shot. The zero value is not usable; start from NewHTMXResponse.
type HTMXResponseBuilder struct {
	status   int
	payload  []byte
	header   map[string]string
	triggers map[string]interface{}
}

// NewHTMXResponse returns a builder that writes 200 with no body
// unless told otherwise.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{status: http.StatusOK}
}

// Status overrides the HTTP status code.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger schedules a client-side event on the HX-Trigger header.
// All scheduled events are sent as one JSON object.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	if b.triggers == nil {
		b.triggers = make(map[string]interface{})
	}
	b.triggers[name] = data
	return b
}

// TriggerRecordChanged signals that the transaction set changed; every
// money partial listens for this event.
func (b *HTMXResponseBuilder) TriggerRecordChanged() *HTMXResponseBuilder {
	return b.Trigger("record:changed", struct{}{})
}

// TriggerGoalChanged signals that the goal set changed.
func (b *HTMXResponseBuilder) TriggerGoalChanged() *HTMXResponseBuilder {
	return b.Trigger("goal:changed", struct{}{})
}

// TriggerFormReset tells the page to clear its entry forms.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// NotificationType selects the toast style shown by the frontend.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification schedules a show-notification event. durationMs
// is how long the toast stays on screen.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerSuccessNotification schedules a short success toast.
func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// TriggerErrorNotification schedules an error toast. Errors stay up
// longer than successes.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header sets a response header.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	if b.header == nil {
		b.header = make(map[string]string)
	}
	b.header[name] = value
	return b
}

// Body sets the response body.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.payload = content
	return b
}

// BodyString sets the response body from a string.
func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.payload = []byte(content)
	return b
}

// BodyHTML sets an HTML body with the matching Content-Type. The
// caller is responsible for escaping.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	return b.Header("Content-Type", "text/html; charset=utf-8").Body([]byte(html))
}

// Write flushes the accumulated response. Headers land before the
// status line, the body last.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.header {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if payload, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	w.WriteHeader(b.status)
	if len(b.payload) > 0 {
		_, _ = w.Write(b.payload)
	}
}

// ErrorResponse builds an inline error fragment the page swaps into
// the form's error slot. The message is HTML-escaped here.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

// BadRequestError builds a 400 error fragment.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError builds a 422 error fragment.
func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError builds a 500 error fragment.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError builds a 404 error fragment.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError builds a 405 response carrying the Allow
// header.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
