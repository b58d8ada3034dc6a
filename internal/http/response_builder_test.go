package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilderDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().BodyString("ok").Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger set without triggers: %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestResponseBuilderTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerRecordChanged().
		TriggerFormReset().
		Write(rec)

	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "record:changed") {
		t.Errorf("HX-Trigger = %q, missing record:changed", trigger)
	}
	if !strings.Contains(trigger, "form:reset") {
		t.Errorf("HX-Trigger = %q, missing form:reset", trigger)
	}
}

func TestResponseBuilderGoalTrigger(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerGoalChanged().Write(rec)

	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "goal:changed") {
		t.Errorf("HX-Trigger = %q, missing goal:changed", trigger)
	}
}

func TestResponseBuilderNotification(t *testing.T) {
	tests := []struct {
		name      string
		notifType NotificationType
		message   string
	}{
		{"success", NotificationSuccess, "Spesa registrata"},
		{"error", NotificationError, "Errore nel salvataggio"},
		{"warning", NotificationWarning, "Attenzione"},
		{"info", NotificationInfo, "Informazione"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHTMXResponse().
				TriggerNotification(tt.notifType, tt.message, 4000).
				Write(rec)

			trigger := rec.Header().Get("HX-Trigger")
			for _, want := range []string{"show-notification", string(tt.notifType), tt.message, "4000"} {
				if !strings.Contains(trigger, want) {
					t.Errorf("HX-Trigger = %q, missing %q", trigger, want)
				}
			}
		})
	}
}

func TestResponseBuilderNotificationShortcuts(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerSuccessNotification("Entrata registrata").Write(rec)
	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"success"`) || !strings.Contains(trigger, "3000") {
		t.Errorf("success shortcut HX-Trigger = %q", trigger)
	}

	rec = httptest.NewRecorder()
	NewHTMXResponse().TriggerErrorNotification("Movimento non trovato").Write(rec)
	trigger = rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"error"`) || !strings.Contains(trigger, "5000") {
		t.Errorf("error shortcut HX-Trigger = %q", trigger)
	}
}

func TestResponseBuilderStatusAndHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusCreated).
		Header("X-Request-ID", "abc123").
		BodyHTML("<p>fatto</p>").
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("X-Request-ID = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(http.StatusUnprocessableEntity, `<script>alert("x")</script>`).Write(rec)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body contains unescaped markup: %q", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body = %q, expected escaped markup", body)
	}
	if !strings.Contains(body, `class="error"`) {
		t.Errorf("body = %q, missing error div", body)
	}
}

func TestErrorResponseHelpers(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *HTMXResponseBuilder
		wantCode int
	}{
		{"bad request", func() *HTMXResponseBuilder { return BadRequestError("Formato richiesta non valido") }, http.StatusBadRequest},
		{"unprocessable", func() *HTMXResponseBuilder { return UnprocessableEntityError("Dati non validi") }, http.StatusUnprocessableEntity},
		{"internal", func() *HTMXResponseBuilder { return InternalServerError("Errore interno") }, http.StatusInternalServerError},
		{"not found", func() *HTMXResponseBuilder { return NotFoundError("Movimento non trovato") }, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.build().Write(rec)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), `class="error"`) {
				t.Errorf("body = %q, missing error div", rec.Body.String())
			}
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("POST, PUT").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST, PUT" {
		t.Errorf("Allow = %q", allow)
	}
}
