package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyString("test").
		Header("X-Custom", "1").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("X-Custom") != "1" {
		t.Errorf("custom header not set")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should be absent without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerEntryCreated("2024-05").
		TriggerFormReset().
		TriggerSuccessNotification("Saved").
		Write(w)

	var got map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventEntryCreated, EventFormReset, EventShowNotification} {
		if _, ok := got[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if string(got[EventEntryCreated]) != `{"month":"2024-05"}` {
		t.Errorf("entry:created payload = %s", got[EventEntryCreated])
	}

	var note struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(got[EventShowNotification], &note); err != nil {
		t.Fatal(err)
	}
	if note.Type != "success" || note.Message != "Saved" || note.Duration != 3000 {
		t.Errorf("notification = %+v", note)
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	tests := []struct {
		name   string
		build  *HTMXResponseBuilder
		status int
	}{
		{"bad request", BadRequestError("<b>x</b>"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("<b>x</b>"), http.StatusUnprocessableEntity},
		{"internal", InternalServerError("<b>x</b>"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build.Write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			want := `<div class="error">&lt;b&gt;x&lt;/b&gt;</div>`
			if w.Body.String() != want {
				t.Errorf("body = %q, want %q", w.Body.String(), want)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}
