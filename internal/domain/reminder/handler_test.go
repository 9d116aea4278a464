package reminder

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

func statusOf(err error) int {
	var ae *envelope.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func TestHandler_SendReminders(t *testing.T) {
	f := newFixture(at(8, 5))
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/medication-reminders", strings.NewReader(`{"user_id":1,"reminder_method":"email"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.SendReminders(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Success       bool     `json:"success"`
		RemindersSent int      `json:"reminders_sent"`
		Results       []Result `json:"results"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body.Success || body.RemindersSent != 2 || len(body.Results) != 2 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_SendReminders_UnknownUser(t *testing.T) {
	f := newFixture(at(8, 5))
	h := NewHandler(f.svc)
	req := httptest.NewRequest(http.MethodPost, "/api/medication-reminders", strings.NewReader(`{"user_id":42}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.SendReminders(echo.New().NewContext(req, httptest.NewRecorder()))
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_SendReminders_NoMedications(t *testing.T) {
	f := newFixture(at(8, 5))
	f.meds.meds = nil
	h := NewHandler(f.svc)
	req := httptest.NewRequest(http.MethodPost, "/api/medication-reminders", strings.NewReader(`{"user_id":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.SendReminders(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "No active medications with reminders found" || body["reminders_sent"] != float64(0) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if _, ok := body["results"]; ok {
		t.Error("expected no results field")
	}
}

func TestHandler_ListToday(t *testing.T) {
	f := newFixture(at(12, 0))
	h := NewHandler(f.svc)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/medication-reminders?user_id=1", nil), rec)
	if err := h.ListToday(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Reminders    []Upcoming `json:"upcoming_reminders"`
		TotalToday   int        `json:"total_for_today"`
		OverdueCount int        `json:"overdue_count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.TotalToday != 3 || len(body.Reminders) != 3 || body.OverdueCount != 2 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c = echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/medication-reminders", nil), httptest.NewRecorder())
	if err := h.ListToday(c); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
