package medication

import (
	"context"
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

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_CreateMedication(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/medications",
		`{"user_id":1,"medication_name":"Losartan","dosage":"50mg","reminder_times":["7:30"],"start_date":"2026-04-01"}`), rec)
	if err := h.CreateMedication(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Medication struct {
			ReminderTimes []string `json:"reminder_times"`
			StartDate     string   `json:"start_date"`
			EndDate       *string  `json:"end_date"`
		} `json:"medication"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Medication.ReminderTimes) != 1 || body.Medication.ReminderTimes[0] != "07:30" {
		t.Errorf("unexpected reminder times in %s", rec.Body.String())
	}
	if body.Medication.StartDate != "2026-04-01" || body.Medication.EndDate != nil {
		t.Errorf("unexpected dates in %s", rec.Body.String())
	}
}

func TestHandler_CreateMedication_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	for _, body := range []string{`{"medication_name":"A"}`, `{"user_id":1}`} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/medications", body), httptest.NewRecorder())
		if err := h.CreateMedication(c); statusOf(err) != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", body, err)
		}
	}
}

func TestHandler_UpdateAndLog(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	m, _ := svc.CreateMedication(context.Background(), 1, CreateRequest{MedicationName: "A", ReminderTimes: []string{"09:00"}})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"user_id":1}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.LogDose(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/medications/adherence?user_id=1", nil), rec)
	if err := h.GetAdherence(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var adh struct {
		Adherence Adherence `json:"adherence"`
	}
	json.Unmarshal(rec.Body.Bytes(), &adh)
	if adh.Adherence.Rate != 100 || adh.Adherence.Label != "Good" {
		t.Errorf("unexpected adherence %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPatch, "/", `{"user_id":1,"active":false}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateMedication(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Active {
		t.Error("expected medication to be deactivated")
	}

	c = e.NewContext(jsonRequest(http.MethodPatch, "/", `{"user_id":1}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateMedication(c); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 without active, got %v", err)
	}
}

func TestHandler_ListMedications(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	svc.CreateMedication(context.Background(), 1, CreateRequest{MedicationName: "A"})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/medications?user_id=1&active_only=true", nil), rec)
	if err := h.ListMedications(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Success     bool         `json:"success"`
		Medications []Medication `json:"medications"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body.Success || len(body.Medications) != 1 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
