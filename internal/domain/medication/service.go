package medication

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/websocket"
	"github.com/bptrack/bptrack/pkg/calendar"
)

const (
	EventCreated    = "medication.created"
	EventUpdated    = "medication.updated"
	EventDoseLogged = "medication.dose_logged"

	// GoodAdherence is the rate at or above which adherence is labelled Good.
	GoodAdherence = 80
)

type Service struct {
	meds   MedicationRepository
	logs   LogRepository
	pub    websocket.EventPublisher
	logger zerolog.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(meds MedicationRepository, logs LogRepository, pub websocket.EventPublisher, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{meds: meds, logs: logs, pub: pub, logger: logger, loc: loc, now: time.Now}
}

// Location is the zone that defines "today" for doses and reminders.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the local midnight bounds of the current day.
func (s *Service) Today() (calendar.Day, time.Time, time.Time) {
	day := calendar.Of(s.now().In(s.loc))
	return day, day.At(0, 0, s.loc), day.AddDays(1).At(0, 0, s.loc)
}

func (s *Service) CreateMedication(ctx context.Context, userID int64, req CreateRequest) (*Medication, error) {
	name := strings.TrimSpace(req.MedicationName)
	if name == "" {
		return nil, envelope.Invalidf("User ID and medication name are required")
	}
	times, err := NormalizeReminderTimes(req.ReminderTimes)
	if err != nil {
		return nil, err
	}
	if req.TimesPerDay != nil && *req.TimesPerDay < 0 {
		return nil, envelope.Invalidf("times_per_day must not be negative")
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return nil, envelope.Invalidf("end_date must not be before start_date")
	}

	m := &Medication{
		UserID:            userID,
		MedicationName:    name,
		Dosage:            req.Dosage,
		Frequency:         req.Frequency,
		TimesPerDay:       req.TimesPerDay,
		ReminderTimes:     times,
		PrescribingDoctor: req.PrescribingDoctor,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Notes:             req.Notes,
		Active:            true,
	}
	if req.Active != nil {
		m.Active = *req.Active
	}
	if err := s.meds.Create(ctx, m); err != nil {
		return nil, err
	}

	websocket.PublishBestEffort(ctx, s.pub, s.logger,
		websocket.NewEvent(EventCreated, userID, m.ID, map[string]any{"medication_name": m.MedicationName}))
	return m, nil
}

// NormalizeReminderTimes validates and zero-pads reminder times. Duplicates
// are dropped, order is kept.
func NormalizeReminderTimes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		c, err := ParseClock(raw)
		if err != nil {
			return nil, envelope.Invalidf("reminder_times: %q is not a valid HH:MM time", raw)
		}
		if s := c.String(); !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func (s *Service) ListMedications(ctx context.Context, userID int64, activeOnly bool) ([]*Medication, error) {
	items, err := s.meds.ListByUser(ctx, userID, activeOnly)
	if items == nil && err == nil {
		items = []*Medication{}
	}
	return items, err
}

func (s *Service) SetActive(ctx context.Context, userID, medicationID int64, active bool) (*Medication, error) {
	m, err := s.meds.SetActive(ctx, medicationID, userID, active)
	if err != nil {
		return nil, err
	}
	websocket.PublishBestEffort(ctx, s.pub, s.logger,
		websocket.NewEvent(EventUpdated, userID, m.ID, map[string]any{"active": m.Active}))
	return m, nil
}

func (s *Service) LogDose(ctx context.Context, userID, medicationID int64, req LogRequest) (*MedicationLog, error) {
	m, err := s.meds.GetByID(ctx, medicationID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, envelope.NotFoundf("Medication not found")
	}

	l := &MedicationLog{
		MedicationID: medicationID,
		UserID:       userID,
		Taken:        true,
		TakenAt:      s.now(),
		Notes:        req.Notes,
	}
	if req.Taken != nil {
		l.Taken = *req.Taken
	}
	if req.TakenAt != nil && !req.TakenAt.IsZero() {
		if req.TakenAt.After(s.now().Add(5 * time.Minute)) {
			return nil, envelope.Invalidf("taken_at must not be in the future")
		}
		l.TakenAt = *req.TakenAt
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, err
	}

	websocket.PublishBestEffort(ctx, s.pub, s.logger,
		websocket.NewEvent(EventDoseLogged, userID, l.ID, map[string]any{"medication_id": medicationID, "taken": l.Taken}))
	return l, nil
}

// TakenToday counts today's taken doses per medication id.
func (s *Service) TakenToday(ctx context.Context, userID int64) (map[int64]int, error) {
	_, from, to := s.Today()
	logs, err := s.logs.ListTaken(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	taken := make(map[int64]int, len(logs))
	for _, l := range logs {
		taken[l.MedicationID]++
	}
	return taken, nil
}

// Adherence compares today's taken doses against the doses scheduled by
// the reminder times of active medications.
func (s *Service) Adherence(ctx context.Context, userID int64) (*Adherence, error) {
	meds, err := s.meds.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	taken, err := s.TakenToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Adherence{}
	for _, m := range meds {
		scheduled := len(m.ReminderTimes)
		a.ScheduledToday += scheduled
		a.TakenToday += min(taken[m.ID], scheduled)
	}
	a.Rate = AdherenceRate(a.TakenToday, a.ScheduledToday)
	a.Label = AdherenceLabel(a.Rate)
	return a, nil
}

// AdherenceRate is round(taken/scheduled*100), capped at 100. Nothing
// scheduled yields 0.
func AdherenceRate(taken, scheduled int) int {
	if scheduled <= 0 {
		return 0
	}
	rate := int(math.Round(float64(taken) / float64(scheduled) * 100))
	return min(rate, 100)
}

func AdherenceLabel(rate int) string {
	if rate >= GoodAdherence {
		return "Good"
	}
	return "Needs Attention"
}

// ActiveWithReminders lists active medications of every user that carry
// reminder times.
func (s *Service) ActiveWithReminders(ctx context.Context) ([]*Medication, error) {
	return s.meds.ListActiveWithReminders(ctx)
}
