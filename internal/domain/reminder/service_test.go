package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/notification"
)

// -- Mocks --

type mockUsers struct {
	users map[int64]*user.User
}

func (m *mockUsers) GetUser(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, envelope.NotFoundf("User not found")
	}
	return u, nil
}

type mockMeds struct {
	meds  []*medication.Medication
	taken map[int64]int
}

func (m *mockMeds) ListMedications(_ context.Context, userID int64, activeOnly bool) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, med := range m.meds {
		if med.UserID == userID && (!activeOnly || med.Active) {
			out = append(out, med)
		}
	}
	return out, nil
}

func (m *mockMeds) TakenToday(_ context.Context, _ int64) (map[int64]int, error) {
	if m.taken == nil {
		return map[int64]int{}, nil
	}
	return m.taken, nil
}

func (m *mockMeds) ActiveWithReminders(_ context.Context) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, med := range m.meds {
		if med.Active && len(med.ReminderTimes) > 0 {
			out = append(out, med)
		}
	}
	return out, nil
}

type mockDeliveries struct {
	claimed map[Delivery]bool
}

func newMockDeliveries() *mockDeliveries {
	return &mockDeliveries{claimed: make(map[Delivery]bool)}
}

func key(d Delivery) Delivery {
	d.Method = ""
	return d
}

func (m *mockDeliveries) Claim(_ context.Context, d Delivery) (bool, error) {
	if m.claimed[key(d)] {
		return false, nil
	}
	m.claimed[key(d)] = true
	return true, nil
}

func (m *mockDeliveries) Release(_ context.Context, d Delivery) error {
	delete(m.claimed, key(d))
	return nil
}

type fixture struct {
	svc        *Service
	meds       *mockMeds
	deliveries *mockDeliveries
	email      *notification.MockEmailSender
	sms        *notification.MockSMSSender
}

func strPtr(s string) *string { return &s }

func newFixture(now time.Time) *fixture {
	users := &mockUsers{users: map[int64]*user.User{
		1: {ID: 1, Name: "Ada", Email: strPtr("ada@example.com"), Phone: strPtr("+15550100")},
		2: {ID: 2, Name: "Bo"},
	}}
	meds := &mockMeds{meds: []*medication.Medication{
		{ID: 10, UserID: 1, MedicationName: "Lisinopril", Dosage: strPtr("10mg"), ReminderTimes: []string{"08:00", "20:00"}, Active: true},
		{ID: 11, UserID: 1, MedicationName: "Amlodipine", ReminderTimes: []string{"08:10"}, Active: true},
		{ID: 12, UserID: 1, MedicationName: "Old", ReminderTimes: []string{"08:00"}, Active: false},
		{ID: 13, UserID: 1, MedicationName: "NoTimes", Active: true},
		{ID: 20, UserID: 2, MedicationName: "Atenolol", ReminderTimes: []string{"08:05"}, Active: true},
	}}
	f := &fixture{
		meds:       meds,
		deliveries: newMockDeliveries(),
		email:      &notification.MockEmailSender{},
		sms:        &notification.MockSMSSender{},
	}
	f.svc = NewService(users, meds, f.deliveries, f.email, f.sms, zerolog.Nop(), time.UTC)
	f.svc.now = func() time.Time { return now }
	return f
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 4, 10, hour, minute, 0, 0, time.UTC)
}

func TestDue(t *testing.T) {
	cases := []struct {
		now   time.Time
		clock string
		want  bool
	}{
		{at(8, 0), "08:00", true},
		{at(8, 15), "08:00", true},
		{at(7, 45), "08:00", true},
		{at(8, 16), "08:00", false},
		{at(23, 55), "00:05", true},
		{at(0, 5), "23:55", true},
		{at(0, 5), "23:49", false},
		{at(12, 0), "00:00", false},
	}
	for _, tc := range cases {
		clock, _ := medication.ParseClock(tc.clock)
		if got := Due(tc.now, clock); got != tc.want {
			t.Errorf("Due(%s, %s) = %v, want %v", tc.now.Format("15:04"), tc.clock, got, tc.want)
		}
	}
}

func TestOccurrence_CrossesMidnight(t *testing.T) {
	clock, _ := medication.ParseClock("23:55")
	got := occurrence(time.Date(2026, 4, 10, 0, 5, 0, 0, time.UTC), clock, time.UTC)
	if got.Day() != 9 || got.Hour() != 23 {
		t.Errorf("expected the previous day's 23:55, got %s", got)
	}
}

func TestSendReminders_DueByEmail(t *testing.T) {
	f := newFixture(at(8, 5))
	res, err := f.svc.SendReminders(context.Background(), 1, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalMedicationsChecked != 2 {
		t.Errorf("expected 2 medications checked, got %d", res.TotalMedicationsChecked)
	}
	if res.RemindersDue != 2 || res.RemindersSent != 2 {
		t.Errorf("expected 2 due and sent, got %+v", res)
	}
	calls := f.email.Calls()
	if len(calls) != 2 || calls[0].To != "ada@example.com" || calls[0].Subject != "Medication Reminder - Lisinopril" {
		t.Errorf("unexpected emails %+v", calls)
	}
	if res.Message != "2 medication reminders sent successfully" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.deliveries.claimed) != 2 {
		t.Errorf("expected manual sends to be recorded, got %d", len(f.deliveries.claimed))
	}
}

func TestSendReminders_TestSendAll(t *testing.T) {
	f := newFixture(at(14, 0))
	res, err := f.svc.SendReminders(context.Background(), 1, MethodSMS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RemindersDue != 3 || res.RemindersSent != 3 {
		t.Errorf("expected all 3 reminders, got %+v", res)
	}
	if len(f.sms.Calls()) != 3 || f.sms.Calls()[0].To != "+15550100" {
		t.Errorf("unexpected sms calls %+v", f.sms.Calls())
	}
	if res.Message != "Test reminders sent for 3 medications" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(f.deliveries.claimed) != 0 {
		t.Error("test sends must not be recorded")
	}
}

func TestSendReminders_FailureDoesNotFail(t *testing.T) {
	f := newFixture(at(8, 0))
	f.email.ShouldFail = true
	f.email.FailError = "ses throttled"

	res, err := f.svc.SendReminders(context.Background(), 1, MethodEmail, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RemindersSent != 0 || len(res.Results) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Results[0].Status != StatusFailed || res.Results[0].Error != "ses throttled" {
		t.Errorf("expected failed result, got %+v", res.Results[0])
	}
}

func TestSendReminders_SkippedWithoutContact(t *testing.T) {
	f := newFixture(at(8, 5))
	res, err := f.svc.SendReminders(context.Background(), 2, MethodEmail, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].Status != StatusSkipped {
		t.Errorf("expected a skipped result, got %+v", res.Results)
	}
}

func TestSendReminders_Errors(t *testing.T) {
	f := newFixture(at(8, 0))
	if _, err := f.svc.SendReminders(context.Background(), 99, MethodEmail, false); !errors.Is(err, envelope.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	var ve *envelope.ValidationError
	if _, err := f.svc.SendReminders(context.Background(), 1, "whatsapp", false); !errors.As(err, &ve) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSendReminders_NoMedications(t *testing.T) {
	f := newFixture(at(8, 0))
	f.meds.meds = nil
	res, err := f.svc.SendReminders(context.Background(), 1, MethodEmail, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "No active medications with reminders found" || res.RemindersSent != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestToday(t *testing.T) {
	f := newFixture(at(12, 0))
	f.meds.taken = map[int64]int{11: 1}

	sched, err := f.svc.Today(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched.TotalToday != 3 {
		t.Fatalf("expected 3 reminders, got %d", sched.TotalToday)
	}
	order := []string{"08:00", "08:10", "20:00"}
	for i, want := range order {
		if sched.Reminders[i].ReminderTime != want {
			t.Errorf("reminder %d: expected %s, got %s", i, want, sched.Reminders[i].ReminderTime)
		}
	}
	if sched.TakenCount != 1 || sched.OverdueCount != 1 {
		t.Errorf("expected 1 taken and 1 overdue, got %+v", sched)
	}
	if sched.Reminders[2].IsOverdue {
		t.Error("20:00 is not overdue at noon")
	}
}

func TestDispatch_DeduplicatesAndRetries(t *testing.T) {
	f := newFixture(at(8, 5))
	ctx := context.Background()

	stats, err := f.svc.Dispatch(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// user 1: 08:00 and 08:10 due; user 2 has no email.
	if stats.Due != 3 || stats.Sent != 2 || stats.Skipped != 1 {
		t.Errorf("unexpected first pass %+v", stats)
	}

	stats, _ = f.svc.Dispatch(ctx)
	if stats.Sent != 0 || stats.Skipped != 3 {
		t.Errorf("expected second pass to send nothing, got %+v", stats)
	}
	if len(f.email.Calls()) != 2 {
		t.Errorf("expected exactly 2 emails, got %d", len(f.email.Calls()))
	}
}

func TestDispatch_ReleasesFailedDelivery(t *testing.T) {
	f := newFixture(at(8, 0))
	f.email.ShouldFail = true
	stats, err := f.svc.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Failed != 2 || len(f.deliveries.claimed) != 0 {
		t.Errorf("expected failed deliveries to be released, got %+v with %d claimed", stats, len(f.deliveries.claimed))
	}
}
