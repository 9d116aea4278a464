package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/notification"
	"github.com/bptrack/bptrack/pkg/calendar"
)

const noRemindersMessage = "No active medications with reminders found"

// UserLookup resolves a user's contact details.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
}

// MedicationSource lists the medications that carry reminder times.
type MedicationSource interface {
	ListMedications(ctx context.Context, userID int64, activeOnly bool) ([]*medication.Medication, error)
	TakenToday(ctx context.Context, userID int64) (map[int64]int, error)
	ActiveWithReminders(ctx context.Context) ([]*medication.Medication, error)
}

type Service struct {
	users      UserLookup
	meds       MedicationSource
	deliveries DeliveryRepository
	email      notification.EmailSender
	sms        notification.SMSSender
	logger     zerolog.Logger
	loc        *time.Location
	now        func() time.Time
}

func NewService(users UserLookup, meds MedicationSource, deliveries DeliveryRepository,
	email notification.EmailSender, sms notification.SMSSender, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		users:      users,
		meds:       meds,
		deliveries: deliveries,
		email:      email,
		sms:        sms,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

type dueReminder struct {
	med   *medication.Medication
	clock medication.Clock
	at    time.Time
}

func (d dueReminder) delivery(method string) Delivery {
	return Delivery{MedicationID: d.med.ID, ReminderTime: d.clock.String(), Date: calendar.Of(d.at), Method: method}
}

// dueReminders expands medications into their reminder occurrences, keeping
// only those due at now unless all is set.
func (s *Service) dueReminders(meds []*medication.Medication, now time.Time, all bool) []dueReminder {
	var out []dueReminder
	for _, m := range meds {
		for _, raw := range m.ReminderTimes {
			clock, err := medication.ParseClock(raw)
			if err != nil {
				s.logger.Warn().Int64("medication_id", m.ID).Str("reminder_time", raw).Msg("skipping invalid reminder time")
				continue
			}
			if all || Due(now, clock) {
				out = append(out, dueReminder{med: m, clock: clock, at: occurrence(now, clock, s.loc)})
			}
		}
	}
	return out
}

func withReminders(meds []*medication.Medication) []*medication.Medication {
	var out []*medication.Medication
	for _, m := range meds {
		if len(m.ReminderTimes) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// SendReminders delivers the user's due reminders now. Delivery failures
// are reported per reminder and never fail the call.
func (s *Service) SendReminders(ctx context.Context, userID int64, method string, testSend bool) (*SendResult, error) {
	if method == "" {
		method = MethodEmail
	}
	if method != MethodEmail && method != MethodSMS {
		return nil, envelope.Invalidf("reminder_method must be \"email\" or \"sms\"")
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	meds, err := s.meds.ListMedications(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	meds = withReminders(meds)
	if len(meds) == 0 {
		return &SendResult{Message: noRemindersMessage, Results: []Result{}}, nil
	}

	now := s.now().In(s.loc)
	due := s.dueReminders(meds, now, testSend)
	res := &SendResult{
		TotalMedicationsChecked: len(meds),
		RemindersDue:            len(due),
		Results:                 make([]Result, 0, len(due)),
	}
	for _, d := range due {
		r := s.deliver(ctx, u, d, method)
		if r.Status == StatusSent {
			res.RemindersSent++
			if !testSend {
				s.record(ctx, d.delivery(method))
			}
		}
		res.Results = append(res.Results, r)
	}

	if testSend {
		res.Message = fmt.Sprintf("Test reminders sent for %d medications", res.RemindersSent)
	} else {
		res.Message = fmt.Sprintf("%d medication reminders sent successfully", res.RemindersSent)
	}
	return res, nil
}

// record marks a manually sent reminder delivered so the dispatcher does
// not repeat it.
func (s *Service) record(ctx context.Context, d Delivery) {
	if _, err := s.deliveries.Claim(ctx, d); err != nil {
		s.logger.Warn().Err(err).Int64("medication_id", d.MedicationID).Msg("record reminder delivery failed")
	}
}

func (s *Service) deliver(ctx context.Context, u *user.User, d dueReminder, method string) Result {
	r := Result{Medication: d.med.MedicationName, Time: d.clock.String(), Method: method}
	data := notification.ReminderData{
		PatientName:    u.Name,
		MedicationName: d.med.MedicationName,
		Dosage:         deref(d.med.Dosage),
		Time:           d.clock.String(),
		Notes:          deref(d.med.Notes),
	}

	var err error
	switch method {
	case MethodEmail:
		to := deref(u.Email)
		if to == "" {
			r.Status, r.Error = StatusSkipped, "user has no email address"
			return r
		}
		var msg notification.EmailMessage
		if msg, err = notification.ReminderEmail(to, data); err == nil {
			err = s.email.SendEmail(ctx, msg)
		}
	case MethodSMS:
		to := deref(u.Phone)
		if to == "" {
			r.Status, r.Error = StatusSkipped, "user has no phone number"
			return r
		}
		var body string
		if body, err = notification.ReminderSMS(data); err == nil {
			err = s.sms.SendSMS(ctx, to, body)
		}
	}

	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Int64("medication_id", d.med.ID).
			Str("method", method).Msg("reminder delivery failed")
		r.Status, r.Error = StatusFailed, err.Error()
		return r
	}
	r.Status = StatusSent
	return r
}

// Today lists every reminder scheduled for the user's current day.
func (s *Service) Today(ctx context.Context, userID int64) (*Schedule, error) {
	meds, err := s.meds.ListMedications(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	taken, err := s.meds.TakenToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := calendar.Of(now)
	sched := &Schedule{Reminders: []Upcoming{}}
	for _, m := range withReminders(meds) {
		for _, raw := range m.ReminderTimes {
			clock, err := medication.ParseClock(raw)
			if err != nil {
				continue
			}
			at := today.At(clock.Hour, clock.Minute, s.loc)
			sched.Reminders = append(sched.Reminders, Upcoming{
				MedicationID:     m.ID,
				MedicationName:   m.MedicationName,
				Dosage:           m.Dosage,
				ReminderTime:     clock.String(),
				ReminderDateTime: at,
				AlreadyTaken:     taken[m.ID] > 0,
				IsOverdue:        at.Before(now),
				Notes:            m.Notes,
			})
		}
	}
	sort.SliceStable(sched.Reminders, func(i, j int) bool {
		return sched.Reminders[i].ReminderDateTime.Before(sched.Reminders[j].ReminderDateTime)
	})

	sched.TotalToday = len(sched.Reminders)
	for _, r := range sched.Reminders {
		if r.AlreadyTaken {
			sched.TakenCount++
		} else if r.IsOverdue {
			sched.OverdueCount++
		}
	}
	return sched, nil
}

// Dispatch emails every due reminder across all users once per
// occurrence. A failed send is released so the next pass retries it.
func (s *Service) Dispatch(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	meds, err := s.meds.ActiveWithReminders(ctx)
	if err != nil {
		return stats, err
	}
	stats.Checked = len(meds)

	now := s.now().In(s.loc)
	users := make(map[int64]*user.User)
	for _, d := range s.dueReminders(meds, now, false) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Due++

		u, ok := users[d.med.UserID]
		if !ok {
			if u, err = s.users.GetUser(ctx, d.med.UserID); err != nil {
				s.logger.Warn().Err(err).Int64("user_id", d.med.UserID).Msg("reminder user lookup failed")
				stats.Failed++
				continue
			}
			users[d.med.UserID] = u
		}
		if deref(u.Email) == "" {
			stats.Skipped++
			continue
		}

		delivery := d.delivery(MethodEmail)
		claimed, err := s.deliveries.Claim(ctx, delivery)
		if err != nil {
			return stats, fmt.Errorf("claim reminder delivery: %w", err)
		}
		if !claimed {
			stats.Skipped++
			continue
		}

		if r := s.deliver(ctx, u, d, MethodEmail); r.Status != StatusSent {
			stats.Failed++
			if err := s.deliveries.Release(ctx, delivery); err != nil {
				s.logger.Warn().Err(err).Int64("medication_id", d.med.ID).Msg("release reminder delivery failed")
			}
			continue
		}
		stats.Sent++
	}
	return stats, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
