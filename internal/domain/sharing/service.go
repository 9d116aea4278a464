package sharing

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/reading"
	"github.com/bptrack/bptrack/internal/domain/symptom"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/notification"
	"github.com/bptrack/bptrack/internal/platform/websocket"
)

const (
	EventGranted = "doctor_access.granted"
	EventRevoked = "doctor_access.revoked"

	viewReadingLimit = 50
	viewSymptomLimit = 20
)

type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
}

type ReadingSource interface {
	ListReadings(ctx context.Context, userID int64, limit int) ([]*reading.Reading, error)
}

type MedicationSource interface {
	ListMedications(ctx context.Context, userID int64, activeOnly bool) ([]*medication.Medication, error)
}

type SymptomSource interface {
	ListSymptoms(ctx context.Context, userID int64, limit int) ([]*symptom.SymptomLog, error)
}

// Sources are the records a doctor view is assembled from.
type Sources struct {
	Users       UserLookup
	Readings    ReadingSource
	Medications MedicationSource
	Symptoms    SymptomSource
}

// TxRunner runs fn so that every read inside it sees one snapshot.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo   AccessRepository
	src    Sources
	tokens *TokenIssuer
	email  notification.EmailSender
	pub    websocket.EventPublisher
	logger zerolog.Logger
	appURL string
	readTx TxRunner
	now    func() time.Time
}

// NewService builds the sharing service. A nil readTx runs the doctor view
// reads without a transaction.
func NewService(repo AccessRepository, src Sources, tokens *TokenIssuer, email notification.EmailSender,
	pub websocket.EventPublisher, logger zerolog.Logger, appURL string, readTx TxRunner) *Service {
	if readTx == nil {
		readTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		repo:   repo,
		src:    src,
		tokens: tokens,
		email:  email,
		pub:    pub,
		logger: logger,
		appURL: strings.TrimRight(appURL, "/"),
		readTx: readTx,
		now:    time.Now,
	}
}

// Grant shares the user's data with a doctor, replacing any earlier grant
// for the same doctor email, and emails the doctor a signed access link.
func (s *Service) Grant(ctx context.Context, userID int64, req GrantRequest) (*Grant, error) {
	email := strings.ToLower(strings.TrimSpace(req.DoctorEmail))
	name := strings.TrimSpace(req.DoctorName)
	if email == "" || name == "" {
		return nil, envelope.Invalidf("user_id, doctor_email, and doctor_name required")
	}
	if !strings.Contains(email, "@") {
		return nil, envelope.Invalidf("doctor_email must be a valid email address")
	}
	level := strings.ToLower(strings.TrimSpace(req.AccessLevel))
	if level == "" {
		level = AccessBasic
	}
	if level != AccessBasic && level != AccessFull {
		return nil, envelope.Invalidf("access_level must be basic or full")
	}
	days := DefaultExpiryDays
	if req.ExpiresInDays != nil {
		days = *req.ExpiresInDays
	}
	if days < 1 || days > MaxExpiryDays {
		return nil, envelope.Invalidf("expires_in_days must be between 1 and %d", MaxExpiryDays)
	}

	patient, err := s.src.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	a := &DoctorAccess{
		UserID:      userID,
		DoctorEmail: email,
		DoctorName:  name,
		AccessLevel: level,
		ExpiresAt:   now.AddDate(0, 0, days),
		GrantedAt:   now,
		TokenID:     uuid.NewString(),
	}
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(userID, email, a.TokenID, a.ExpiresAt)
	if err != nil {
		return nil, err
	}
	accessURL := s.accessURL(token, userID)

	s.notifyDoctor(ctx, a, patient.Name, accessURL)
	websocket.PublishBestEffort(ctx, s.pub, s.logger, websocket.NewEvent(EventGranted, userID, a.ID,
		map[string]any{"doctor_email": a.DoctorEmail, "expires_at": a.ExpiresAt}))
	return &Grant{Access: a, AccessURL: accessURL}, nil
}

func (s *Service) accessURL(token string, userID int64) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("user_id", strconv.FormatInt(userID, 10))
	return s.appURL + "/doctor-access?" + q.Encode()
}

func (s *Service) notifyDoctor(ctx context.Context, a *DoctorAccess, patientName, accessURL string) {
	msg, err := notification.DoctorAccessEmail(a.DoctorEmail, notification.DoctorAccessData{
		DoctorName:  a.DoctorName,
		PatientName: patientName,
		AccessLevel: a.AccessLevel,
		ValidUntil:  a.ExpiresAt,
		AccessURL:   accessURL,
	})
	if err == nil {
		err = s.email.SendEmail(ctx, msg)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", a.UserID).Str("doctor_email", a.DoctorEmail).
			Msg("doctor access email not sent")
	}
}

func (s *Service) ListGrants(ctx context.Context, userID int64) ([]*DoctorAccess, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*DoctorAccess{}
	}
	return items, nil
}

// DoctorView validates a share token and returns the patient's data as
// one consistent snapshot.
func (s *Service) DoctorView(ctx context.Context, userID int64, token string) (*DoctorView, error) {
	claims, err := s.tokens.Verify(token, userID)
	if err != nil {
		return nil, err
	}

	view := &DoctorView{}
	err = s.readTx(ctx, func(ctx context.Context) error {
		access, err := s.repo.GetActive(ctx, userID, claims.Email, claims.ID, s.now())
		if errors.Is(err, envelope.ErrNotFound) {
			return ErrAccessExpired
		}
		if err != nil {
			return err
		}
		view.DoctorAccess = access

		patient, err := s.src.Users.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		view.PatientInfo = PatientInfo{
			Name:            patient.Name,
			Age:             patient.Age,
			TargetSystolic:  patient.TargetSystolic,
			TargetDiastolic: patient.TargetDiastolic,
		}
		if view.Readings, err = s.src.Readings.ListReadings(ctx, userID, viewReadingLimit); err != nil {
			return err
		}
		if view.Medications, err = s.src.Medications.ListMedications(ctx, userID, true); err != nil {
			return err
		}
		view.Symptoms, err = s.src.Symptoms.ListSymptoms(ctx, userID, viewSymptomLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) Revoke(ctx context.Context, userID int64, doctorEmail string) error {
	email := strings.ToLower(strings.TrimSpace(doctorEmail))
	if email == "" {
		return envelope.Invalidf("user_id and doctor_email required")
	}
	found, err := s.repo.Revoke(ctx, userID, email)
	if err != nil {
		return err
	}
	if !found {
		return envelope.NotFoundf("Doctor access not found")
	}
	websocket.PublishBestEffort(ctx, s.pub, s.logger, websocket.NewEvent(EventRevoked, userID, 0,
		map[string]any{"doctor_email": email}))
	return nil
}
