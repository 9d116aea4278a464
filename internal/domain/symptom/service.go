package symptom

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/websocket"
)

const EventCreated = "symptom.created"

const maxTriggers = 20

type Service struct {
	repo   SymptomRepository
	pub    websocket.EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo SymptomRepository, pub websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, pub: pub, logger: logger, now: time.Now}
}

func (s *Service) LogSymptom(ctx context.Context, userID int64, req CreateRequest) (*SymptomLog, error) {
	symptomType := strings.TrimSpace(req.SymptomType)
	if symptomType == "" || req.Severity == nil {
		return nil, envelope.Invalidf("User ID, symptom type, and severity are required")
	}
	if *req.Severity < 1 || *req.Severity > 10 {
		return nil, envelope.Invalidf("severity must be between 1 and 10")
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		return nil, envelope.Invalidf("duration_minutes must not be negative")
	}
	triggers := normalizeTriggers(req.Triggers)
	if len(triggers) > maxTriggers {
		return nil, envelope.Invalidf("at most %d triggers are allowed", maxTriggers)
	}

	sl := &SymptomLog{
		UserID:          userID,
		SymptomType:     symptomType,
		Severity:        *req.Severity,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Triggers:        triggers,
		LoggedAt:        s.now(),
	}
	if sl.Description != nil && strings.TrimSpace(*sl.Description) == "" {
		sl.Description = nil
	}
	if req.LoggedAt != nil && !req.LoggedAt.IsZero() {
		sl.LoggedAt = *req.LoggedAt
	}
	if err := s.repo.Create(ctx, sl); err != nil {
		return nil, err
	}

	websocket.PublishBestEffort(ctx, s.pub, s.logger, websocket.NewEvent(EventCreated, userID, sl.ID,
		map[string]any{"symptom_type": sl.SymptomType, "severity": sl.Severity}))
	return sl, nil
}

func (s *Service) ListSymptoms(ctx context.Context, userID int64, limit int) ([]*SymptomLog, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*SymptomLog{}
	}
	return items, nil
}

// normalizeTriggers trims entries and drops blanks and case-insensitive
// duplicates, keeping first-seen order.
func normalizeTriggers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
