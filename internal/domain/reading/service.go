package reading

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/websocket"
)

const EventCreated = "reading.created"

type Service struct {
	repo   ReadingRepository
	pub    websocket.EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo ReadingRepository, pub websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, pub: pub, logger: logger, now: time.Now}
}

func (s *Service) CreateReading(ctx context.Context, userID int64, req CreateRequest) (*Reading, error) {
	if req.Systolic == nil || req.Diastolic == nil {
		return nil, envelope.Invalidf("Missing required fields: user_id, systolic, diastolic")
	}
	if err := checkRange("systolic", *req.Systolic, 50, 300); err != nil {
		return nil, err
	}
	if err := checkRange("diastolic", *req.Diastolic, 30, 200); err != nil {
		return nil, err
	}
	if req.Pulse != nil {
		if err := checkRange("pulse", *req.Pulse, 20, 250); err != nil {
			return nil, err
		}
	}
	if req.StressLevel != nil {
		if err := checkRange("stress_level", *req.StressLevel, 1, 10); err != nil {
			return nil, err
		}
	}

	rd := &Reading{
		UserID:         userID,
		Systolic:       *req.Systolic,
		Diastolic:      *req.Diastolic,
		Pulse:          req.Pulse,
		Notes:          trimmed(req.Notes),
		FoodConsumed:   trimmed(req.FoodConsumed),
		ActivityBefore: trimmed(req.ActivityBefore),
		StressLevel:    req.StressLevel,
		Location:       trimmed(req.Location),
		ReadingTime:    s.now(),
	}
	if req.ReadingTime != nil && !req.ReadingTime.IsZero() {
		rd.ReadingTime = *req.ReadingTime
	}
	if err := s.repo.Create(ctx, rd); err != nil {
		return nil, err
	}
	rd.Status = Classify(rd.Systolic, rd.Diastolic)

	websocket.PublishBestEffort(ctx, s.pub, s.logger,
		websocket.NewEvent(EventCreated, userID, rd.ID, map[string]any{"status": rd.Status}))
	return rd, nil
}

func (s *Service) ListReadings(ctx context.Context, userID int64, limit int) ([]*Reading, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, rd := range items {
		rd.Status = Classify(rd.Systolic, rd.Diastolic)
	}
	if items == nil {
		items = []*Reading{}
	}
	return items, nil
}

// Latest returns the newest reading, or nil when the user has none.
func (s *Service) Latest(ctx context.Context, userID int64) (*Reading, error) {
	items, err := s.ListReadings(ctx, userID, 1)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return envelope.Invalidf("%s must be between %d and %d", field, lo, hi)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
