package food

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/blobstore"
	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/vision"
	"github.com/bptrack/bptrack/internal/platform/websocket"
	"github.com/bptrack/bptrack/pkg/calendar"
)

const EventCreated = "food_log.created"

type Service struct {
	repo     FoodLogRepository
	analyzer vision.Analyzer
	photos   blobstore.Store
	pub      websocket.EventPublisher
	logger   zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService builds the food service. photos may be nil, in which case
// images are analyzed but not kept.
func NewService(repo FoodLogRepository, analyzer vision.Analyzer, photos blobstore.Store,
	pub websocket.EventPublisher, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, analyzer: analyzer, photos: photos, pub: pub, logger: logger, loc: loc, now: time.Now}
}

// AnalyzeAndLog analyzes a meal photo and stores the resulting food log.
func (s *Service) AnalyzeAndLog(ctx context.Context, userID int64, req AnalyzeRequest) (*FoodLog, *vision.Analysis, error) {
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, nil, envelope.Invalidf("Image and user_id required")
	}
	mealType := strings.ToLower(strings.TrimSpace(req.MealType))
	if mealType == "" {
		mealType = "unknown"
	}
	if !mealTypes[mealType] {
		return nil, nil, envelope.Invalidf("meal_type must be one of breakfast, lunch, dinner, snack, unknown")
	}
	image, mimeType, err := vision.DecodeImage(req.ImageBase64)
	if err != nil {
		return nil, nil, envelope.Invalidf("image_base64: %s", err.Error())
	}
	if len(image) > blobstore.MaxObjectSize {
		return nil, nil, envelope.Invalidf("image exceeds %d MB", blobstore.MaxObjectSize>>20)
	}

	analysis, err := s.analyzer.Analyze(ctx, image, mimeType)
	if err != nil {
		return nil, nil, fmt.Errorf("vision analysis failed: %w", err)
	}

	l := &FoodLog{
		UserID:        userID,
		MealType:      mealType,
		SodiumContent: analysis.EstimatedSodiumMg,
		Calories:      analysis.EstimatedCalories,
		LoggedAt:      s.now(),
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = analysis.Description()
	}
	if desc != "" {
		l.FoodDescription = &desc
	}

	key := ""
	if s.photos != nil {
		key = blobstore.FoodPhotoKey(userID, mimeType)
		url, err := s.photos.Put(ctx, key, mimeType, image)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("food photo upload failed")
			key = ""
		} else {
			l.ImageURL = &url
		}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		if key != "" {
			if derr := s.photos.Delete(ctx, key); derr != nil {
				s.logger.Warn().Err(derr).Str("key", key).Msg("orphaned food photo")
			}
		}
		return nil, nil, err
	}

	websocket.PublishBestEffort(ctx, s.pub, s.logger, websocket.NewEvent(EventCreated, userID, l.ID,
		map[string]any{"sodium_level": analysis.SodiumLevel, "health_rating": analysis.HealthRating}))
	return l, analysis, nil
}

func (s *Service) ListFoodLogs(ctx context.Context, userID int64, limit int) ([]*FoodLog, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if items == nil && err == nil {
		items = []*FoodLog{}
	}
	return items, err
}

// TodaySodium totals the sodium logged since local midnight.
func (s *Service) TodaySodium(ctx context.Context, userID int64) (float64, error) {
	today := calendar.Of(s.now().In(s.loc))
	return s.repo.SumSodium(ctx, userID, today.At(0, 0, s.loc), today.AddDays(1).At(0, 0, s.loc))
}
