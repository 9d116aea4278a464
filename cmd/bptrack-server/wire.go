package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/bptrack/bptrack/internal/config"
	"github.com/bptrack/bptrack/internal/domain/activity"
	"github.com/bptrack/bptrack/internal/domain/chat"
	"github.com/bptrack/bptrack/internal/domain/dashboard"
	"github.com/bptrack/bptrack/internal/domain/food"
	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/pharmacy"
	"github.com/bptrack/bptrack/internal/domain/reading"
	"github.com/bptrack/bptrack/internal/domain/reminder"
	"github.com/bptrack/bptrack/internal/domain/sharing"
	"github.com/bptrack/bptrack/internal/domain/symptom"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/blobstore"
	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/internal/platform/notification"
	"github.com/bptrack/bptrack/internal/platform/places"
	"github.com/bptrack/bptrack/internal/platform/vision"
	"github.com/bptrack/bptrack/internal/platform/websocket"
)

type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

// app holds the assembled services and their HTTP handlers.
type app struct {
	hub       *websocket.Hub
	reminders *reminder.Service
	handlers  []routeRegistrar
	closers   []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// adapters are the outbound integrations selected by configuration.
type adapters struct {
	email    notification.EmailSender
	sms      notification.SMSSender
	photos   blobstore.Store
	analyzer vision.Analyzer
	chat     chat.Completer
	places   places.Client
	closers  []func() error
}

func needsAWS(cfg *config.Config) bool {
	return cfg.EmailProvider == "ses" || cfg.SMSProvider == "sns" ||
		cfg.S3Bucket != "" || cfg.VisionProvider == "rekognition"
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(oc)
}

func buildAdapters(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*adapters, error) {
	ad := &adapters{}

	var awsCfg aws.Config
	if needsAWS(cfg) {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}

	logSender := notification.LogSender{Logger: logger.With().Str("component", "notification").Logger()}
	ad.email = logSender
	if cfg.EmailProvider == "ses" {
		ad.email = notification.NewSESSender(awsCfg, cfg.EmailFrom)
	}
	ad.sms = logSender
	if cfg.SMSProvider == "sns" {
		ad.sms = notification.NewSNSSender(awsCfg)
	}

	if cfg.S3Bucket != "" {
		ad.photos = blobstore.NewS3Store(awsCfg, cfg.S3Bucket, cfg.PhotoBaseURL)
	}

	oc := newOpenAIClient(cfg)
	if cfg.VisionProvider == "rekognition" {
		ad.analyzer = vision.NewRekognitionAnalyzer(awsCfg)
	} else {
		ad.analyzer = vision.NewOpenAIAnalyzer(oc, cfg.VisionModel)
	}
	if cfg.OpenAIAPIKey != "" {
		ad.chat = chat.NewOpenAICompleter(oc, cfg.ChatModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set: chat assistant disabled")
	}

	if cfg.GoogleMapsAPIKey != "" {
		gc, err := places.NewGoogleClient(cfg.GoogleMapsAPIKey)
		if err != nil {
			return nil, err
		}
		ad.places = gc
		if cfg.RedisURL != "" {
			rdb, err := places.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			ad.closers = append(ad.closers, rdb.Close)
			ad.places = places.NewCachedClient(gc, rdb, places.DefaultCacheTTL,
				logger.With().Str("component", "places").Logger())
		}
	} else {
		logger.Warn().Msg("GOOGLE_MAPS_API_KEY not set: pharmacy locator disabled")
	}

	return ad, nil
}

func buildApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*app, error) {
	ad, err := buildAdapters(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()
	hub := websocket.NewHub(logger.With().Str("component", "websocket").Logger())

	userSvc := user.NewService(user.NewUserRepoPG(pool), cfg.DefaultStepGoal)
	readingSvc := reading.NewService(reading.NewReadingRepoPG(pool), hub, logger)
	medSvc := medication.NewService(medication.NewMedicationRepoPG(pool), medication.NewLogRepoPG(pool), hub, logger, loc)
	reminderSvc := reminder.NewService(userSvc, medSvc, reminder.NewDeliveryRepoPG(pool), ad.email, ad.sms, logger, loc)
	foodSvc := food.NewService(food.NewFoodLogRepoPG(pool), ad.analyzer, ad.photos, hub, logger, loc)
	activitySvc := activity.NewService(activity.NewActivityRepoPG(pool), userSvc, hub, logger, loc)
	symptomSvc := symptom.NewService(symptom.NewSymptomRepoPG(pool), hub, logger)

	readTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, db.ReadOnly, fn)
	}
	sharingSvc := sharing.NewService(sharing.NewAccessRepoPG(pool), sharing.Sources{
		Users:       userSvc,
		Readings:    readingSvc,
		Medications: medSvc,
		Symptoms:    symptomSvc,
	}, sharing.NewTokenIssuer(cfg.ShareSecret()), ad.email, hub, logger, cfg.AppURL, readTx)

	pharmacySvc := pharmacy.NewService(ad.places, logger)
	chatSvc := chat.NewService(ad.chat, logger)
	dashboardSvc := dashboard.NewService(dashboard.Sources{
		Users:       userSvc,
		Readings:    readingSvc,
		Medications: medSvc,
		Activity:    activitySvc,
		Reminders:   reminderSvc,
		Food:        foodSvc,
	}, logger)

	return &app{
		hub:       hub,
		reminders: reminderSvc,
		closers:   ad.closers,
		handlers: []routeRegistrar{
			user.NewHandler(userSvc),
			reading.NewHandler(readingSvc),
			medication.NewHandler(medSvc),
			reminder.NewHandler(reminderSvc),
			food.NewHandler(foodSvc),
			activity.NewHandler(activitySvc),
			symptom.NewHandler(symptomSvc),
			sharing.NewHandler(sharingSvc),
			pharmacy.NewHandler(pharmacySvc),
			chat.NewHandler(chatSvc),
			dashboard.NewHandler(dashboardSvc),
		},
	}, nil
}
