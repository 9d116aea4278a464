package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/config"
	"github.com/bptrack/bptrack/internal/domain/reminder"
	"github.com/bptrack/bptrack/internal/platform/auth"
	"github.com/bptrack/bptrack/internal/platform/notification"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "development",
		Timezone:        "UTC",
		DefaultStepGoal: 5000,
		EmailProvider:   "log",
		SMSProvider:     "log",
		VisionProvider:  "openai",
		BodyLimit:       "1M",
		UploadBodyLimit: "12M",
		RequestTimeout:  time.Second,
		CORSOrigins:     []string{"http://localhost:8081"},
		VisionModel:     "gpt-4o",
		ChatModel:       "gpt-4o",
	}
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFormatStats(t *testing.T) {
	got := formatStats(reminder.DispatchStats{Checked: 4, Due: 2, Sent: 1, Failed: 1})
	want := "checked=4 due=2 sent=1 failed=1 skipped=0"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRateLimitConfig(t *testing.T) {
	cfg := testConfig()
	rl := rateLimitConfig(cfg)
	if rl.RequestsPerSecond != 50 || rl.BurstSize != 100 {
		t.Errorf("expected defaults, got %+v", rl)
	}

	cfg.RateLimitRPS = 5
	cfg.RateLimitBurst = 10
	rl = rateLimitConfig(cfg)
	if rl.RequestsPerSecond != 5 || rl.BurstSize != 10 {
		t.Errorf("expected configured limits, got %+v", rl)
	}
}

func TestNeedsAWS(t *testing.T) {
	cfg := testConfig()
	if needsAWS(cfg) {
		t.Error("log providers should not need AWS")
	}
	cases := map[string]func(c *config.Config){
		"ses":         func(c *config.Config) { c.EmailProvider = "ses" },
		"sns":         func(c *config.Config) { c.SMSProvider = "sns" },
		"s3":          func(c *config.Config) { c.S3Bucket = "photos" },
		"rekognition": func(c *config.Config) { c.VisionProvider = "rekognition" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := testConfig()
			mutate(c)
			if !needsAWS(c) {
				t.Error("expected AWS to be needed")
			}
		})
	}
}

func TestBuildAdapters_Defaults(t *testing.T) {
	ad, err := buildAdapters(context.Background(), testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ad.email.(notification.LogSender); !ok {
		t.Errorf("expected log email sender, got %T", ad.email)
	}
	if _, ok := ad.sms.(notification.LogSender); !ok {
		t.Errorf("expected log sms sender, got %T", ad.sms)
	}
	if ad.photos != nil {
		t.Error("expected no photo store without S3_BUCKET")
	}
	if ad.analyzer == nil {
		t.Error("expected an analyzer")
	}
	if ad.chat != nil {
		t.Error("expected chat disabled without OPENAI_API_KEY")
	}
	if ad.places != nil {
		t.Error("expected places disabled without GOOGLE_MAPS_API_KEY")
	}
}

func TestBuildAdapters_ChatEnabledWithKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIBaseURL = "http://127.0.0.1:1/v1"
	ad, err := buildAdapters(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ad.chat == nil {
		t.Error("expected chat completer")
	}
}

func TestNewEcho_JWTMode(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "secret"
	e := newEcho(cfg, zerolog.Nop())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/readings", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Errorf("expected public health check, got %d", rec.Code)
	}

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/readings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id on error responses")
	}

	tok, err := auth.IssueToken([]byte("secret"), tokenIssuer, 7, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/readings", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if rec := serve(e, req); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestNewEcho_DevelopmentMode(t *testing.T) {
	e := newEcho(testConfig(), zerolog.Nop())
	e.GET("/api/readings", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/readings", nil)); rec.Code != http.StatusOK {
		t.Errorf("expected 200 in development mode, got %d", rec.Code)
	}
}

func TestRunServer_ReturnsStartupErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}, "load config"},
		{"invalid auth mode", map[string]string{"DATABASE_URL": "postgres://localhost/bptrack", "AUTH_MODE": "basic"}, "load config"},
		{"unreachable database", map[string]string{
			"DATABASE_URL": "postgres://bptrack@127.0.0.1:1/bptrack?connect_timeout=1",
			"ENV":          "development",
			"AUTH_MODE":    "development",
		}, "connect to database"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			err := runServer()
			if err == nil {
				t.Fatal("expected startup error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
