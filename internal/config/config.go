package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	AuthMode         string        `mapstructure:"AUTH_MODE"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir    string        `mapstructure:"MIGRATIONS_DIR"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	UploadBodyLimit  string        `mapstructure:"UPLOAD_BODY_LIMIT"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	AppURL           string        `mapstructure:"APP_URL"`
	ShareTokenSecret string        `mapstructure:"SHARE_TOKEN_SECRET"`
	Timezone         string        `mapstructure:"TIMEZONE"`
	DefaultStepGoal  int           `mapstructure:"DEFAULT_STEP_GOAL"`

	AWSRegion     string `mapstructure:"AWS_REGION"`
	EmailProvider string `mapstructure:"EMAIL_PROVIDER"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	SMSProvider   string `mapstructure:"SMS_PROVIDER"`
	S3Bucket      string `mapstructure:"S3_BUCKET"`
	PhotoBaseURL  string `mapstructure:"PHOTO_BASE_URL"`

	VisionProvider string `mapstructure:"VISION_PROVIDER"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `mapstructure:"OPENAI_BASE_URL"`
	VisionModel    string `mapstructure:"VISION_MODEL"`
	ChatModel      string `mapstructure:"CHAT_MODEL"`

	GoogleMapsAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`

	RemindersEnabled bool   `mapstructure:"REMINDERS_ENABLED"`
	ReminderSchedule string `mapstructure:"REMINDER_SCHEDULE"`
}

var envKeys = []string{
	"PORT", "ENV", "AUTH_MODE", "JWT_SECRET", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"MIGRATIONS_DIR", "REDIS_URL", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"BODY_LIMIT", "UPLOAD_BODY_LIMIT", "REQUEST_TIMEOUT", "APP_URL", "SHARE_TOKEN_SECRET", "TIMEZONE",
	"DEFAULT_STEP_GOAL", "AWS_REGION", "EMAIL_PROVIDER", "EMAIL_FROM", "SMS_PROVIDER",
	"S3_BUCKET", "PHOTO_BASE_URL", "VISION_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"VISION_MODEL", "CHAT_MODEL", "GOOGLE_MAPS_API_KEY", "REMINDERS_ENABLED", "REMINDER_SCHEDULE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8081")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("UPLOAD_BODY_LIMIT", "12M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("APP_URL", "http://localhost:8081")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("DEFAULT_STEP_GOAL", 5000)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("SMS_PROVIDER", "log")
	v.SetDefault("VISION_PROVIDER", "openai")
	v.SetDefault("VISION_MODEL", "gpt-4o")
	v.SetDefault("CHAT_MODEL", "gpt-4o")
	v.SetDefault("REMINDERS_ENABLED", false)
	v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns AUTH_MODE when set, otherwise "development" in
// the development environment and "jwt" everywhere else.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Location returns the wall-clock zone used for reminders and "today".
// Validate guarantees the zone loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch mode := c.ResolvedAuthMode(); mode {
	case "development":
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is \"jwt\" (current ENV=%q)", c.Env)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}

	if c.IsProduction() && c.ShareTokenSecret == "" {
		return fmt.Errorf("SHARE_TOKEN_SECRET is required in production")
	}

	switch c.EmailProvider {
	case "log":
	case "ses":
		if c.EmailFrom == "" {
			return fmt.Errorf("EMAIL_FROM is required when EMAIL_PROVIDER is \"ses\"")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be \"ses\" or \"log\", got %q", c.EmailProvider)
	}

	if c.SMSProvider != "log" && c.SMSProvider != "sns" {
		return fmt.Errorf("SMS_PROVIDER must be \"sns\" or \"log\", got %q", c.SMSProvider)
	}
	if c.VisionProvider != "openai" && c.VisionProvider != "rekognition" {
		return fmt.Errorf("VISION_PROVIDER must be \"openai\" or \"rekognition\", got %q", c.VisionProvider)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	if c.DefaultStepGoal <= 0 {
		return fmt.Errorf("DEFAULT_STEP_GOAL must be positive, got %d", c.DefaultStepGoal)
	}

	return nil
}

// ShareSecret returns the key used to sign doctor access tokens. Outside
// production it falls back to a fixed development key.
func (c *Config) ShareSecret() []byte {
	if c.ShareTokenSecret != "" {
		return []byte(c.ShareTokenSecret)
	}
	return []byte("bptrack-development-share-secret")
}
