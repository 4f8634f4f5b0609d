package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	QuotaPolicyEnforce  = "enforce"
	QuotaPolicyAdvisory = "advisory"
)

// Settings is the typed runtime configuration. Values come from the process
// environment after env.SetupEnvFile exported the optional .env file.
type Settings struct {
	AppEnv   string `envconfig:"APP_ENV" default:"prod" validate:"oneof=dev test prod"`
	AppHost  string `envconfig:"APP_HOST" default:"localhost"`
	AppPort  string `envconfig:"APP_PORT" default:"4000" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// PublicDomain is the externally reachable base URL, used for Stripe
	// redirect URLs and OAuth callbacks.
	PublicDomain string `envconfig:"PUBLIC_DOMAIN" default:"http://localhost:4000" validate:"required,url"`

	Quota QuotaSettings

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripePriceID       string `envconfig:"STRIPE_PRICE_ID"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	RapidAPIKey       string  `envconfig:"RAPID_API_KEY"`
	RapidAPIHost      string  `envconfig:"RAPID_API_HOST" default:"yt-api.p.rapidapi.com" validate:"required,hostname"`
	RapidAPIRateLimit float64 `envconfig:"RAPID_API_RATE_PER_SECOND" default:"5" validate:"gt=0"`

	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini" validate:"required"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" validate:"required,url"`
	HTTPTimeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"60s" validate:"gt=0"`

	TranscriptCache TranscriptCacheSettings

	GenerateRateLimit int `envconfig:"GENERATE_RATE_LIMIT_PER_MINUTE" default:"6" validate:"gt=0"`

	MetricsUser     string `envconfig:"METRICS_USER" default:"admin"`
	MetricsPassword string `envconfig:"METRICS_PASSWORD"`
}

// QuotaSettings are the policy constants of the eligibility engine.
type QuotaSettings struct {
	FreeLimit       int    `envconfig:"QUOTA_FREE_LIMIT" default:"10" validate:"gt=0"`
	SubscribedLimit int    `envconfig:"QUOTA_SUBSCRIBED_LIMIT" default:"40" validate:"gt=0"`
	MaxVideoSeconds int    `envconfig:"MAX_VIDEO_LENGTH_SECONDS" default:"3600" validate:"gt=0"`
	Policy          string `envconfig:"QUOTA_POLICY" default:"enforce" validate:"oneof=enforce advisory"`
}

// TranscriptCacheSettings configure the optional S3 transcript cache.
type TranscriptCacheSettings struct {
	Enabled   bool   `envconfig:"TRANSCRIPT_CACHE_ENABLED" default:"false"`
	Bucket    string `envconfig:"TRANSCRIPT_CACHE_BUCKET" validate:"required_if=Enabled true"`
	Region    string `envconfig:"TRANSCRIPT_CACHE_REGION" default:"eu-central-1"`
	Endpoint  string `envconfig:"TRANSCRIPT_CACHE_ENDPOINT" validate:"omitempty,url"`
	AccessKey string `envconfig:"TRANSCRIPT_CACHE_ACCESS_KEY"`
	SecretKey string `envconfig:"TRANSCRIPT_CACHE_SECRET_KEY"`
}

// Load reads and validates the settings.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Enforcing reports whether generation admission is guarded by the quota.
func (q QuotaSettings) Enforcing() bool {
	return q.Policy == QuotaPolicyEnforce
}

func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%s", s.AppHost, s.AppPort)
}

func (s *Settings) IsDev() bool {
	return s.AppEnv == "dev"
}

// StripeEnabled reports whether billing calls can be made.
func (s *Settings) StripeEnabled() bool {
	return s.StripeSecretKey != ""
}
