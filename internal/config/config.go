package config

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	DynamoTables DynamoTables `envPrefix:"DYNAMO_TABLE_"`

	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./private_key.pem"`
	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTExpiry         time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	Signup  Signup  `envPrefix:"SIGNUP_"`
	Profile Profile `envPrefix:"PROFILE_"`
	OAuth   OAuth   `envPrefix:"OAUTH_"`

	SNSRegion         string `env:"SNS_REGION" envDefault:"us-east-1"`
	SignupEventsTopic string `env:"SNS_SIGNUP_TOPIC_ARN"` // empty disables signup events

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// TrustedProxies are the CIDRs whose X-Forwarded-For is believed by the
	// rate limiter. Empty means the limiter keys on the TCP peer only.
	TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts         string `env:"ACCOUNTS" envDefault:"accounts"`
	PendingSignups   string `env:"PENDING_SIGNUPS" envDefault:"pending_signups"`
	Sessions         string `env:"SESSIONS" envDefault:"sessions"`
	WorkspaceMembers string `env:"WORKSPACE_MEMBERS" envDefault:"workspace_members"`
	ActiveSessions   string `env:"ACTIVE_SESSIONS" envDefault:"active_sessions"`
}

// Signup controls verification code issuing.
type Signup struct {
	CodeLength int           `env:"CODE_LENGTH" envDefault:"8"`
	CodeTTL    time.Duration `env:"CODE_TTL" envDefault:"15m"`
}

// Profile configures the external profile directory used for bio verification.
type Profile struct {
	BaseURL           string        `env:"BASE_URL" envDefault:"https://users.roblox.com"`
	AvatarURLTemplate string        `env:"AVATAR_URL_TEMPLATE" envDefault:"https://www.roblox.com/headshot-thumbnail/image?userId=%s&width=150&height=150&format=png"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"5s"`
	RatePerSecond     float64       `env:"RATE_PER_SECOND" envDefault:"2"`
	Burst             int           `env:"BURST" envDefault:"4"`
}

// OAuth describes the external OAuth collaborator. It is only a flag and a
// redirect target here; an empty StartURL means OAuth is unavailable.
type OAuth struct {
	StartURL string `env:"START_URL"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Signup.CodeLength < 6 {
		return nil, fmt.Errorf("SIGNUP_CODE_LENGTH must be at least 6, got %d", cfg.Signup.CodeLength)
	}
	return &cfg, nil
}
