package igapi

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/joho/godotenv"
)

// Build-time variables - inject via ldflags
// Example: go build -ldflags "-X igapi.signatureKey=KEY -X igapi.signatureVersion=4"
var (
	signatureKey     string // -X igapi.signatureKey=...
	signatureVersion string // -X igapi.signatureVersion=...
)

// Environment variables read by LoadConfig.
const (
	EnvSignatureKey     = "IG_SIGNATURE_KEY"
	EnvSignatureVersion = "IG_SIGNATURE_VERSION"
	EnvBaseURL          = "IG_BASE_URL"
	EnvProxy            = "IG_PROXY"
	EnvTimeout          = "IG_TIMEOUT_SECONDS"
	EnvStrictStatus     = "IG_STRICT_STATUS"
	EnvLogLevel         = "IG_LOG_LEVEL"
	EnvUserAgent        = "IG_USER_AGENT"
	EnvAppID            = "IG_APP_ID"
	EnvLanguage         = "IG_LANGUAGE"
	EnvCSRFToken        = "IG_CSRF_TOKEN"
)

// GetSignatureKey returns the signing key (build-time or env fallback).
func GetSignatureKey() string {
	if signatureKey != "" {
		return signatureKey
	}
	return os.Getenv(EnvSignatureKey)
}

// GetSignatureVersion returns the signature version (build-time or env fallback).
func GetSignatureVersion() string {
	if signatureVersion != "" {
		return signatureVersion
	}
	return os.Getenv(EnvSignatureVersion)
}

// Config holds everything needed to build a State and a Client outside of a
// persisted session.
type Config struct {
	SignatureKey     string
	SignatureVersion string
	CSRFToken        string
	BaseURL          string
	Proxy            string
	TimeoutSeconds   int
	StrictStatus     bool
	LogLevel         string
	UserAgent        string
	AppID            string
	Language         string
}

// DefaultConfig returns a Config matching the bundled Android profile.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		LogLevel:         "info",
		UserAgent:        AndroidUserAgent,
		AppID:            AndroidAppID,
		Language:         "en_US",
		SignatureKey:     GetSignatureKey(),
		SignatureVersion: GetSignatureVersion(),
	}
}

type fileConfig struct {
	SignatureKey     string `toml:"signature_key"`
	SignatureVersion string `toml:"signature_version"`
	BaseURL          string `toml:"base_url"`
	Proxy            string `toml:"proxy"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	StrictStatus     bool   `toml:"strict_status"`
	LogLevel         string `toml:"log_level"`
	UserAgent        string `toml:"user_agent"`
	AppID            string `toml:"app_id"`
	Language         string `toml:"language"`
}

// LoadConfig merges defaults, the TOML file at path (skipped when path is
// empty) and the environment, in increasing precedence. A .env file in the
// working directory is loaded first when present.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("signature_key") {
		cfg.SignatureKey = raw.SignatureKey
	}
	if meta.IsDefined("signature_version") {
		cfg.SignatureVersion = strings.TrimSpace(raw.SignatureVersion)
	}
	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("proxy") {
		cfg.Proxy = strings.TrimSpace(raw.Proxy)
	}
	if meta.IsDefined("timeout_seconds") {
		if raw.TimeoutSeconds < 0 {
			return fmt.Errorf("timeout_seconds must not be negative")
		}
		cfg.TimeoutSeconds = raw.TimeoutSeconds
	}
	if meta.IsDefined("strict_status") {
		cfg.StrictStatus = raw.StrictStatus
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("user_agent") {
		cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if meta.IsDefined("app_id") {
		cfg.AppID = strings.TrimSpace(raw.AppID)
	}
	if meta.IsDefined("language") {
		cfg.Language = strings.TrimSpace(raw.Language)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(EnvSignatureKey, &cfg.SignatureKey)
	setString(EnvSignatureVersion, &cfg.SignatureVersion)
	setString(EnvCSRFToken, &cfg.CSRFToken)
	setString(EnvBaseURL, &cfg.BaseURL)
	setString(EnvProxy, &cfg.Proxy)
	setString(EnvLogLevel, &cfg.LogLevel)
	setString(EnvUserAgent, &cfg.UserAgent)
	setString(EnvAppID, &cfg.AppID)
	setString(EnvLanguage, &cfg.Language)

	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", EnvTimeout)
		}
		cfg.TimeoutSeconds = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvStrictStatus)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrictStatus, err)
		}
		cfg.StrictStatus = b
	}
	return nil
}

// State builds a fresh session State with an empty cookie jar.
func (c Config) State() *State {
	return &State{
		SignatureKey:     c.SignatureKey,
		SignatureVersion: c.SignatureVersion,
		CSRFToken:        c.CSRFToken,
		CookieJar:        tls_client.NewCookieJar(),
		ProxyURL:         c.Proxy,
		UserAgent:        c.UserAgent,
		AppID:            c.AppID,
		Language:         c.Language,
	}
}

// ClientOptions translates the config into NewClient options.
func (c Config) ClientOptions(logger Logger) []Option {
	opts := []Option{
		WithBaseURL(c.BaseURL),
		WithTransportOptions(TransportOptions{TimeoutSeconds: c.TimeoutSeconds}),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if c.StrictStatus {
		opts = append(opts, WithStrictStatus())
	}
	return opts
}
