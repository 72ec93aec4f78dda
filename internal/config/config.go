package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const recaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

type GuestConfig struct {
	Allowed      bool
	RequireEmail bool
	CookieName   string
}

type RecaptchaConfig struct {
	Enabled  bool
	Secret   string
	Version  string  // "v2" or "v3"
	Score    float64 // v3 minimum score
	Endpoint string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type Config struct {
	RoutePrefix               string
	RateLimit                 RateLimitConfig
	MaxDepth                  int // 0 = unlimited
	AutoApproveAuthenticated  bool
	ReplyOnlyToApprovedParent bool
	Guests                    GuestConfig
	Recaptcha                 RecaptchaConfig
}

func Default() *Config {
	return &Config{
		RoutePrefix:               "api/comments",
		RateLimit:                 RateLimitConfig{Requests: 60, Window: time.Minute},
		MaxDepth:                  5,
		AutoApproveAuthenticated:  true,
		ReplyOnlyToApprovedParent: true,
		Guests: GuestConfig{
			Allowed:      true,
			RequireEmail: true,
			CookieName:   "guest_fingerprint",
		},
		Recaptcha: RecaptchaConfig{
			Version:  "v3",
			Score:    0.5,
			Endpoint: recaptchaEndpoint,
		},
	}
}

// FromEnv builds the config from environment variables, falling back to
// defaults for anything unset.
func FromEnv() *Config {
	cfg := Default()

	if v := os.Getenv("COMMENTS_ROUTE_PREFIX"); v != "" {
		cfg.RoutePrefix = strings.Trim(v, "/")
	}
	// Throttle format "60,1" = 60 requests per 1 minute.
	if v := os.Getenv("COMMENTS_RATE_LIMIT"); v != "" {
		if parts := strings.SplitN(v, ",", 2); len(parts) == 2 {
			requests := atoi(parts[0], cfg.RateLimit.Requests)
			minutes := atoi(parts[1], 1)
			if requests > 0 && minutes > 0 {
				cfg.RateLimit = RateLimitConfig{Requests: requests, Window: time.Duration(minutes) * time.Minute}
			}
		}
	}
	cfg.MaxDepth = envInt("COMMENTS_MAX_DEPTH", cfg.MaxDepth)
	cfg.AutoApproveAuthenticated = envBool("COMMENTS_AUTO_APPROVE_AUTHENTICATED", cfg.AutoApproveAuthenticated)
	cfg.ReplyOnlyToApprovedParent = envBool("COMMENTS_REPLY_ONLY_TO_APPROVED_PARENT", cfg.ReplyOnlyToApprovedParent)

	cfg.Guests.Allowed = envBool("COMMENTS_GUESTS_ALLOWED", cfg.Guests.Allowed)
	cfg.Guests.RequireEmail = envBool("COMMENTS_GUESTS_REQUIRE_EMAIL", cfg.Guests.RequireEmail)
	if v := os.Getenv("COMMENTS_GUEST_COOKIE_NAME"); v != "" {
		cfg.Guests.CookieName = v
	}

	cfg.Recaptcha.Enabled = envBool("RECAPTCHA_ENABLED", cfg.Recaptcha.Enabled)
	cfg.Recaptcha.Secret = os.Getenv("RECAPTCHA_SECRET")
	if v := os.Getenv("RECAPTCHA_VERSION"); v != "" {
		cfg.Recaptcha.Version = v
	}
	if v := os.Getenv("RECAPTCHA_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recaptcha.Score = f
		}
	}
	if v := os.Getenv("RECAPTCHA_ENDPOINT"); v != "" {
		cfg.Recaptcha.Endpoint = v
	}

	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		return atoi(v, fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func atoi(s string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return i
}
