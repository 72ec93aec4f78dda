package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "api/comments", cfg.RoutePrefix)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.True(t, cfg.AutoApproveAuthenticated)
	assert.True(t, cfg.ReplyOnlyToApprovedParent)
	assert.True(t, cfg.Guests.Allowed)
	assert.True(t, cfg.Guests.RequireEmail)
	assert.Equal(t, "guest_fingerprint", cfg.Guests.CookieName)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Recaptcha.Enabled)
	assert.Equal(t, "v3", cfg.Recaptcha.Version)
	assert.InDelta(t, 0.5, cfg.Recaptcha.Score, 0.001)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("COMMENTS_ROUTE_PREFIX", "/v1/comments/")
	t.Setenv("COMMENTS_RATE_LIMIT", "30,2")
	t.Setenv("COMMENTS_MAX_DEPTH", "3")
	t.Setenv("COMMENTS_AUTO_APPROVE_AUTHENTICATED", "false")
	t.Setenv("COMMENTS_GUESTS_ALLOWED", "false")
	t.Setenv("COMMENTS_GUEST_COOKIE_NAME", "visitor_id")
	t.Setenv("RECAPTCHA_ENABLED", "true")
	t.Setenv("RECAPTCHA_SECRET", "s3cret")
	t.Setenv("RECAPTCHA_VERSION", "v2")
	t.Setenv("RECAPTCHA_SCORE", "0.7")

	cfg := FromEnv()

	assert.Equal(t, "v1/comments", cfg.RoutePrefix)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.False(t, cfg.AutoApproveAuthenticated)
	assert.False(t, cfg.Guests.Allowed)
	assert.Equal(t, "visitor_id", cfg.Guests.CookieName)
	assert.True(t, cfg.Recaptcha.Enabled)
	assert.Equal(t, "s3cret", cfg.Recaptcha.Secret)
	assert.Equal(t, "v2", cfg.Recaptcha.Version)
	assert.InDelta(t, 0.7, cfg.Recaptcha.Score, 0.001)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("COMMENTS_RATE_LIMIT", "lots")
	t.Setenv("COMMENTS_MAX_DEPTH", "many")
	t.Setenv("COMMENTS_GUESTS_ALLOWED", "sure")

	cfg := FromEnv()

	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.True(t, cfg.Guests.Allowed)
}
