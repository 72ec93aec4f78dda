// Package fingerprint derives a stable identity for unauthenticated
// visitors from request metadata, persisted in a long-lived cookie.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const cookieMaxAge = 60 * 60 * 24 * 365 // one year

// Metadata is the canonical input to Generate. Field order matters:
// the JSON encoding is hashed as-is, so reordering fields changes every
// fingerprint.
type Metadata struct {
	IP               string `json:"ip"`
	UserAgent        string `json:"user_agent"`
	AcceptLanguage   string `json:"accept_language"`
	AcceptEncoding   string `json:"accept_encoding"`
	Timezone         string `json:"timezone"`
	ScreenResolution string `json:"screen_resolution"`
	ColorDepth       string `json:"color_depth"`
}

// FromRequest collects fingerprint metadata from request headers.
// Optional client hints default to empty; timezone defaults to UTC.
func FromRequest(r *http.Request, clientIP string) Metadata {
	timezone := r.Header.Get("X-Timezone")
	if timezone == "" {
		timezone = "UTC"
	}
	return Metadata{
		IP:               clientIP,
		UserAgent:        r.Header.Get("User-Agent"),
		AcceptLanguage:   r.Header.Get("Accept-Language"),
		AcceptEncoding:   r.Header.Get("Accept-Encoding"),
		Timezone:         timezone,
		ScreenResolution: r.Header.Get("X-Screen-Resolution"),
		ColorDepth:       r.Header.Get("X-Color-Depth"),
	}
}

// Generate returns the SHA-256 hex digest of the canonical JSON
// encoding of m.
func Generate(m Metadata) string {
	data, _ := json.Marshal(m)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetOrCreate reads the fingerprint cookie, generating and persisting a
// new fingerprint for one year when absent.
func GetOrCreate(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}

	fp := Generate(FromRequest(c.Request, c.ClientIP()))
	c.SetCookie(cookieName, fp, cookieMaxAge, "/", "", false, true)
	return fp
}

// Validate reports whether s is exactly 64 hex characters.
func Validate(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
