package services

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"commentkit/internal/config"
)

// RecaptchaVerifier checks tokens against the siteverify endpoint. It
// fails closed: any missing input, transport error, or bad response
// counts as not verified.
type RecaptchaVerifier struct {
	secret   string
	version  string
	score    float64
	endpoint string
	client   *http.Client
}

func NewRecaptchaVerifier(cfg config.RecaptchaConfig) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:   cfg.Secret,
		version:  cfg.Version,
		score:    cfg.Score,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type siteverifyResponse struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
}

func (v *RecaptchaVerifier) Verify(token, ip string) bool {
	if v.secret == "" || token == "" {
		return false
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if ip != "" {
		form.Set("remoteip", ip)
	}

	resp, err := v.client.PostForm(v.endpoint, form)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var data siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false
	}

	if !data.Success {
		return false
	}

	if v.version == "v3" {
		return data.Score >= v.score
	}

	return true // v2 checkbox
}
