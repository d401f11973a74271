package config

import (
	"strings"
	"time"
)

// AWXConfig contains the AWX API connection settings.
type AWXConfig struct {
	// BaseURL is the AWX root, e.g. https://awx.example.com. Required.
	BaseURL string `env:"BASE_URL,required,notEmpty"`

	// Token is an AWX OAuth2 personal access token sent as a bearer token.
	Token string `env:"TOKEN"`

	// Timeout bounds each AWX API request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RedirectPath receives navigations to job types without a detail page.
	RedirectPath string `env:"REDIRECT_PATH" envDefault:"/jobs"`
}

// Sanitize applies guardrails to AWX configuration values.
func (a *AWXConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.Token = strings.TrimSpace(a.Token)
	if a.Timeout < time.Second {
		a.Timeout = time.Second
	}
	if a.RedirectPath = strings.TrimSpace(a.RedirectPath); a.RedirectPath == "" {
		a.RedirectPath = "/jobs"
	}
}
