package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - awx.go: AWX API connection and navigation
//   - cache.go: Redis OPTIONS cache
//   - http.go: HTTP server configuration
//   - realtime.go: AWX websocket subscription
//   - services.go: Service modes
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, debug level).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// AWX API configuration
	AWX AWXConfig `envPrefix:"AWX_"`

	// Cache configuration
	Redis RedisConfig `envPrefix:"REDIS_"`
	Cache CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Realtime socket configuration
	Realtime RealtimeConfig `envPrefix:"REALTIME_"`

	// Services is a comma-delimited list of enabled services.
	// Valid values: http, realtime
	Services string `env:"SERVICES" envDefault:"http,realtime"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.AWX.Sanitize()
	c.Redis.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Realtime.Sanitize(c.AWX.BaseURL)
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsRealtimeEnabled returns true if the realtime socket service is enabled
// and has an endpoint to dial.
func (c *AppConfig) IsRealtimeEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeRealtime] && c.Realtime.URL != ""
}
