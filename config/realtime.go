package config

import (
	"net/url"
	"strings"
	"time"
)

// RealtimeConfig contains the AWX websocket settings.
type RealtimeConfig struct {
	// URL is the websocket endpoint. Derived from AWX_BASE_URL when empty.
	URL string `env:"URL"`

	// ReconnectInterval paces dial attempts after the socket drops.
	ReconnectInterval time.Duration `env:"RECONNECT_INTERVAL" envDefault:"5s"`

	// Buffer bounds the number of undelivered socket messages.
	Buffer int `env:"BUFFER" envDefault:"256"`
}

// Sanitize applies guardrails to realtime configuration values and derives
// the websocket URL from the AWX base URL when none is set.
func (r *RealtimeConfig) Sanitize(awxBaseURL string) {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		r.URL = websocketURL(awxBaseURL)
	}
	if r.ReconnectInterval < 100*time.Millisecond {
		r.ReconnectInterval = 100 * time.Millisecond
	}
	if r.Buffer < 1 {
		r.Buffer = 1
	}
}

// websocketURL maps http(s)://host/ to ws(s)://host/websocket/.
func websocketURL(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return ""
	}
	return u.JoinPath("websocket", "/").String()
}
