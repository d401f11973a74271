// Package realtime keeps a websocket to the AWX event stream joined to the
// channel groups of the job page being viewed.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/domain/model"
	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/statsd"
	"golang.org/x/time/rate"
)

const (
	csrfCookie               = "csrftoken"
	defaultReconnectInterval = 5 * time.Second
	defaultBuffer            = 256
	writeTimeout             = 10 * time.Second
)

// Config captures the websocket settings.
type Config struct {
	// URL is the AWX websocket endpoint, e.g. wss://awx.example.com/websocket/.
	URL               string
	Token             string
	ReconnectInterval time.Duration
	// Buffer bounds Messages(); frames arriving while it is full are dropped.
	Buffer int
}

// Options groups dependencies for New.
type Options struct {
	Config  Config
	Jar     http.CookieJar    // Optional: supplies the csrftoken sent as xrftoken
	Dialer  *websocket.Dialer // Optional
	Metrics statsd.Sink       // Optional
	Logger  *slog.Logger      // Optional
}

// Message is one frame received from the event stream.
type Message struct {
	Group   string
	Payload json.RawMessage
}

// subscribeFrame is the join request understood by the AWX socket.
type subscribeFrame struct {
	Groups   model.SubscriptionGroups `json:"groups"`
	XRFToken string                   `json:"xrftoken,omitempty"`
}

// Service is the realtime connection service.
type Service struct {
	url      *url.URL
	token    string
	jar      http.CookieJar
	dialer   *websocket.Dialer
	limiter  *rate.Limiter
	metrics  statsd.Sink
	logger   *slog.Logger
	messages chan Message

	mu     sync.Mutex
	groups model.SubscriptionGroups // active subscription, already scoped
	conn   *websocket.Conn          // the only writer is send, called with mu held
}

var _ core.SubscriptionRegistrar = (*Service)(nil)

// New builds a realtime connection service. Call Run to connect.
func New(opts Options) (*Service, error) {
	raw := strings.TrimSpace(opts.Config.URL)
	if raw == "" {
		return nil, errors.New("realtime url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("realtime url %q must use ws or wss", raw)
	}

	interval := opts.Config.ReconnectInterval
	if interval <= 0 {
		interval = defaultReconnectInterval
	}
	buffer := opts.Config.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	dialer := opts.Dialer
	if dialer == nil {
		d := *websocket.DefaultDialer
		dialer = &d
	}
	if opts.Jar != nil {
		dialer.Jar = opts.Jar
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		url:      u,
		token:    strings.TrimSpace(opts.Config.Token),
		jar:      opts.Jar,
		dialer:   dialer,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		metrics:  opts.Metrics,
		logger:   logger.With("component", "realtime"),
		messages: make(chan Message, buffer),
	}, nil
}

// Messages returns the frames received from the socket. The channel is closed
// when Run returns.
func (s *Service) Messages() <-chan Message {
	return s.messages
}

// Groups returns a copy of the active subscription.
func (s *Service) Groups() model.SubscriptionGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.Clone()
}

// AddStateResolve makes state the active subscription with every empty event
// stream group scoped to id. Registering the active subscription again is a
// no-op; otherwise the join is sent at once when connected, or on connect.
func (s *Service) AddStateResolve(state model.SocketState, id string) {
	s.replace(Scope(state.Groups, id))
}

// Clear leaves every group, as on navigating away from a job page.
func (s *Service) Clear() {
	s.replace(model.SubscriptionGroups{})
}

// replace swaps the active subscription and sends it when connected. Sends
// happen under mu so joins reach the socket in registration order.
func (s *Service) replace(groups model.SubscriptionGroups) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if equalGroups(s.groups, groups) {
		return
	}
	s.groups = groups
	if s.conn == nil {
		return
	}
	if err := s.send(s.conn, groups); err != nil {
		s.logger.Warn("send subscription", "error", err)
	}
}

// Run keeps the socket connected until ctx ends, reconnecting at most once per
// reconnect interval. It must be called at most once.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.messages)
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.WarnContext(ctx, "realtime connection lost, reconnecting", "error", err)
	}
}

// session dials, joins the active subscription and reads until the
// connection fails or ctx ends.
func (s *Service) session(ctx context.Context) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}
	conn, resp, err := s.dialer.DialContext(ctx, s.url.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url.Redacted(), err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.conn = conn
	var joinErr error
	if s.groups != nil {
		joinErr = s.send(conn, s.groups)
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
	}()

	if joinErr != nil {
		return joinErr
	}
	s.logger.InfoContext(ctx, "realtime connected", "url", s.url.Redacted())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(data)
	}
}

func (s *Service) dispatch(data []byte) {
	var head struct {
		Group string `json:"group_name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		s.logger.Debug("ignoring non-json frame", "error", err)
		return
	}

	msg := Message{Group: head.Group, Payload: append(json.RawMessage(nil), data...)}
	select {
	case s.messages <- msg:
		s.count(head.Group, metrics.ResultSuccess)
	default:
		s.count(head.Group, "dropped")
	}
}

func (s *Service) count(group, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(metrics.NameSocketMessage, 1, map[string]string{"group": group, "result": result})
}

// send writes a join frame. Callers hold mu.
func (s *Service) send(conn *websocket.Conn, groups model.SubscriptionGroups) error {
	frame := subscribeFrame{Groups: groups, XRFToken: s.xrfToken()}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("write subscription: %w", err)
	}
	return nil
}

// xrfToken returns the csrftoken cookie AWX set for the socket's origin.
func (s *Service) xrfToken() string {
	if s.jar == nil {
		return ""
	}
	origin := *s.url
	origin.Scheme = "http"
	if s.url.Scheme == "wss" {
		origin.Scheme = "https"
	}
	for _, c := range s.jar.Cookies(&origin) {
		if c.Name == csrfCookie {
			return c.Value
		}
	}
	return ""
}

// Scope returns a copy of groups where every empty event stream list is
// narrowed to id.
func Scope(groups model.SubscriptionGroups, id string) model.SubscriptionGroups {
	out := make(model.SubscriptionGroups, len(groups))
	for name, events := range groups {
		if len(events) == 0 {
			out[name] = []string{id}
			continue
		}
		out[name] = append([]string(nil), events...)
	}
	return out
}

func equalGroups(a, b model.SubscriptionGroups) bool {
	if a == nil {
		return false
	}
	return maps.EqualFunc(a, b, slices.Equal[[]string])
}
