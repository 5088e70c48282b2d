package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/radial/internal/chart"
	"github.com/google/uuid"
)

// Defaults for the session store.
const (
	DefaultSessionTTL      = 2 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// RenderDefaults are the chart options a new chart starts with.
type RenderDefaults struct {
	Template   string
	ShowLegend bool
	YMin       float64
	YMax       float64
}

// ServiceConfig configures a Service. Zero values fall back to defaults.
type ServiceConfig struct {
	MaxSourceSize   int64
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	Workload        WorkloadConfig
	Defaults        RenderDefaults
}

// Service owns the template registry and the in-memory session store.
type Service struct {
	registry *chart.Registry
	workload *Workload
	query    QuerySource
	cfg      ServiceConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time
}

// NewService creates a Service over reg. query may be nil when no database is
// configured.
func NewService(reg *chart.Registry, query QuerySource, cfg ServiceConfig) *Service {
	if cfg.MaxSourceSize <= 0 {
		cfg.MaxSourceSize = DefaultMaxSourceSize
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.Defaults.YMin == 0 && cfg.Defaults.YMax == 0 {
		cfg.Defaults.YMin, cfg.Defaults.YMax = -50, 90
	}

	return &Service{
		registry: reg,
		workload: NewWorkload(cfg.Workload),
		query:    query,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Registry returns the template registry.
func (s *Service) Registry() *chart.Registry { return s.registry }

// Workload returns the slot budgets shared by loads, draws and rasterizing.
func (s *Service) Workload() *Workload { return s.workload }

// Defaults returns the starting chart options.
func (s *Service) Defaults() RenderDefaults { return s.cfg.Defaults }

// HasQuerySource reports whether tables can be loaded from a database.
func (s *Service) HasQuerySource() bool { return s.query != nil }

// Templates lists the available template names.
func (s *Service) Templates() ([]string, error) {
	return s.registry.List()
}

// NewSession creates and stores a session with a fresh id.
func (s *Service) NewSession() *Session {
	sess := NewSession(uuid.New().String(), s.cfg.MaxSourceSize)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Debug("session created", "session_id", sess.ID)
	return sess
}

// Session returns the session with id and marks it used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// SessionOrNew returns the session with id, or a new one when id is unknown
// or expired. created reports which.
func (s *Service) SessionOrNew(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, err := s.Session(id); err == nil {
			return sess, false
		}
	}
	return s.NewSession(), true
}

// DeleteSession drops a session.
func (s *Service) DeleteSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LoadQuery loads the result of a read-only database query into sess.
func (s *Service) LoadQuery(ctx context.Context, sess *Session, query string) error {
	if s.query == nil {
		return ErrNoQuerySource
	}
	return sess.LoadQuery(ctx, s.query, query)
}

// Render draws a chart for sess while holding a draw slot.
func (s *Service) Render(ctx context.Context, sess *Session, templateName string, sel Selection, opts chart.Options) (*chart.Scene, error) {
	if err := CheckBounds(opts.YMin, opts.YMax); err != nil {
		return nil, err
	}
	release, err := s.workload.Acquire(ctx, StageDraw)
	if err != nil {
		return nil, err
	}
	defer release()

	return sess.Render(s.registry, templateName, sel, opts)
}

// StartJanitor expires idle sessions every cleanup interval until ctx is
// cancelled.
func (s *Service) StartJanitor(ctx context.Context) {
	slog.Info("session janitor started",
		"ttl", s.cfg.SessionTTL.String(),
		"interval", s.cfg.CleanupInterval.String(),
	)

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.expire(s.now()); n > 0 {
				slog.Info("expired idle sessions", "count", n, "remaining", s.SessionCount())
			}
		}
	}
}

// expire removes the sessions idle for longer than the TTL.
func (s *Service) expire(now time.Time) int {
	cutoff := now.Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
