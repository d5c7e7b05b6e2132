// Package system wires the ERP components together. The CLI and the HTTP
// server both boot through here so they share the same wiring.
package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenticerp/internal/agents"
	"agenticerp/internal/config"
	"agenticerp/internal/events"
	"agenticerp/internal/llm"
	"agenticerp/internal/logging"
	"agenticerp/internal/metrics"
	"agenticerp/internal/reports"
	"agenticerp/internal/router"
	"agenticerp/internal/store"
	"agenticerp/internal/types"
)

// Events are delivered by a queue worker. Each delivery waits at most
// publishTimeout for its confirm; past eventQueueSize pending events new ones are dropped.
const (
	publishTimeout = 5 * time.Second
	eventQueueSize = 256
)

// System is a fully wired ERP instance.
type System struct {
	Config   *config.Config
	Store    *store.DB
	Reporter *reports.Reporter
	Router   *router.Router
	Events   events.Publisher

	// LLM is nil when narration is disabled.
	LLM types.LLMClient
}

// Option customises Boot.
type Option func(*bootOptions)

type bootOptions struct {
	publisher events.Publisher
	llm       types.LLMClient
	llmSet    bool
	db        *store.DB
	now       func() time.Time
}

// WithPublisher replaces the configured event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(o *bootOptions) { o.publisher = p }
}

// WithLLM replaces the configured model client. A nil client disables narration.
func WithLLM(c types.LLMClient) Option {
	return func(o *bootOptions) { o.llm, o.llmSet = c, true }
}

// WithStore uses an already open store instead of opening one from config.
func WithStore(db *store.DB) Option {
	return func(o *bootOptions) { o.db = db }
}

// WithClock sets the reporter clock.
func WithClock(now func() time.Time) Option {
	return func(o *bootOptions) { o.now = now }
}

// Boot opens the store and wires reporter, agents, router, metrics and events.
func Boot(ctx context.Context, cfg *config.Config, opts ...Option) (*System, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o bootOptions
	for _, opt := range opts {
		opt(&o)
	}

	timer := logging.StartTimer(logging.CategoryBoot, "Boot")
	defer timer.Stop()

	// 1. Store
	db := o.db
	if db == nil {
		var err error
		db, err = store.Open(ctx, store.Options{
			Driver:       cfg.Store.Driver,
			Path:         cfg.Store.Path,
			DSN:          cfg.Store.DSN,
			QueryTimeout: cfg.GetQueryTimeout(),
			MaxOpenConns: cfg.Store.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	sys := &System{Config: cfg, Store: db}

	// 2. Model client
	if o.llmSet {
		sys.LLM = o.llm
	} else {
		client, err := llm.NewClient(cfg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if client != nil {
			sys.LLM = client
		}
	}

	// 3. Events
	sys.Events = o.publisher
	if sys.Events == nil {
		sys.Events = dialEvents(cfg)
	}
	sys.Events = events.NewQueue(events.Safe(sys.Events), eventQueueSize, publishTimeout)

	// 4. Reporter
	sys.Reporter = reports.New(db, db.Dialect())
	sys.Reporter.SetConcurrency(cfg.ReportConcurrency())
	if o.now != nil {
		sys.Reporter.SetClock(o.now)
	}
	sys.Reporter.SetObserver(sys.observeReport)

	// 5. Agents and router
	r, err := router.NewRouter(agents.Handlers(agents.Deps{
		Directory:         db,
		Reports:           sys.Reporter,
		LLM:               sys.LLM,
		LowStockThreshold: cfg.Agents.LowStockThreshold,
	}))
	if err != nil {
		_ = sys.Close()
		return nil, err
	}
	r.SetObserver(sys.observeRouting)
	sys.Router = r

	logging.Boot("System ready (driver=%s, narration=%t)", db.Dialect().Name(), sys.LLM != nil)
	return sys, nil
}

func dialEvents(cfg *config.Config) events.Publisher {
	if !cfg.Events.Enabled {
		return events.Nop{}
	}
	p, err := events.Dial(cfg.Events.URL, cfg.Events.Exchange)
	if err != nil {
		logging.EventsWarn("Event publishing disabled: %v", err)
		return events.Nop{}
	}
	return p
}

func (s *System) observeRouting(d router.RoutingDecision) {
	metrics.RecordRouting(string(d.Domain), d.Confidence)
	s.publish(events.New(events.TypeRouted, string(d.Domain), d))
}

func (s *System) observeReport(kind reports.Kind, elapsed time.Duration, rerr *reports.Error) {
	outcome := metrics.OutcomeOK
	payload := map[string]any{"kind": kind, "duration_ms": elapsed.Milliseconds()}
	if rerr != nil {
		outcome = string(rerr.Kind)
		payload["error"] = rerr.Message
	}
	payload["outcome"] = outcome

	metrics.RecordReportBuild(string(kind), outcome, elapsed)
	s.publish(events.New(events.TypeReport, string(kind), payload))
}

// publish never blocks the caller; a full queue drops the event.
func (s *System) publish(e events.Event) {
	_ = s.Events.Publish(context.Background(), e)
}

// Close flushes queued events, then releases the publisher and the store.
func (s *System) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Store = nil
	}
	return errors.Join(errs...)
}
