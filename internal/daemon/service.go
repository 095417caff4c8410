// Package daemon provides the long-running projection service with HTTP/SSE
// endpoints and Prometheus metrics.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
)

// Ledger is the read side of the store the daemon polls.
type Ledger interface {
	LoadEntries(ctx context.Context) ([]model.LedgerEntry, error)
	LoadAssumptions(ctx context.Context) ([]model.Assumption, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Ledger   Ledger
	Label    string // where the ledger lives, shown in /v1/status
	Settings projection.Settings
	Now      func() time.Time

	Interval     time.Duration
	Addr         string
	EventsBuffer int
	RateLimit    float64 // requests per second; 0 disables limiting
	Burst        int
}

// Snapshot is the headline state of the base projection.
type Snapshot struct {
	At                 time.Time `json:"at"`
	Entries            int       `json:"entries"`
	Assumptions        int       `json:"assumptions"`
	CurrentBalance     float64   `json:"current_balance"`
	EndingBalance      float64   `json:"ending_balance"`
	NetCash            float64   `json:"net_cash"`
	TotalRevenue       float64   `json:"total_revenue"`
	TotalExpenses      float64   `json:"total_expenses"`
	GrossMarginPct     float64   `json:"gross_margin_pct"`
	RunwayMonths       float64   `json:"runway_months"`
	RunwayInfinite     bool      `json:"runway_infinite"`
	SkippedEntries     int       `json:"skipped_entries"`
	SkippedAssumptions int       `json:"skipped_assumptions"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Entries        int     `json:"entries"`
	Assumptions    int     `json:"assumptions"`
	CurrentBalance float64 `json:"current_balance"`
	EndingBalance  float64 `json:"ending_balance"`
	NetCash        float64 `json:"net_cash"`
}

func (d Delta) isZero() bool {
	return d.Entries == 0 &&
		d.Assumptions == 0 &&
		d.CurrentBalance == 0 &&
		d.EndingBalance == 0 &&
		d.NetCash == 0
}

// Event is emitted whenever the projection snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Ledger          string    `json:"ledger"`
	Scenario        string    `json:"scenario"`
	Project         string    `json:"project,omitempty"`
	HorizonMonths   int       `json:"horizon_months"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// ProjectionResponse is served at /v1/projection.
type ProjectionResponse struct {
	Scenario      string                    `json:"scenario"`
	Project       string                    `json:"project,omitempty"`
	AsOf          model.YearMonth           `json:"as_of"`
	HorizonMonths int                       `json:"horizon_months"`
	Baseline      model.CategoryTotals      `json:"baseline"`
	KPIs          model.SummaryKPIs         `json:"kpis"`
	Months        []model.MonthlyProjection `json:"months"`
	Warnings      []string                  `json:"warnings,omitempty"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	cache   *cache.Cache
	limiter *rate.Limiter
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	entries     []model.LedgerEntry
	assumptions []model.Assumption
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Service{
		cfg:       cfg,
		cache:     cache.New(cfg.Interval, 2*cfg.Interval),
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

// Handler returns the HTTP routes. /healthz is never rate limited.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.limit(s.handleStatus))
	mux.HandleFunc("/v1/events", s.limit(s.handleEvents))
	mux.HandleFunc("/v1/stream", s.limit(s.handleStream))
	mux.HandleFunc("/v1/projection", s.limit(s.handleProjection))
	mux.Handle("/metrics", s.limit(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP))
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	s.metrics.polls.Inc()

	entries, assumptions, err := s.load(ctx)
	if err != nil {
		s.metrics.pollErrors.Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		log.Printf("cflow daemon poll error: %v", err)
		return
	}

	settings := s.cfg.Settings
	settings.AsOf = s.cfg.Now()
	report := projection.Run(entries, assumptions, settings)

	now := time.Now()
	snap := snapshotFromReport(report, len(entries), len(assumptions), now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.entries = entries
	s.assumptions = assumptions
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "ledger_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	// Cached projections were computed from the previous load.
	s.cache.Flush()
	s.metrics.observe(snap, time.Since(start))

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) load(ctx context.Context) ([]model.LedgerEntry, []model.Assumption, error) {
	if s.cfg.Ledger == nil {
		return nil, nil, errors.New("no ledger configured")
	}
	entries, err := s.cfg.Ledger.LoadEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading entries: %w", err)
	}
	assumptions, err := s.cfg.Ledger.LoadAssumptions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading assumptions: %w", err)
	}
	return entries, assumptions, nil
}

func snapshotFromReport(r projection.Report, entries, assumptions int, at time.Time) Snapshot {
	return Snapshot{
		At:                 at,
		Entries:            entries,
		Assumptions:        assumptions,
		CurrentBalance:     r.KPIs.CurrentBalance,
		EndingBalance:      r.KPIs.EndingBalance,
		NetCash:            r.KPIs.NetCash,
		TotalRevenue:       r.KPIs.TotalRevenue,
		TotalExpenses:      r.KPIs.TotalExpenses,
		GrossMarginPct:     r.KPIs.GrossMarginPct,
		RunwayMonths:       r.KPIs.Runway.Months,
		RunwayInfinite:     r.KPIs.Runway.Infinite,
		SkippedEntries:     r.SkippedEntries,
		SkippedAssumptions: r.SkippedAssumptions,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Entries:        curr.Entries - prev.Entries,
		Assumptions:    curr.Assumptions - prev.Assumptions,
		CurrentBalance: curr.CurrentBalance - prev.CurrentBalance,
		EndingBalance:  curr.EndingBalance - prev.EndingBalance,
		NetCash:        curr.NetCash - prev.NetCash,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scenario := s.cfg.Settings.Scenario
	if scenario == "" {
		scenario = model.DefaultScenario
	}
	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Ledger:          s.cfg.Label,
		Scenario:        scenario,
		Project:         s.cfg.Settings.Project,
		HorizonMonths:   s.cfg.Settings.HorizonMonths,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// runProjection runs (or reuses) the projection for one scenario/project/horizon
// against the most recently polled data.
func (s *Service) runProjection(scenario, project string, horizon int) ProjectionResponse {
	key := scenario + "|" + project + "|" + strconv.Itoa(horizon)
	if v, ok := s.cache.Get(key); ok {
		s.metrics.cacheHits.Inc()
		return v.(ProjectionResponse)
	}
	s.metrics.cacheMisses.Inc()

	s.mu.RLock()
	entries, assumptions := s.entries, s.assumptions
	s.mu.RUnlock()

	settings := s.cfg.Settings
	settings.AsOf = s.cfg.Now()
	settings.Scenario = scenario
	settings.Project = project
	settings.HorizonMonths = horizon
	r := projection.Run(entries, assumptions, settings)

	resp := ProjectionResponse{
		Scenario:      scenario,
		Project:       project,
		AsOf:          model.MonthOf(settings.AsOf),
		HorizonMonths: horizon,
		Baseline:      r.Baseline,
		KPIs:          r.KPIs,
		Months:        r.Months,
	}
	for _, w := range r.Warnings {
		resp.Warnings = append(resp.Warnings, w.Error())
	}
	s.cache.Set(key, resp, cache.DefaultExpiration)
	return resp
}

func (s *Service) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.throttled.Inc()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	scenario := q.Get("scenario")
	if scenario == "" {
		scenario = s.cfg.Settings.Scenario
	}
	if scenario == "" {
		scenario = model.DefaultScenario
	}

	project := s.cfg.Settings.Project
	if q.Has("project") {
		project = q.Get("project")
	}

	horizon := s.cfg.Settings.HorizonMonths
	if raw := q.Get("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 120 {
			http.Error(w, "horizon must be a month count between 1 and 120", http.StatusBadRequest)
			return
		}
		horizon = n
	}

	writeJSON(w, s.runProjection(scenario, project, horizon))
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("cflow daemon: encoding response: %v", err)
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
