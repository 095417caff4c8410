package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
)

type fakeLedger struct {
	entries     []model.LedgerEntry
	assumptions []model.Assumption
	err         error
}

func (f *fakeLedger) LoadEntries(context.Context) ([]model.LedgerEntry, error) {
	return f.entries, f.err
}

func (f *fakeLedger) LoadAssumptions(context.Context) ([]model.Assumption, error) {
	return f.assumptions, f.err
}

func newTestService(t *testing.T, ledger *fakeLedger, rateLimit float64) *Service {
	t.Helper()
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	return New(Config{
		Ledger: ledger,
		Label:  "test",
		Settings: projection.Settings{
			HorizonMonths:  3,
			LookbackMonths: 2,
		},
		Now:          func() time.Time { return now },
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		RateLimit:    rateLimit,
		Burst:        1,
	})
}

func sampleLedger() *fakeLedger {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	return &fakeLedger{
		entries: []model.LedgerEntry{
			{ID: "r1", Date: jan, Category: model.CategoryRevenue, Amount: 10000, Kind: model.KindActual},
			{ID: "o1", Date: jan, Category: model.CategoryOpex, Amount: -4000, Kind: model.KindActual},
		},
		assumptions: []model.Assumption{
			{ID: "a1", Name: "Hire", Category: model.CategoryOpex, ScenarioID: "growth", Amount: 2000,
				ValueType: model.ValueFixed, Frequency: model.FreqMonthly, Start: model.YearMonth{Year: 2025, Month: time.February}},
		},
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Entries: 10, Assumptions: 2, CurrentBalance: 1000, EndingBalance: 5000, NetCash: 200}
	curr := Snapshot{Entries: 12, Assumptions: 2, CurrentBalance: 1500, EndingBalance: 4200.5, NetCash: 200}

	delta := diffSnapshots(prev, curr)
	if delta.Entries != 2 {
		t.Fatalf("Entries delta = %d, want 2", delta.Entries)
	}
	if delta.Assumptions != 0 {
		t.Fatalf("Assumptions delta = %d, want 0", delta.Assumptions)
	}
	if delta.CurrentBalance != 500 {
		t.Fatalf("CurrentBalance delta = %.2f, want 500", delta.CurrentBalance)
	}
	if math.Abs(delta.EndingBalance-(-799.5)) > 1e-9 {
		t.Fatalf("EndingBalance delta = %.2f, want -799.50", delta.EndingBalance)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnceEmitsSnapshotThenDeltas(t *testing.T) {
	ledger := sampleLedger()
	s := newTestService(t, ledger, 0)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged data: no new event

	ledger.entries = append(ledger.entries, model.LedgerEntry{
		ID: "r2", Date: time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
		Category: model.CategoryRevenue, Amount: 500, Kind: model.KindActual,
	})
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != "snapshot" || events[1].Type != "ledger_delta" {
		t.Fatalf("event types = [%s, %s], want [snapshot, ledger_delta]", events[0].Type, events[1].Type)
	}
	if events[1].Delta.Entries != 1 {
		t.Errorf("delta entries = %d, want 1", events[1].Delta.Entries)
	}

	st := s.snapshotStatus()
	if st.PollCount != 3 {
		t.Errorf("PollCount = %d, want 3", st.PollCount)
	}
	if st.Summary.Entries != 3 {
		t.Errorf("Summary.Entries = %d, want 3", st.Summary.Entries)
	}
	if st.Scenario != model.DefaultScenario {
		t.Errorf("Scenario = %q, want %q", st.Scenario, model.DefaultScenario)
	}
	if got := testutil.ToFloat64(s.metrics.entries); got != 3 {
		t.Errorf("entries gauge = %v, want 3", got)
	}
}

func TestPollOnceRecordsError(t *testing.T) {
	s := newTestService(t, &fakeLedger{err: errors.New("db down")}, 0)
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if !strings.Contains(st.LastError, "db down") {
		t.Fatalf("LastError = %q, want it to mention db down", st.LastError)
	}
	if got := testutil.ToFloat64(s.metrics.pollErrors); got != 1 {
		t.Errorf("poll errors = %v, want 1", got)
	}
}

func TestProjectionEndpoint(t *testing.T) {
	s := newTestService(t, sampleLedger(), 0)
	s.pollOnce(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(query string) ProjectionResponse {
		t.Helper()
		resp, err := http.Get(srv.URL + "/v1/projection" + query)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var pr ProjectionResponse
		if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return pr
	}

	base := get("")
	if base.Scenario != model.DefaultScenario {
		t.Errorf("Scenario = %q, want base", base.Scenario)
	}
	// 2 lookback months + cutoff + 3 horizon months.
	if len(base.Months) != 6 {
		t.Fatalf("months = %d, want 6", len(base.Months))
	}
	if base.AsOf.String() != "2025-01" {
		t.Errorf("AsOf = %s, want 2025-01", base.AsOf)
	}

	growth := get("?scenario=growth&horizon=3")
	last := len(growth.Months) - 1
	if growth.Months[last].Opex.Projected >= base.Months[last].Opex.Projected {
		t.Errorf("growth opex %.2f should be more negative than base %.2f",
			growth.Months[last].Opex.Projected, base.Months[last].Opex.Projected)
	}

	_ = get("?scenario=growth&horizon=3")
	if got := testutil.ToFloat64(s.metrics.cacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}

	resp, err := http.Get(srv.URL + "/v1/projection?horizon=abc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad horizon status = %d, want 400", resp.StatusCode)
	}
}

func TestRateLimitSparesHealthz(t *testing.T) {
	s := newTestService(t, sampleLedger(), 0.001)
	h := s.Handler()

	codes := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("status codes = %v, want [200 429]", codes)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestService(t, sampleLedger(), 0)
	s.pollOnce(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	for _, name := range []string{"cflow_ledger_entries 2", "cflow_polls_total 1"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}
