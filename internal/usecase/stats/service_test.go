package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// --- Mock ---

type mockCounterStore struct {
	vals    map[string]int64
	incrErr error
	getErr  error
}

func newMockCounterStore() *mockCounterStore {
	return &mockCounterStore{vals: map[string]int64{}}
}

func (m *mockCounterStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.vals[key] += val
	return nil
}

func (m *mockCounterStore) Get(_ context.Context, key string) (int64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.vals[key], nil
}

func newTestService(store CounterStore, now time.Time) *Service {
	s := New(store, "rr:", zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

// --- Tests ---

func TestRecordQuery_Keys(t *testing.T) {
	ms := newMockCounterStore()
	svc := newTestService(ms, time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC))

	if err := svc.RecordQuery(context.Background(), 5, 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int64{
		"rr:stats:daily:2026-10-19:queries":    1,
		"rr:stats:daily:2026-10-19:candidates": 5,
		"rr:stats:daily:2026-10-19:latency_us": 1_500_000,
		"rr:stats:total:queries":               1,
		"rr:stats:total:candidates":            5,
		"rr:stats:total:latency_us":            1_500_000,
	}
	for k, v := range want {
		if ms.vals[k] != v {
			t.Errorf("%s = %d, want %d", k, ms.vals[k], v)
		}
	}
	if len(ms.vals) != len(want) {
		t.Errorf("unexpected keys: %v", ms.vals)
	}
}

func TestSnapshot_TodayAndTotal(t *testing.T) {
	ms := newMockCounterStore()
	yesterday := newTestService(ms, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	today := newTestService(ms, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := yesterday.RecordQuery(ctx, 10, 4*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := today.RecordQuery(ctx, 3, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := today.RecordQuery(ctx, 2, 3*time.Second); err != nil {
		t.Fatal(err)
	}

	snap, err := today.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Day() != "2026-10-19" {
		t.Errorf("day = %q", snap.Day())
	}
	if got := snap.Today(); got.Queries() != 2 || got.Candidates() != 5 || got.AvgLatency() != 2*time.Second {
		t.Errorf("today = %d queries, %d candidates, avg %v", got.Queries(), got.Candidates(), got.AvgLatency())
	}
	if got := snap.Total(); got.Queries() != 3 || got.Candidates() != 15 || got.AvgLatency() != 8*time.Second/3 {
		t.Errorf("total = %d queries, %d candidates, avg %v", got.Queries(), got.Candidates(), got.AvgLatency())
	}
}

func TestSnapshot_Empty(t *testing.T) {
	svc := newTestService(newMockCounterStore(), time.Now())
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Total().Queries() != 0 || snap.Total().AvgLatency() != 0 {
		t.Errorf("expected zero counters, got %+v", snap.Total())
	}
}

func TestErrors(t *testing.T) {
	boom := errors.New("boom")

	ms := newMockCounterStore()
	ms.incrErr = boom
	if err := newTestService(ms, time.Now()).RecordQuery(context.Background(), 1, time.Second); !errors.Is(err, boom) {
		t.Errorf("record: %v", err)
	}

	ms = newMockCounterStore()
	ms.getErr = boom
	if _, err := newTestService(ms, time.Now()).Snapshot(context.Background()); !errors.Is(err, boom) {
		t.Errorf("snapshot: %v", err)
	}
}
