package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/resumerank/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	values    map[string]string
	getErr    error
	incrErr   error
	expireErr error
	incrs     map[string]int64
	expires   []expireCall
}

func newMockStore() *mockStore {
	return &mockStore{values: map[string]string{}, incrs: map[string]int64{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(v), nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl, nx: nx})
	return m.expireErr
}

func TestIncrBy_DailyKeySetsTTLOnce(t *testing.T) {
	ms := newMockStore()
	s := New(ms, 48*time.Hour)

	if err := s.IncrBy(context.Background(), "rr:stats:daily:2026-10-19:queries", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.incrs["rr:stats:daily:2026-10-19:queries"] != 1 {
		t.Errorf("incrs = %v", ms.incrs)
	}
	if len(ms.expires) != 1 {
		t.Fatalf("expected 1 EXPIRE, got %d", len(ms.expires))
	}
	if e := ms.expires[0]; e.ttl != 48*time.Hour || !e.nx {
		t.Errorf("expire = %+v, want 48h NX", e)
	}
}

func TestIncrBy_TotalKeyNeverExpires(t *testing.T) {
	ms := newMockStore()
	s := New(ms, 0)

	if err := s.IncrBy(context.Background(), "rr:stats:total:candidates", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.incrs["rr:stats:total:candidates"] != 7 {
		t.Errorf("incrs = %v", ms.incrs)
	}
	if len(ms.expires) != 0 {
		t.Errorf("total keys must not expire, got %+v", ms.expires)
	}
}

func TestIncrBy_Errors(t *testing.T) {
	boom := errors.New("boom")

	ms := newMockStore()
	ms.incrErr = boom
	if err := New(ms, 0).IncrBy(context.Background(), "k:daily:x", 1); !errors.Is(err, boom) {
		t.Errorf("INCRBY error not propagated: %v", err)
	}
	if len(ms.expires) != 0 {
		t.Error("EXPIRE must not run after a failed INCRBY")
	}

	ms = newMockStore()
	ms.expireErr = boom
	if err := New(ms, 0).IncrBy(context.Background(), "k:daily:x", 1); !errors.Is(err, boom) {
		t.Errorf("EXPIRE error not propagated: %v", err)
	}
}

func TestGet(t *testing.T) {
	ms := newMockStore()
	ms.values["present"] = "42"
	ms.values["garbage"] = "forty-two"
	s := New(ms, 0)

	if v, err := s.Get(context.Background(), "present"); err != nil || v != 42 {
		t.Errorf("present: %d, %v", v, err)
	}
	if v, err := s.Get(context.Background(), "absent"); err != nil || v != 0 {
		t.Errorf("absent: %d, %v", v, err)
	}
	if _, err := s.Get(context.Background(), "garbage"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("conn reset")
	if _, err := s.Get(context.Background(), "present"); err == nil {
		t.Error("expected store error")
	}
}
