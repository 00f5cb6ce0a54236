package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creatorshield/simengine/internal/db"
	"github.com/creatorshield/simengine/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error

	lastTTL time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

type mockInner struct {
	vec           []float32
	embedErr      error
	embedCalls    int
	classifyCalls int
}

func (m *mockInner) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	return m.vec, m.embedErr
}

func (m *mockInner) Classify(_ context.Context, _, _ string, _ domain.ClassifyKind) (float64, error) {
	m.classifyCalls++
	return 0.7, nil
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockInner{vec: []float32{0.1, -2.5, 3.0}}
	store := newMockStore()
	cached := New(inner, store, "simengine:", time.Hour, nil, nil)

	first, err := cached.Embed(context.Background(), "some title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.embedCalls != 1 {
		t.Fatalf("embed calls = %d, want 1", inner.embedCalls)
	}
	if store.lastTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", store.lastTTL)
	}

	second, err := cached.Embed(context.Background(), "some title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.embedCalls != 1 {
		t.Errorf("embed calls = %d after hit, want still 1", inner.embedCalls)
	}

	if len(second) != len(first) {
		t.Fatalf("cached vector length %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("vector[%d] = %v, want %v", i, second[i], first[i])
		}
	}
}

func TestEmbed_DifferentTextsMiss(t *testing.T) {
	inner := &mockInner{vec: []float32{1}}
	cached := New(inner, newMockStore(), "simengine:", time.Hour, nil, nil)

	if _, err := cached.Embed(context.Background(), "text a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Embed(context.Background(), "text b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.embedCalls != 2 {
		t.Errorf("embed calls = %d, want 2", inner.embedCalls)
	}
}

func TestEmbed_StoreFailureFallsThrough(t *testing.T) {
	inner := &mockInner{vec: []float32{1, 2}}
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	cached := New(inner, store, "simengine:", time.Hour, nil, nil)

	vec, err := cached.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("cache outage must not fail embedding: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("vector = %v", vec)
	}
	if inner.embedCalls != 1 {
		t.Errorf("embed calls = %d, want 1", inner.embedCalls)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &mockInner{embedErr: domain.ErrBackendUnavailable}
	cached := New(inner, newMockStore(), "simengine:", time.Hour, nil, nil)

	_, err := cached.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestEmbed_CorruptCacheEntryRecomputes(t *testing.T) {
	inner := &mockInner{vec: []float32{1, 2, 3}}
	store := newMockStore()
	cached := New(inner, store, "simengine:", time.Hour, nil, nil)

	// Poison the cache entry with a length that is not a float32 multiple.
	store.data[cached.cacheKey("text")] = []byte{1, 2, 3}

	vec, err := cached.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || inner.embedCalls != 1 {
		t.Errorf("vec = %v, embed calls = %d; want recompute", vec, inner.embedCalls)
	}
}

func TestClassify_PassesThrough(t *testing.T) {
	inner := &mockInner{}
	cached := New(inner, newMockStore(), "simengine:", time.Hour, nil, nil)

	got, err := cached.Classify(context.Background(), "a", "b", domain.ClassifyCommentary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.7 {
		t.Errorf("classify = %v, want 0.7", got)
	}
	if inner.classifyCalls != 1 {
		t.Errorf("classify calls = %d, want 1", inner.classifyCalls)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.14159, 1e-7}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("vector[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}
