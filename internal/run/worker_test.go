package run

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/fleetbench/internal/adapters/store"
	"github.com/okian/fleetbench/internal/domain/telemetry"
	"github.com/okian/fleetbench/internal/domain/vehicle"
)

// mockStore is an in-memory Store double that succeeds in O(1) time unless
// told to fail, slow down, or block a specific operation.
type mockStore struct {
	payload []byte

	// latency delays Persist while honoring context cancellation the way a
	// database driver does; aborted counts operations cut short that way.
	latency time.Duration
	// block, when non-nil, parks RandomVIN until the channel is closed,
	// ignoring the context entirely.
	block chan struct{}

	fetches  int64
	persists int64
	aborted  int64

	vinErr     error
	fetchErr   error
	persistErr error
}

func newMockStore(t *testing.T) *mockStore {
	t.Helper()
	payload, err := telemetry.Encode(telemetry.New(time.Now()))
	if err != nil {
		t.Fatalf("failed to build mock payload: %v", err)
	}
	return &mockStore{payload: payload}
}

func (m *mockStore) RandomVIN(_ context.Context) (string, error) {
	if m.block != nil {
		<-m.block
	}
	if m.vinErr != nil {
		return "", m.vinErr
	}
	return "WP0ZZZ99ZTS000042", nil
}

func (m *mockStore) Fetch(_ context.Context, vin string) (*vehicle.Record, error) {
	atomic.AddInt64(&m.fetches, 1)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	now := time.Now()
	return &vehicle.Record{
		VIN:       vin,
		Brand:     "Porsche",
		Country:   "DE",
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now,
		Payload:   m.payload,
	}, nil
}

func (m *mockStore) Persist(ctx context.Context, _ *vehicle.Record) error {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			atomic.AddInt64(&m.aborted, 1)
			return ctx.Err()
		}
	}
	if m.persistErr != nil {
		return m.persistErr
	}
	atomic.AddInt64(&m.persists, 1)
	return nil
}

func (m *mockStore) Count(_ context.Context) (int64, error) {
	return 1, nil
}

func TestWorker_IterateSuccess(t *testing.T) {
	st := newMockStore(t)
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	outcome := w.iterate(context.Background())

	if !outcome.Success {
		t.Fatalf("expected success, got failure class %q", outcome.Class)
	}
	if outcome.Elapsed <= 0 {
		t.Error("expected positive elapsed time")
	}
	if got := atomic.LoadInt64(&st.persists); got != 1 {
		t.Errorf("expected 1 persist, got %d", got)
	}
}

func TestWorker_IterateFetchNotFound(t *testing.T) {
	st := newMockStore(t)
	st.fetchErr = fmt.Errorf("fetch WP0: %w", store.ErrNotFound)
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	outcome := w.iterate(context.Background())

	if outcome.Success {
		t.Fatal("expected failure outcome")
	}
	if outcome.Class != FailureData {
		t.Errorf("expected data failure, got %q", outcome.Class)
	}
	if got := atomic.LoadInt64(&st.persists); got != 0 {
		t.Errorf("expected no persists after failed fetch, got %d", got)
	}
}

func TestWorker_IterateConnectionFailure(t *testing.T) {
	st := newMockStore(t)
	st.persistErr = errors.New("connection reset by peer")
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	outcome := w.iterate(context.Background())

	if outcome.Success {
		t.Fatal("expected failure outcome")
	}
	if outcome.Class != FailureConnection {
		t.Errorf("expected connection failure, got %q", outcome.Class)
	}
}

func TestWorker_IterateCorruptPayload(t *testing.T) {
	st := newMockStore(t)
	st.payload = []byte{} // undecodable blob
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	outcome := w.iterate(context.Background())

	if outcome.Success {
		t.Fatal("expected failure outcome")
	}
	if outcome.Class != FailureData {
		t.Errorf("expected data failure, got %q", outcome.Class)
	}
	if got := atomic.LoadInt64(&st.persists); got != 0 {
		t.Errorf("expected no persists after decode failure, got %d", got)
	}
}

func TestWorker_RunStopsOnSignal(t *testing.T) {
	st := newMockStore(t)
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), stop)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not observe stop signal")
	}

	snap := agg.Snapshot()
	if snap.Total == 0 {
		t.Fatal("expected worker to complete at least one iteration")
	}
	if snap.Total != snap.Success+snap.Failure {
		t.Errorf("total %d != success %d + failure %d", snap.Total, snap.Success, snap.Failure)
	}

	// Every successful iteration performed exactly one persist.
	if got := atomic.LoadInt64(&st.persists); got != snap.Success {
		t.Errorf("expected %d persists, got %d", snap.Success, got)
	}

	// No new iterations start after the stop signal.
	before := agg.Snapshot().Total
	time.Sleep(50 * time.Millisecond)
	if after := agg.Snapshot().Total; after != before {
		t.Errorf("iterations continued after stop: %d -> %d", before, after)
	}
}

func TestWorker_InFlightCompletesOnStop(t *testing.T) {
	st := newMockStore(t)
	st.latency = 80 * time.Millisecond
	agg := NewAggregator(time.Now())
	w := NewWorker(0, st, agg)

	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), stop)
	}()

	// Signal stop while the first persist is still in flight.
	time.Sleep(40 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not finish after stop")
	}

	if got := atomic.LoadInt64(&st.aborted); got != 0 {
		t.Fatalf("in-flight operation was aborted %d times", got)
	}

	snap := agg.Snapshot()
	if snap.Failure != 0 {
		t.Errorf("expected no failures, got %d", snap.Failure)
	}
	if snap.Success == 0 {
		t.Error("expected the in-flight iteration to complete and be recorded")
	}
	if got := atomic.LoadInt64(&st.persists); got != snap.Success {
		t.Errorf("expected %d persists, got %d", snap.Success, got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureClass
	}{
		{"not found", store.ErrNotFound, FailureData},
		{"wrapped not found", fmt.Errorf("fetch: %w", store.ErrNotFound), FailureData},
		{"empty table", store.ErrNoVehicles, FailureData},
		{"corrupt payload", telemetry.ErrCorruptPayload, FailureData},
		{"network", errors.New("dial tcp: connection refused"), FailureConnection},
		{"context deadline", context.DeadlineExceeded, FailureConnection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); got != tc.want {
				t.Errorf("classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
