package run

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/okian/fleetbench/internal/adapters/store"
	"github.com/okian/fleetbench/internal/domain/telemetry"
	"github.com/okian/fleetbench/pkg/logger"
	"github.com/okian/fleetbench/pkg/metrics"
)

// Worker performs repeated read-modify-write iterations until told to stop.
// The stop signal is only observed at iteration boundaries, so an in-flight
// database operation is never abandoned.
type Worker struct {
	id     int
	store  store.Store
	agg    *Aggregator
	logger logger.Logger
}

// NewWorker creates a worker bound to the shared store and aggregator.
func NewWorker(id int, st store.Store, agg *Aggregator) *Worker {
	return &Worker{
		id:     id,
		store:  st,
		agg:    agg,
		logger: logger.Get().Named("worker-" + strconv.Itoa(id)),
	}
}

// Run executes the worker loop: SELECT_KEY -> READ -> MUTATE -> WRITE -> REPORT.
// Closing stop ends the loop at the next iteration boundary; the iteration in
// flight runs to completion against ctx, which the coordinator only cancels
// as a backstop for workers stuck past the drain grace period.
func (w *Worker) Run(ctx context.Context, stop <-chan struct{}) {
	operations := 0
	for {
		select {
		case <-stop:
			w.logger.Info(ctx, "worker finished", logger.Int("operations", operations))
			return
		case <-ctx.Done():
			w.logger.Info(ctx, "worker finished", logger.Int("operations", operations))
			return
		default:
		}

		outcome := w.iterate(ctx)
		w.agg.Record(outcome)
		metrics.RecordOperation(
			float64(outcome.Elapsed)/float64(time.Millisecond),
			outcome.Success,
			string(outcome.Class),
		)
		operations++
	}
}

// iterate performs a single read-modify-write cycle. Failures are converted
// into failed outcomes, never propagated; retries are a new iteration.
func (w *Worker) iterate(ctx context.Context) Outcome {
	start := time.Now()

	vin, err := w.store.RandomVIN(ctx)
	if err != nil {
		return w.failed(start, err)
	}

	rec, err := w.store.Fetch(ctx, vin)
	if err != nil {
		return w.failed(start, err)
	}

	blob, err := telemetry.Mutate(rec.Payload, time.Now())
	if err != nil {
		return w.failed(start, err)
	}
	rec.Payload = blob

	if err := w.store.Persist(ctx, rec); err != nil {
		return w.failed(start, err)
	}

	return Outcome{
		WorkerID: w.id,
		Start:    start,
		Elapsed:  time.Since(start),
		Success:  true,
	}
}

// failed builds a failure outcome classified by error kind.
func (w *Worker) failed(start time.Time, err error) Outcome {
	return Outcome{
		WorkerID: w.id,
		Start:    start,
		Elapsed:  time.Since(start),
		Class:    classify(err),
	}
}

// classify maps an iteration error to its failure class.
func classify(err error) FailureClass {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrNoVehicles),
		errors.Is(err, telemetry.ErrCorruptPayload):
		return FailureData
	default:
		return FailureConnection
	}
}
