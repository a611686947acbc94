package run

import (
	"context"

	"github.com/okian/fleetbench/pkg/logger"
)

// Throughput rating thresholds in operations per second.
const (
	ratingOutstandingOps = 100.0
	ratingExcellentOps   = 50.0
	ratingGoodOps        = 20.0
)

// rating buckets throughput into a qualitative verdict.
func rating(throughput float64) string {
	switch {
	case throughput > ratingOutstandingOps:
		return "outstanding"
	case throughput > ratingExcellentOps:
		return "excellent"
	case throughput > ratingGoodOps:
		return "good"
	default:
		return "consider instance scaling"
	}
}

// reportLive emits the periodic progress line. Latency figures use the
// recent-sample window so the line tracks current behavior, not run history.
func reportLive(ctx context.Context, log logger.Logger, snap Snapshot) {
	log.Info(ctx, "progress",
		logger.Int64("ops", snap.Total),
		logger.Float64("successPct", snap.SuccessRate()),
		logger.Float64("throughputOpsSec", snap.Throughput),
		logger.Float64("avgLatencyMs", snap.RecentMeanMS),
		logger.Float64("p95LatencyMs", snap.RecentP95MS),
		logger.Float64("runtimeSec", snap.Elapsed.Seconds()))
}

// reportFinal emits the end-of-run summary over the full sample set, plus
// any coordination anomaly observed during draining.
func reportFinal(ctx context.Context, log logger.Logger, snap Snapshot, stragglers int) {
	if stragglers > 0 {
		log.Warn(ctx, "drain anomaly",
			logger.Int("stragglers", stragglers),
			logger.Error(ErrDrainTimeout))
	}

	log.Info(ctx, "final results",
		logger.Int64("totalOperations", snap.Total),
		logger.Int64("successfulOperations", snap.Success),
		logger.Int64("failedOperations", snap.Failure),
		logger.Float64("successPct", snap.SuccessRate()),
		logger.Float64("throughputOpsSec", snap.Throughput),
		logger.Float64("durationSec", snap.Elapsed.Seconds()),
		logger.Float64("avgLatencyMs", snap.MeanMS),
		logger.Float64("minLatencyMs", snap.MinMS),
		logger.Float64("maxLatencyMs", snap.MaxMS),
		logger.Float64("p95LatencyMs", snap.P95MS),
		logger.Float64("p99LatencyMs", snap.P99MS),
		logger.String("rating", rating(snap.Throughput)))

	for class, count := range snap.Failures {
		log.Info(ctx, "failure breakdown",
			logger.String("class", string(class)),
			logger.Int64("count", count))
	}
}
