package workers

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/voltride/voltride-backend/internal/models"
)

// SweepActor is the system identity stamped on bookings cancelled by the
// expiry sweep.
const SweepActor = "expiry-sweeper"

// sweepBatchLimit caps how many expired bookings one cycle processes.
const sweepBatchLimit = 200

// BookingSource is the store surface the sweeper needs: scan for expired
// pre-confirmation bookings and cancel them with a conditional write.
type BookingSource interface {
	FindExpiredPending(ctx context.Context, asOf time.Time, limit int) ([]models.Booking, error)
	CancelIfUnpaid(ctx context.Context, id uint, actor string) (bool, error)
}

// Metrics receives per-cycle outcomes. Implementations must be safe for use
// from the sweeper goroutine.
type Metrics interface {
	SweepCompleted(cancelled int)
	SweepFailed()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) SweepCompleted(int) {}
func (NopMetrics) SweepFailed()       {}

// ExpirySweeper periodically cancels bookings whose payment window lapsed
// before a settlement arrived. A failed cycle is logged and retried after a
// shorter backoff wait; the sweeper itself never stops except through its
// context.
type ExpirySweeper struct {
	source   BookingSource
	interval time.Duration
	backoff  time.Duration
	logger   *log.Logger
	metrics  Metrics
	now      func() time.Time

	// Notify, when set, is called for every booking this sweeper cancels.
	Notify func(models.Booking)
}

func NewExpirySweeper(source BookingSource, interval, backoff time.Duration, logger *log.Logger, metrics Metrics) *ExpirySweeper {
	if logger == nil {
		logger = log.Default()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ExpirySweeper{
		source:   source,
		interval: interval,
		backoff:  backoff,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled. Cancellation is observed between
// cycles, never mid-write; each store operation is independently
// transactional so nothing is left held on exit.
func (sw *ExpirySweeper) Run(ctx context.Context) {
	sw.logger.Printf("[sweep] started (interval=%s, backoff=%s)", sw.interval, sw.backoff)

	wait := sw.interval
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.logger.Printf("[sweep] stopped: %v", ctx.Err())
			return
		case <-timer.C:
			if err := sw.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					sw.logger.Printf("[sweep] stopped: %v", ctx.Err())
					return
				}
				sw.logger.Printf("[sweep] cycle failed: %v", err)
				sw.metrics.SweepFailed()
				wait = sw.backoff
			} else {
				wait = sw.interval
			}
			timer.Reset(wait)
		}
	}
}

// sweep runs one scan-and-cancel cycle.
func (sw *ExpirySweeper) sweep(ctx context.Context) error {
	runID := uuid.NewString()

	expired, err := sw.source.FindExpiredPending(ctx, sw.now(), sweepBatchLimit)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		sw.metrics.SweepCompleted(0)
		return nil
	}

	cancelled := 0
	for _, booking := range expired {
		ok, err := sw.source.CancelIfUnpaid(ctx, booking.ID, SweepActor)
		if err != nil {
			// Finish the batch before reporting; a single bad row must not
			// shadow the rest of the cycle.
			sw.logger.Printf("[sweep %s] cancel booking %s: %v", runID, booking.Code, err)
			continue
		}
		if !ok {
			// Lost the race to a webhook settlement. Correct outcome, just
			// worth a trace.
			sw.logger.Printf("[sweep %s] booking %s settled concurrently, skipping", runID, booking.Code)
			continue
		}
		cancelled++
		sw.logger.Printf("[sweep %s] cancelled booking %s (due %s)", runID, booking.Code, booking.PaymentDueAt.Format(time.RFC3339))
		if sw.Notify != nil {
			sw.Notify(booking)
		}
	}

	sw.metrics.SweepCompleted(cancelled)
	return nil
}
