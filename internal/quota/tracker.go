package quota

import (
	"context"
	"sync/atomic"
	"time"

	"services/market-data-service/internal/model"

	"go.uber.org/zap"
)

// RequestLogStore persists drained request records for auditing
type RequestLogStore interface {
	AppendRequestLog(ctx context.Context, record model.APIRequestRecord) error
}

// Tracker accounts for the request budget of one provider+interval pairing.
// The consumed-today counter is atomic and mutated only by the drain and
// daily-reset cycles, so reads never block request paths. The tracker does
// not gate requests; its counters are advisory.
type Tracker struct {
	name   string
	tier   model.CreditTier
	ledger *Ledger
	store  RequestLogStore
	logger *zap.Logger

	todayUsed     atomic.Int64
	drainInterval time.Duration
	now           func() time.Time
}

// NewTracker creates a tracker draining the given ledger into the audit log
func NewTracker(name string, tier model.CreditTier, ledger *Ledger, store RequestLogStore, logger *zap.Logger) *Tracker {
	return &Tracker{
		name:          name,
		tier:          tier,
		ledger:        ledger,
		store:         store,
		logger:        logger,
		drainInterval: time.Minute,
		now:           time.Now,
	}
}

// Name returns the provider identity this tracker accounts for
func (t *Tracker) Name() string {
	return t.name
}

// RequestLimit returns the remaining daily budget. It can transiently read
// negative when more requests were issued than the tier allows.
func (t *Tracker) RequestLimit() int {
	return t.tier.DailyLimit - int(t.todayUsed.Load())
}

// RequestsRemaining returns the remaining budget of the current minute window
func (t *Tracker) RequestsRemaining() int {
	return t.tier.MinuteLimit - t.ledger.PendingCost()
}

// TimeUntilReset returns the duration until the next daily reset
func (t *Tracker) TimeUntilReset() time.Duration {
	return t.tier.TimeUntilReset(t.now())
}

// Drain moves every buffered ledger entry into the daily counter and the
// persistent audit log. Each entry is drained exactly once; an audit write
// failure is logged and does not undo the counter update.
func (t *Tracker) Drain(ctx context.Context) {
	for _, rec := range t.ledger.takeAll() {
		t.todayUsed.Add(int64(rec.Cost))

		if err := t.store.AppendRequestLog(ctx, rec); err != nil {
			t.logger.Error("Failed to append request log",
				zap.Error(err),
				zap.String("provider", t.name),
				zap.String("url", rec.URL))
		}
	}
}

// ResetDaily zeroes the consumed-today counter
func (t *Tracker) ResetDaily() {
	t.todayUsed.Store(0)
}

// Start launches the minute drain ticker and the daily reset timer. Both run
// until ctx is cancelled and a failed cycle never prevents the next one.
func (t *Tracker) Start(ctx context.Context) {
	go t.drainLoop(ctx)
	go t.resetLoop(ctx)
}

func (t *Tracker) drainLoop(ctx context.Context) {
	ticker := time.NewTicker(t.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Drain(ctx)
		}
	}
}

func (t *Tracker) resetLoop(ctx context.Context) {
	timer := time.NewTimer(t.TimeUntilReset())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t.ResetDaily()
			t.logger.Info("Daily request counter reset", zap.String("provider", t.name))
			timer.Reset(t.TimeUntilReset())
		}
	}
}
