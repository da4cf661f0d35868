package reference

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/observability"
	"vcbot/pkg/logger"
)

var tracer = otel.Tracer("vcbot/reference")

// DefaultLockWait bounds how long a caller waits for the allocation lock
// before failing with apperror.CodeLockTimeout.
const DefaultLockWait = 5 * time.Second

// Service is the reference allocator. It serializes all mutating operations
// behind a single lock: allocation is cheap and the persisted artifact is a
// single mapping, so per-type locking would still funnel through one writer.
//
// The service keeps no counter state in memory across calls; the persisted
// store is authoritative and is re-read under the lock on every mutation.
type Service struct {
	store    Store
	lockWait time.Duration

	// lock is a capacity-1 semaphore so acquisition can respect
	// context cancellation and the bounded wait.
	lock chan struct{}

	// now is injectable for tests.
	now func() time.Time

	log *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLockWait overrides the bounded lock wait.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) { s.lockWait = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the allocator on top of a durable store.
func NewService(store Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		lockWait: DefaultLockWait,
		lock:     make(chan struct{}, 1),
		now:      time.Now,
		log:      log.WithComponent("reference"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate issues the next reference number for the bill type.
//
// For N successful calls on one type the returned numbers are exactly
// {1..N}: a failed attempt never advances the counter and is never visible
// to later callers, because the new value is only adopted once Save has
// durably committed.
func (s *Service) Allocate(ctx context.Context, bt billtype.BillType) (Reference, error) {
	ctx, span := tracer.Start(ctx, "reference.Allocate",
		trace.WithAttributes(attribute.String("bill_type", bt.String())))
	defer span.End()

	if !bt.Valid() {
		return Reference{}, apperror.NewInvalidBillType(bt.String())
	}

	if err := s.acquire(ctx); err != nil {
		observability.ReferenceFailures.WithLabelValues(bt.String(), "lock_timeout").Inc()
		return Reference{}, err
	}
	defer s.release()

	refs, err := s.store.Load(ctx)
	if err != nil {
		observability.ReferenceFailures.WithLabelValues(bt.String(), "load").Inc()
		return Reference{}, err
	}

	now := s.now()
	rec, exists := refs[bt]
	next := rec.Number + 1

	updated := Reference{
		BillType:  bt,
		Number:    next,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: now,
	}
	if !exists {
		updated.CreatedAt = now
	}
	refs[bt] = updated

	if err := s.store.Save(ctx, refs); err != nil {
		observability.ReferenceFailures.WithLabelValues(bt.String(), "persistence").Inc()
		return Reference{}, err
	}

	observability.ReferencesIssued.WithLabelValues(bt.String()).Inc()
	s.log.WithContext(ctx).Infow("reference allocated",
		"bill_type", bt.String(),
		"number", next,
	)
	span.SetAttributes(attribute.Int64("reference.number", next))
	return updated, nil
}

// Override sets the counter for a bill type directly, bypassing the
// increment rule. Administrative and auditable; exempt from the monotonicity
// guarantee. The caller owns the business consequence of renumbering.
func (s *Service) Override(ctx context.Context, bt billtype.BillType, number int64) (Reference, error) {
	ctx, span := tracer.Start(ctx, "reference.Override",
		trace.WithAttributes(
			attribute.String("bill_type", bt.String()),
			attribute.Int64("reference.number", number),
		))
	defer span.End()

	if !bt.Valid() {
		return Reference{}, apperror.NewInvalidBillType(bt.String())
	}
	if number < 0 {
		return Reference{}, apperror.NewValidation("reference number must be non-negative").
			WithDetail("number", number)
	}

	if err := s.acquire(ctx); err != nil {
		return Reference{}, err
	}
	defer s.release()

	refs, err := s.store.Load(ctx)
	if err != nil {
		return Reference{}, err
	}

	now := s.now()
	rec, exists := refs[bt]
	updated := Reference{
		BillType:  bt,
		Number:    number,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: now,
	}
	if !exists {
		updated.CreatedAt = now
	}
	refs[bt] = updated

	if err := s.store.Save(ctx, refs); err != nil {
		return Reference{}, err
	}

	observability.ReferenceOverrides.WithLabelValues(bt.String()).Inc()
	s.log.WithContext(ctx).Warnw("reference counter overridden",
		"bill_type", bt.String(),
		"number", number,
		"previous", rec.Number,
	)
	return updated, nil
}

// Query returns the current record for a bill type. Read-only: it does not
// take the allocation lock and observes only atomically committed snapshots.
func (s *Service) Query(ctx context.Context, bt billtype.BillType) (Reference, error) {
	if !bt.Valid() {
		return Reference{}, apperror.NewInvalidBillType(bt.String())
	}

	refs, err := s.store.Load(ctx)
	if err != nil {
		return Reference{}, err
	}

	rec, ok := refs[bt]
	if !ok {
		return Reference{}, apperror.NewNotFound("reference", bt.String())
	}
	return rec, nil
}

// List returns all existing records in display order.
func (s *Service) List(ctx context.Context) ([]Reference, error) {
	refs, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Reference, 0, len(refs))
	for _, bt := range billtype.All() {
		if rec, ok := refs[bt]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// acquire takes the allocation lock, honoring context cancellation and the
// bounded wait. The lock is held only across load, compute and save.
func (s *Service) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case s.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperror.NewLockTimeout(ctx.Err())
	case <-timer.C:
		return apperror.NewLockTimeout(errors.New("allocation lock wait exceeded"))
	}
}

func (s *Service) release() {
	<-s.lock
}
