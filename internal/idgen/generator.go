// Package idgen issues sequential product identifiers from a persisted counter.
//
// Every call runs a read-increment-persist cycle on the counter while holding
// a process-wide guard, so identifiers are unique and increase by exactly one
// in the order callers acquire the guard. The guard does not span processes.
package idgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Generator hands out product identifiers. It is safe for concurrent use.
type Generator struct {
	store          CounterStore
	guard          *Guard
	acquireTimeout time.Duration
	logger         *slog.Logger

	generated metric.Int64Counter
	failures  metric.Int64Counter
	guardWait metric.Float64Histogram
}

// Option configures a Generator.
type Option func(*Generator)

// WithGuard replaces the process-wide guard. Only generators that never share a store may use their own guard.
func WithGuard(guard *Guard) Option {
	return func(g *Generator) {
		g.guard = guard
	}
}

// WithAcquireTimeout bounds how long GenerateNext waits for the guard. Zero means wait until ctx is done.
func WithAcquireTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.acquireTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator over store.
func NewGenerator(store CounterStore, opts ...Option) *Generator {
	g := &Generator{
		store:  store,
		guard:  SharedGuard(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "idgen")

	meter := otel.Meter("inventory/idgen")
	var err error
	if g.generated, err = meter.Int64Counter("idgen.generated",
		metric.WithDescription("Product IDs issued")); err != nil {
		panic(fmt.Sprintf("failed to create idgen.generated counter: %v", err))
	}
	if g.failures, err = meter.Int64Counter("idgen.failures",
		metric.WithDescription("Failed product ID generations")); err != nil {
		panic(fmt.Sprintf("failed to create idgen.failures counter: %v", err))
	}
	if g.guardWait, err = meter.Float64Histogram("idgen.guard_wait",
		metric.WithDescription("Time spent waiting for the generator guard"),
		metric.WithUnit("ms")); err != nil {
		panic(fmt.Sprintf("failed to create idgen.guard_wait histogram: %v", err))
	}
	return g
}

// GenerateNext returns the next identifier as a decimal string ("100001" on a fresh store).
// Store failures are wrapped in ErrGenerateID; a guard wait that runs out returns ErrGuardTimeout.
// ctx bounds only the wait for the guard. The guard is released on every path.
func (g *Generator) GenerateNext(ctx context.Context) (string, error) {
	if err := g.acquire(ctx); err != nil {
		g.failures.Add(ctx, 1)
		g.logger.WarnContext(ctx, "Product ID guard not acquired", "error", err)
		return "", err
	}
	defer g.guard.Release()

	// Once the guard is held the cycle runs to completion. A commit cut short by
	// a canceled request may still land on the server and burn the value.
	value, err := g.next(context.WithoutCancel(ctx))
	if err != nil {
		g.failures.Add(ctx, 1)
		g.logger.ErrorContext(ctx, "Product ID generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerateID, err)
	}
	g.generated.Add(ctx, 1)
	id := strconv.FormatInt(value, 10)
	g.logger.DebugContext(ctx, "Product ID generated", "product_id", id)
	return id, nil
}

func (g *Generator) acquire(ctx context.Context) error {
	waitCtx := ctx
	if g.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.acquireTimeout)
		defer cancel()
	}
	start := time.Now()
	err := g.guard.Acquire(waitCtx)
	g.guardWait.Record(ctx, float64(time.Since(start).Microseconds())/1e3)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGuardTimeout, err)
	}
	return nil
}

// next runs one read-increment-persist cycle. The caller must hold the guard.
func (g *Generator) next(ctx context.Context) (value int64, err error) {
	tx, err := g.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			g.logger.WarnContext(ctx, "Counter rollback failed", "error", rbErr)
		}
	}()

	counter, err := tx.LoadSingleton(ctx)
	switch {
	case errors.Is(err, ErrCounterNotFound):
		counter = &Counter{LastGeneratedID: Baseline + 1}
		if err = tx.Insert(ctx, *counter); err != nil {
			return 0, fmt.Errorf("insert counter: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("load counter: %w", err)
	default:
		counter.LastGeneratedID++
		if err = tx.Update(ctx, *counter); err != nil {
			return 0, fmt.Errorf("update counter: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit counter: %w", err)
	}
	return counter.LastGeneratedID, nil
}
