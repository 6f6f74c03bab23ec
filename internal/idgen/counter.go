package idgen

import (
	"context"
	"errors"
)

// Baseline is the counter value a fresh store starts from. The first issued ID is Baseline+1.
const Baseline int64 = 100000

var (
	// ErrGenerateID wraps every failure of the read-increment-persist cycle.
	ErrGenerateID = errors.New("failed to generate product id")
	// ErrGuardTimeout is returned when the guard could not be acquired in time.
	// The counter is left untouched.
	ErrGuardTimeout = errors.New("timed out waiting for product id generator")
	// ErrCounterNotFound is returned by CounterTx.LoadSingleton when no counter row exists yet.
	ErrCounterNotFound = errors.New("product id counter not found")
)

// Counter is the singleton record holding the last issued numeric ID.
type Counter struct {
	LastGeneratedID int64
}

// CounterStore opens units of work against the persisted counter.
type CounterStore interface {
	Begin(ctx context.Context) (CounterTx, error)
}

// CounterTx is one unit of work on the counter. Nothing it writes is visible
// to other readers until Commit returns nil; after that every LoadSingleton
// observes the committed value.
type CounterTx interface {
	// LoadSingleton returns the counter, or ErrCounterNotFound.
	LoadSingleton(ctx context.Context) (*Counter, error)
	Insert(ctx context.Context, c Counter) error
	Update(ctx context.Context, c Counter) error
	Commit(ctx context.Context) error
	// Rollback discards uncommitted writes. It is a no-op after Commit.
	Rollback(ctx context.Context) error
}
