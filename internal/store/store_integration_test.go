package store

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/idgen"
	"github.com/abgdnv/inventory/internal/store/db"
	"github.com/abgdnv/inventory/internal/store/migrations"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// StoreSuite runs PgStore and PgCounterStore against a real PostgreSQL.
type StoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	counters    *PgCounterStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait until it accepts connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 2. Pool, with a few pings while the server finishes starting.
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 3. Same embedded migrations the service applies at startup.
	require.NoError(s.T(), bootstrap.Migrate(migrations.FS, ".", connStr, s.logger), "Failed to apply migrations")

	s.store = NewPgStore(s.dbPool)
	s.counters = NewPgCounterStore(s.dbPool)
}

func (s *StoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

func (s *StoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products, product_id_tracker")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) createTestProduct(id string, stock int32) *db.Product {
	s.T().Helper()
	p, err := s.store.Create(s.ctx, db.CreateParams{
		ProductID:      id,
		Name:           "Widget " + id,
		Description:    "A widget",
		Price:          1999,
		StockAvailable: stock,
	})
	require.NoError(s.T(), err, "createTestProduct helper failed")
	return p
}

func (s *StoreSuite) TestCreateAndFind() {
	// given
	created := s.createTestProduct("100001", 5)

	// when
	found, err := s.store.FindByID(s.ctx, "100001")

	// then
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ProductID, found.ProductID)
	require.Equal(s.T(), "Widget 100001", found.Name)
	require.Equal(s.T(), int64(1999), found.Price)
	require.Equal(s.T(), int32(5), found.StockAvailable)
	require.WithinDuration(s.T(), created.CreatedAt, found.CreatedAt, time.Second)
}

func (s *StoreSuite) TestCreate_DuplicateID() {
	s.createTestProduct("100001", 1)

	_, err := s.store.Create(s.ctx, db.CreateParams{ProductID: "100001", Name: "Other", Price: 1})

	require.ErrorIs(s.T(), err, perrors.ErrDuplicateProductID)
}

func (s *StoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, "999999")
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *StoreSuite) TestFindAll() {
	for _, id := range []string{"100001", "100002", "100003"} {
		s.createTestProduct(id, 1)
	}

	testCases := []struct {
		name     string
		offset   int32
		limit    int32
		expected []string
	}{
		{name: "first page", offset: 0, limit: 2, expected: []string{"100003", "100002"}},
		{name: "second page", offset: 2, limit: 2, expected: []string{"100001"}},
		{name: "past the end", offset: 10, limit: 2, expected: []string{}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			products, err := s.store.FindAll(s.ctx, tc.offset, tc.limit)
			require.NoError(s.T(), err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ProductID)
			}
			require.Equal(s.T(), tc.expected, ids)
		})
	}
}

func (s *StoreSuite) TestUpdate() {
	s.createTestProduct("100001", 1)

	updated, err := s.store.Update(s.ctx, db.UpdateParams{
		ProductID:      "100001",
		Name:           "Renamed",
		Description:    "New",
		Price:          50,
		StockAvailable: 9,
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Renamed", updated.Name)
	require.Equal(s.T(), int32(9), updated.StockAvailable)

	_, err = s.store.Update(s.ctx, db.UpdateParams{ProductID: "999999", Name: "x"})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *StoreSuite) TestDeleteByID() {
	s.createTestProduct("100001", 1)

	require.NoError(s.T(), s.store.DeleteByID(s.ctx, "100001"))
	require.ErrorIs(s.T(), s.store.DeleteByID(s.ctx, "100001"), perrors.ErrProductNotFound)
}

func (s *StoreSuite) TestStockChanges() {
	testCases := []struct {
		name        string
		id          string
		decrement   int32
		expected    int32
		expectedErr error
	}{
		{name: "Success - partial", id: "100001", decrement: 3, expected: 2},
		{name: "Success - all of it", id: "100001", decrement: 5, expected: 0},
		{name: "Error - insufficient", id: "100001", decrement: 6, expectedErr: perrors.ErrInsufficientStock},
		{name: "Error - not found", id: "999999", decrement: 1, expectedErr: perrors.ErrProductNotFound},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.createTestProduct("100001", 5)

			p, err := s.store.DecrementStock(s.ctx, tc.id, tc.decrement)

			if tc.expectedErr != nil {
				require.ErrorIs(s.T(), err, tc.expectedErr)
				unchanged, findErr := s.store.FindByID(s.ctx, "100001")
				require.NoError(s.T(), findErr)
				require.Equal(s.T(), int32(5), unchanged.StockAvailable)
				return
			}
			require.NoError(s.T(), err)
			require.Equal(s.T(), tc.expected, p.StockAvailable)
		})
	}

	s.Run("AddStock", func() {
		s.SetupTest()
		s.createTestProduct("100001", 5)
		p, err := s.store.AddStock(s.ctx, "100001", 7)
		require.NoError(s.T(), err)
		require.Equal(s.T(), int32(12), p.StockAvailable)

		_, err = s.store.AddStock(s.ctx, "999999", 1)
		require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	})

	s.Run("AddStock overflow", func() {
		s.SetupTest()
		s.createTestProduct("100001", math.MaxInt32-1)

		_, err := s.store.AddStock(s.ctx, "100001", 2)

		require.ErrorIs(s.T(), err, perrors.ErrInvalidQuantity)
		unchanged, err := s.store.FindByID(s.ctx, "100001")
		require.NoError(s.T(), err)
		require.Equal(s.T(), int32(math.MaxInt32-1), unchanged.StockAvailable)
	})
}

func (s *StoreSuite) TestConcurrentDecrement_NeverNegative() {
	s.createTestProduct("100001", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.DecrementStock(s.ctx, "100001", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	p, err := s.store.FindByID(s.ctx, "100001")
	require.NoError(s.T(), err)
	require.Equal(s.T(), 10, succeeded)
	require.Equal(s.T(), int32(0), p.StockAvailable)
}

func (s *StoreSuite) TestGenerator_SequenceAndSingleton() {
	gen := idgen.NewGenerator(s.counters, idgen.WithGuard(idgen.NewGuard()))

	for _, expected := range []string{"100001", "100002", "100003"} {
		id, err := gen.GenerateNext(s.ctx)
		require.NoError(s.T(), err)
		require.Equal(s.T(), expected, id)

		count, err := s.counters.q.CountCounters(s.ctx)
		require.NoError(s.T(), err)
		require.Equal(s.T(), int64(1), count)

		var stored int64
		require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT last_generated_id FROM product_id_tracker").Scan(&stored))
		require.Equal(s.T(), expected, strconv.FormatInt(stored, 10))
	}
}

func (s *StoreSuite) TestGenerator_Concurrent() {
	testCases := []struct {
		name  string
		store *PgCounterStore
	}{
		{name: "in-process guard", store: s.counters},
		{name: "with advisory lock", store: NewPgCounterStore(s.dbPool, WithAdvisoryLock(42))},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			gen := idgen.NewGenerator(tc.store, idgen.WithGuard(idgen.NewGuard()))

			values := make([]int, 10)
			var wg sync.WaitGroup
			for i := range values {
				wg.Add(1)
				go func() {
					defer wg.Done()
					id, err := gen.GenerateNext(s.ctx)
					s.NoError(err)
					values[i], _ = strconv.Atoi(id)
				}()
			}
			wg.Wait()

			sort.Ints(values)
			require.Equal(s.T(), []int{100001, 100002, 100003, 100004, 100005, 100006, 100007, 100008, 100009, 100010}, values)
		})
	}
}

// Two generators with separate guards stand in for two processes; only the advisory lock keeps them apart.
func (s *StoreSuite) TestGenerator_AdvisoryLockAcrossGuards() {
	lockStore := NewPgCounterStore(s.dbPool, WithAdvisoryLock(42))
	first := idgen.NewGenerator(lockStore, idgen.WithGuard(idgen.NewGuard()))
	second := idgen.NewGenerator(lockStore, idgen.WithGuard(idgen.NewGuard()))

	// seed the row so both sides take the update path
	_, err := first.GenerateNext(s.ctx)
	require.NoError(s.T(), err)

	seen := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := range 20 {
		gen := first
		if i%2 == 1 {
			gen = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen.GenerateNext(s.ctx)
			s.NoError(err)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(s.T(), seen, 20)
	var stored int64
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT last_generated_id FROM product_id_tracker").Scan(&stored))
	require.Equal(s.T(), int64(100021), stored)
}
