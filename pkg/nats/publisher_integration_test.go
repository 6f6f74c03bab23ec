package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// PublisherSuite publishes product events into a real JetStream server.
type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublishProductEvents() {
	// given
	stream := "PRODUCTS-" + uuid.NewString()
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, stream))
	// ensuring twice updates in place
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, stream))

	publisher := messaging.NewBreakerPublisher(
		NewNatsPublisher(s.js, config.RetryConfig{MaxAttempts: 2, InitialBackoff: 50 * time.Millisecond}),
		config.CircuitBreakerConfig{ConsecutiveFailures: 5, ErrorRatePercent: 50, OpenTimeout: time.Second},
	)
	created := events.ProductCreatedEvent{ProductID: "100001", Name: "Lamp", Price: 2500, StockAvailable: 3, CreatedAt: time.Now().UTC()}
	changed := events.StockChangedEvent{ProductID: "100001", Delta: -1, StockAvailable: 2, ChangedAt: time.Now().UTC()}

	// when
	require.NoError(s.T(), publisher.Publish(s.ctx, created))
	require.NoError(s.T(), publisher.Publish(s.ctx, changed))

	// then
	consumer, err := s.js.CreateOrUpdateConsumer(s.ctx, stream, jetstream.ConsumerConfig{
		Durable:       "CHECK-" + uuid.NewString(),
		FilterSubject: messaging.ProductsSubjects,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	require.NoError(s.T(), err)
	batch, err := consumer.Fetch(2, jetstream.FetchMaxWait(5*time.Second))
	require.NoError(s.T(), err)

	var subjects []string
	for msg := range batch.Messages() {
		subjects = append(subjects, msg.Subject())
		if msg.Subject() == messaging.ProductsCreatedSubject {
			var got events.ProductCreatedEvent
			require.NoError(s.T(), json.Unmarshal(msg.Data(), &got))
			require.Equal(s.T(), "100001", got.ProductID)
		}
		require.NoError(s.T(), msg.Ack())
	}
	require.NoError(s.T(), batch.Error())
	require.Equal(s.T(), []string{messaging.ProductsCreatedSubject, messaging.ProductsStockChangedSubject}, subjects)
}

func (s *PublisherSuite) TestPublishWithoutStream() {
	// a subject no stream listens on gets no JetStream ack
	publisher := NewNatsPublisher(s.js, config.RetryConfig{MaxAttempts: 1, InitialBackoff: 10 * time.Millisecond})
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	err := publisher.Publish(ctx, orphanEvent{})

	require.Error(s.T(), err)
}

type orphanEvent struct{}

func (orphanEvent) Subject() string          { return "orphans." + uuid.NewString() }
func (orphanEvent) Payload() ([]byte, error) { return []byte("{}"), nil }
