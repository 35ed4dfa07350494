package nats

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// JetStreamSuite runs the publisher and the subscriber against a real NATS server.
type JetStreamSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *JetStreamSuite) SetupSuite() {
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

func (s *JetStreamSuite) TearDownSuite() {
	s.nc.Close()
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestJetStreamIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(JetStreamSuite))
}

// received collects handled payloads.
type received struct {
	mu       sync.Mutex
	payloads []string
	attempts int
}

func (r *received) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...), r.attempts
}

func (s *JetStreamSuite) TestPublishAndSubscribe() {
	// given
	stream := "STREAM-" + uuid.NewString()
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, stream, testEvent{}.Subject()))
	s.T().Cleanup(func() { _ = s.js.DeleteStream(context.Background(), stream) })

	cfg := config.SubscriberConfig{
		Stream:   stream,
		Subject:  testEvent{}.Subject(),
		Consumer: "CONSUMER-" + uuid.NewString(),
		Batch:    5,
		Timeout:  500 * time.Millisecond,
		Interval: 100 * time.Millisecond,
		Workers:  2,
	}

	// the first delivery of "retry" fails and must come back after the nak
	var r received
	failedOnce := false
	handler := func(_ context.Context, subject string, data []byte) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.attempts++
		if string(data) == "retry" && !failedOnce {
			failedOnce = true
			return errors.New("temporary failure")
		}
		r.payloads = append(r.payloads, string(data))
		return nil
	}

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- Subscribe(ctx, s.js, cfg, handler, s.logger) }()

	// when
	publisher := NewNatsPublisher(s.js)
	require.NoError(s.T(), publisher.Publish(s.ctx, testEvent{payload: []byte("first")}))
	require.NoError(s.T(), publisher.Publish(s.ctx, testEvent{payload: []byte("retry")}))

	// then
	require.Eventually(s.T(), func() bool {
		payloads, _ := r.snapshot()
		return len(payloads) == 2
	}, 10*time.Second, 100*time.Millisecond)

	payloads, attempts := r.snapshot()
	s.ElementsMatch([]string{"first", "retry"}, payloads)
	s.Equal(3, attempts)

	require.Eventually(s.T(), func() bool {
		info, err := s.js.Consumer(s.ctx, stream, cfg.Consumer)
		if err != nil {
			return false
		}
		ci, err := info.Info(s.ctx)
		return err == nil && ci.NumAckPending == 0 && ci.NumPending == 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	s.ErrorIs(<-done, context.Canceled)
}
