package nats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// Handler processes one message. A returned error naks the message so it is redelivered.
type Handler func(ctx context.Context, subject string, data []byte) error

// ackableMsg is the part of jetstream.Msg used by the subscriber.
type ackableMsg interface {
	Subject() string
	Data() []byte
	Ack() error
	Nak() error
}

// Subscribe creates or updates a durable pull consumer and runs cfg.Workers workers
// feeding handler until ctx is cancelled.
func Subscribe(ctx context.Context, js jetstream.JetStream, cfg config.SubscriberConfig, handler Handler, logger *slog.Logger) error {
	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for range cfg.Workers {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, handler, logger)
		})
	}
	return g.Wait()
}

// runWorker fetches message batches until ctx is done.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, handler Handler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, handler, logger)
			}
		}
	}
}

func handleMessage(ctx context.Context, msg ackableMsg, handler Handler, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "received nil message")
		return
	}
	if err := handler(ctx, msg.Subject(), msg.Data()); err != nil {
		logger.ErrorContext(ctx, "failed to handle message", "error", err, "subject", msg.Subject())
		if err := msg.Nak(); err != nil {
			logger.ErrorContext(ctx, "failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}
