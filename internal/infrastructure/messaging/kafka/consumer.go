package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

var errAlreadyRunning = errors.New(errors.ErrCodeConflict, "refresh consumer already running")

// RefreshHandler reacts to one refresh event.  Handler errors are logged and
// the message is committed anyway; refresh events are idempotent and the
// next event retries the same work.
type RefreshHandler func(ctx context.Context, ev *RefreshEvent) error

// messageReader abstracts kafka.Reader for testing.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RefreshConsumer subscribes to the refresh topic and dispatches events to a
// handler, typically a cache invalidation.
type RefreshConsumer struct {
	reader  messageReader
	handler RefreshHandler
	logger  logging.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRefreshConsumer constructs a consumer from configuration.
func NewRefreshConsumer(cfg config.KafkaConfig, handler RefreshHandler, logger logging.Logger) *RefreshConsumer {
	topic := cfg.RefreshTopic
	if topic == "" {
		topic = TopicCatalogRefreshed
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0, // explicit commits
		StartOffset:    kafka.LastOffset,
		MaxWait:        time.Second,
	})
	return &RefreshConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger.Named("refresh-consumer"),
	}
}

// Start launches the consume loop in a background goroutine.
func (c *RefreshConsumer) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeLoop(loopCtx)
	}()

	c.logger.Info("Refresh consumer started")
	return nil
}

func (c *RefreshConsumer) consumeLoop(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Fetch failed, retrying", logging.Err(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("Commit failed", logging.Err(err))
		}
	}
}

func (c *RefreshConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	ev, err := ParseRefreshEvent(msg.Value)
	if err != nil {
		c.logger.Warn("Discarding malformed refresh event",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err),
		)
		return
	}

	c.logger.Info("Refresh event received",
		logging.String("event_id", ev.EventID),
		logging.String("data_version", ev.DataVersion),
	)
	if err := c.handler(ctx, ev); err != nil {
		c.logger.Error("Refresh handler failed",
			logging.String("event_id", ev.EventID),
			logging.Err(err),
		)
	}
}

// Stop cancels the consume loop and closes the reader.
func (c *RefreshConsumer) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to close kafka reader")
	}
	c.logger.Info("Refresh consumer stopped")
	return nil
}
