package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	minFetchBytes = 10e3
	maxFetchBytes = 10e6
	fetchBackoff  = time.Second
)

// Consumer reads activity events from Kafka into a Buffer.
type Consumer struct {
	reader *kafka.Reader
	buffer *Buffer
	logger *slog.Logger
}

// NewConsumer creates a consumer for the configured topic. The group ID lets
// multiple service instances split partitions instead of duplicating work.
func NewConsumer(cfg *Config, buffer *Buffer, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: minFetchBytes,
			MaxBytes: maxFetchBytes,
		}),
		buffer: buffer,
		logger: logger,
	}
}

// Run consumes until the context is cancelled. Offsets commit only after the
// event is buffered, so a crash re-delivers rather than loses events. A
// payload that cannot be decoded is committed anyway: redelivering malformed
// JSON can never succeed.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("kafka consumer started",
		"topic", c.reader.Config().Topic,
		"group_id", c.reader.Config().GroupID)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("kafka consumer stopping")

				return
			}

			c.logger.Warn("fetching message failed", "error", err)
			time.Sleep(fetchBackoff)

			continue
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable activity event",
				"offset", msg.Offset,
				"partition", msg.Partition,
				"error", err)
		} else {
			c.buffer.Append(event)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}

			c.logger.Warn("committing offset failed", "offset", msg.Offset, "error", err)
		}
	}
}

// Close disconnects from the brokers.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
