package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message. A returned error is logged
// and the message is left uncommitted.
type Handler func(ctx context.Context, msg Message) error

// Consumer feeds messages from one topic to a Handler.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger
}

// NewConsumer creates a Consumer for topic in cfg.ConsumerGroup. A group
// seeing the topic for the first time starts at the newest offset.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("kafka consumer: consumer group is required")
	}
	mech, err := cfg.mechanism()
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	readerCfg := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		StartOffset: kafkago.LastOffset,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	}
	if tlsCfg := cfg.tlsConfig(); tlsCfg != nil || mech != nil {
		readerCfg.Dialer = &kafkago.Dialer{TLS: tlsCfg, SASLMechanism: mech}
	}

	return &Consumer{
		reader:  kafkago.NewReader(readerCfg),
		handler: handler,
		logger:  logger,
	}, nil
}

// Start consumes until ctx is canceled, which is not treated as an error.
func (c *Consumer) Start(ctx context.Context) error {
	rc := c.reader.Config()
	c.logger.Info("consumer starting", "topic", rc.Topic, "group", rc.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", rc.Topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handler(ctx, toMessage(m)); err != nil {
			c.logger.Error("handler error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}

func toMessage(m kafkago.Message) Message {
	msg := Message{Key: m.Key, Value: m.Value}
	if len(m.Headers) > 0 {
		msg.Headers = make(map[string]string, len(m.Headers))
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}
	}
	return msg
}
