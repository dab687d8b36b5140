package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message represents a Kafka message.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer publishes messages through one lazily created writer per topic.
type Producer struct {
	transport *kafkago.Transport
	writers   map[string]*kafkago.Writer
	brokers   []string
	mu        sync.Mutex
}

// NewProducer creates a Producer. It fails only on an invalid SASL setup;
// brokers are not contacted until the first Publish.
func NewProducer(cfg Config) (*Producer, error) {
	mech, err := cfg.mechanism()
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Producer{
		transport: &kafkago.Transport{TLS: cfg.tlsConfig(), SASL: mech},
		writers:   make(map[string]*kafkago.Writer),
		brokers:   cfg.Brokers,
	}, nil
}

// Publish writes messages to topic and waits for every in-sync replica.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w := p.writer(topic)

	out := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		out[i] = kafkago.Message{Key: msg.Key, Value: msg.Value}
		for k, v := range msg.Headers {
			out[i].Headers = append(out[i].Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
	}

	if err := w.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

func (p *Producer) writer(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              p.transport,
	}
	p.writers[topic] = w
	return w
}
