//go:build integration

package messaging_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/testutil"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/messaging"
)

type countingReloader struct{ calls atomic.Int32 }

func (r *countingReloader) Execute(context.Context) (dto.ReloadResponse, error) {
	r.calls.Add(1)
	return dto.ReloadResponse{Checksum: "c0ffee"}, nil
}

func TestPublishAndReload_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	defer kc.Cleanup(t)

	const topic = "stroke.model.trained"
	cfg := pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: "stroked-it"}

	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()
	publisher := messaging.NewKafkaPublisher(producer, topic, discard)

	// Create the topic before the consumer group joins.
	require.NoError(t, publisher.Publish(ctx, modelTrained()))

	reloader := &countingReloader{}
	listener := messaging.NewReloadListener(reloader, discard)
	consumer, err := pkgkafka.NewConsumer(cfg, topic, listener.Handle, discard)
	require.NoError(t, err)
	defer consumer.Close()

	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Start(consumeCtx) }()

	// The group starts at the newest offset, so keep announcing until one
	// event lands after the join.
	require.Eventually(t, func() bool {
		if reloader.calls.Load() > 0 {
			return true
		}
		_ = publisher.Publish(ctx, modelTrained())
		return false
	}, 90*time.Second, 2*time.Second)

	stop()
	require.NoError(t, <-done)
}
