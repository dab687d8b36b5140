package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/event"
)

// Reloader is satisfied by usecase.ReloadModel.
type Reloader interface {
	Execute(ctx context.Context) (dto.ReloadResponse, error)
}

// ReloadListener reloads the serving model whenever a model-trained event
// arrives.
type ReloadListener struct {
	reloader Reloader
	logger   *slog.Logger
}

// NewReloadListener creates a listener driving reloader.
func NewReloadListener(reloader Reloader, logger *slog.Logger) *ReloadListener {
	return &ReloadListener{reloader: reloader, logger: logger}
}

// Handle is a pkg/kafka.Handler. Messages that are not model-trained
// events are skipped without error so they get committed; a failed reload
// is returned so the message is retried after a restart.
func (l *ReloadListener) Handle(ctx context.Context, msg pkgkafka.Message) error {
	env, err := events.UnmarshalEnvelope(msg.Value)
	if err != nil {
		l.logger.WarnContext(ctx, "skipping malformed event", "error", err)
		return nil
	}
	if env.Type != event.EventTypeModelTrained {
		return nil
	}

	payload, err := event.DecodeModelTrained(env.Payload)
	if err != nil {
		l.logger.WarnContext(ctx, "skipping malformed model-trained payload", "event_id", env.ID, "error", err)
		return nil
	}

	resp, err := l.reloader.Execute(ctx)
	if err != nil {
		return fmt.Errorf("reload after artifact %s: %w", payload.ArtifactID, err)
	}

	if resp.Checksum != payload.Checksum {
		// A newer artifact may already be registered.
		l.logger.InfoContext(ctx, "reloaded model differs from announced artifact",
			"announced", payload.Checksum,
			"serving", resp.Checksum,
		)
	} else {
		l.logger.InfoContext(ctx, "model reloaded from event",
			"artifact_id", payload.ArtifactID,
			"mean_auc", payload.MeanAUC,
		)
	}
	return nil
}
