package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
)

const (
	// EventTypeModelTrained is emitted when a pipeline has been trained,
	// evaluated and packaged as an artifact.
	EventTypeModelTrained = "stroke.model.trained"

	// AggregateTypeModelArtifact names the aggregate that emits model events.
	AggregateTypeModelArtifact = "ModelArtifact"
)

// ModelTrainedPayload is the wire body of a ModelTrained event.
type ModelTrainedPayload struct {
	ArtifactID   uuid.UUID `json:"artifact_id"`
	Checksum     string    `json:"checksum"`
	MeanAUC      float64   `json:"mean_auc"`
	StdAUC       float64   `json:"std_auc"`
	Folds        int       `json:"folds"`
	TrainingRows int       `json:"training_rows"`
	PositiveRows int       `json:"positive_rows"`
	TrainedAt    time.Time `json:"trained_at"`
}

// ModelTrained announces a new model artifact.
type ModelTrained struct {
	events.BaseEvent
	ModelTrainedPayload
}

// NewModelTrained builds the event and its serialized payload.
func NewModelTrained(p ModelTrainedPayload) ModelTrained {
	body, _ := json.Marshal(p)
	return ModelTrained{
		BaseEvent:           events.NewBaseEvent(EventTypeModelTrained, p.ArtifactID, AggregateTypeModelArtifact, body),
		ModelTrainedPayload: p,
	}
}

// DecodeModelTrained parses a payload produced by NewModelTrained.
func DecodeModelTrained(body []byte) (ModelTrainedPayload, error) {
	var p ModelTrainedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ModelTrainedPayload{}, err
	}
	return p, nil
}
