package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// PredictionRequest carries one patient record as decoded from JSON.
// Values may be strings, numbers, booleans or null.
type PredictionRequest struct {
	Features map[string]any
}

// Record converts the JSON values to the string cells the pipeline expects.
// Numbers keep their shortest representation so 0 and 1 match the
// categorical levels seen in training; null becomes a missing cell.
func (r PredictionRequest) Record() (model.Record, error) {
	rec := make(model.Record, len(r.Features))
	for col, v := range r.Features {
		switch val := v.(type) {
		case nil:
			rec[col] = ""
		case string:
			rec[col] = val
		case json.Number:
			rec[col] = val.String()
		case float64:
			rec[col] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			rec[col] = strconv.Itoa(val)
		case bool:
			if val {
				rec[col] = "1"
			} else {
				rec[col] = "0"
			}
		default:
			return nil, fmt.Errorf("column %q: unsupported value of type %T: %w", col, v, service.ErrSchemaMismatch)
		}
	}
	return rec, nil
}

// PredictionResponse is the inference contract: a class label and the
// positive-class probability, plus an advisory risk band.
type PredictionResponse struct {
	RiskLevel     string  `json:"risk_level"`
	ModelChecksum string  `json:"model_checksum,omitempty"`
	Probability   float64 `json:"probability"`
	Prediction    int     `json:"prediction"`
}

// ReloadResponse reports the artifact now serving predictions.
type ReloadResponse struct {
	ReloadedAt time.Time `json:"reloaded_at"`
	Checksum   string    `json:"checksum"`
}
