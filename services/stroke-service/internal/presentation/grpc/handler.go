package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// Compile-time assertion that PredictionHandler implements PredictionServiceServer.
var _ PredictionServiceServer = (*PredictionHandler)(nil)

// PredictionHandler implements the gRPC PredictionServiceServer interface.
type PredictionHandler struct {
	UnimplementedPredictionServiceServer
	predict *usecase.PredictStroke
	reload  *usecase.ReloadModel
	logger  *slog.Logger
}

// NewPredictionHandler creates a new gRPC handler.
func NewPredictionHandler(predict *usecase.PredictStroke, reload *usecase.ReloadModel, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predict: predict,
		reload:  reload,
		logger:  logger,
	}
}

// PredictRequest carries one patient record keyed by column name.
type PredictRequest struct {
	Features map[string]any `json:"features"`
}

// PredictResponse is the scored record.
type PredictResponse struct {
	RiskLevel     string  `json:"risk_level"`
	ModelChecksum string  `json:"model_checksum,omitempty"`
	Probability   float64 `json:"probability"`
	Prediction    int32   `json:"prediction"`
}

// ReloadRequest is empty; the source is fixed at startup.
type ReloadRequest struct{}

// ReloadResponse reports the artifact now being served.
type ReloadResponse struct {
	Checksum   string `json:"checksum"`
	ReloadedAt string `json:"reloaded_at"`
}

// Predict scores one record.
func (h *PredictionHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if req == nil || len(req.Features) == 0 {
		return nil, status.Error(codes.InvalidArgument, "features are required")
	}

	result, err := h.predict.Execute(ctx, dto.PredictionRequest{Features: req.Features})
	if err != nil {
		return nil, h.toStatus(ctx, "predict", err)
	}

	return &PredictResponse{
		Prediction:    int32(result.Prediction),
		Probability:   result.Probability,
		RiskLevel:     result.RiskLevel,
		ModelChecksum: result.ModelChecksum,
	}, nil
}

// Reload swaps in the latest artifact.
func (h *PredictionHandler) Reload(ctx context.Context, _ *ReloadRequest) (*ReloadResponse, error) {
	result, err := h.reload.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "reload", err)
	}

	return &ReloadResponse{
		Checksum:   result.Checksum,
		ReloadedAt: result.ReloadedAt.Format(time.RFC3339),
	}, nil
}

func (h *PredictionHandler) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrSchemaMismatch):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFitted):
		return status.Error(codes.FailedPrecondition, "no model loaded")
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.String("op", op), slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}
