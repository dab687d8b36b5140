package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

const (
	serviceName  = "stroke-service"
	maxBodyBytes = 64 << 10
)

// PredictionHandler serves inference and model reload over HTTP.
type PredictionHandler struct {
	predict *usecase.PredictStroke
	reload  *usecase.ReloadModel
	logger  *slog.Logger
}

// NewPredictionHandler creates a new HTTP prediction handler.
func NewPredictionHandler(predict *usecase.PredictStroke, reload *usecase.ReloadModel, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predict: predict, reload: reload, logger: logger}
}

// RegisterRoutes registers the prediction endpoints on mux.
func (h *PredictionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /admin/reload", h.Reload)
}

// Predict scores the JSON record in the request body. The body is a flat
// object of column name to value.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var features map[string]any
	if err := dec.Decode(&features); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if len(features) == 0 {
		writeError(w, http.StatusBadRequest, "record has no columns")
		return
	}

	resp, err := h.predict.Execute(r.Context(), dto.PredictionRequest{Features: features})
	if err != nil {
		h.fail(w, r, "predict", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reload swaps in the latest artifact from the configured source.
func (h *PredictionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reload.Execute(r.Context())
	if err != nil {
		h.fail(w, r, "reload", err)
		return
	}
	h.logger.InfoContext(r.Context(), "model reloaded", slog.String("checksum", resp.Checksum))
	writeJSON(w, http.StatusOK, resp)
}

func (h *PredictionHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrSchemaMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotFitted):
		writeError(w, http.StatusServiceUnavailable, "no model loaded")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("op", op), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
