package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/resolution/engine"
	"github.com/pronotracker/resolution-engine/internal/resolution/model"
	"github.com/pronotracker/resolution-engine/pkg/contracts/events"
)

// API expõe o gatilho manual de resolução e a correção de operador.
// O passe agendado continua rodando por conta própria; esses endpoints
// são ferramenta de back-office.
type API struct {
	Log    *zap.Logger
	Engine interface {
		RunPass(ctx context.Context) (engine.Stats, error)
	}
	Corrector interface {
		Correct(ctx context.Context, id, status, note string) (int64, error)
	}
	Pub interface {
		PublishResolved(ctx context.Context, e events.PredictionResolved) error
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/check-results", a.checkResults)
	r.Post("/v1/predictions/{id}/correct", a.correct)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) checkResults(w http.ResponseWriter, r *http.Request) {
	// sem contexto do request: o passe continua mesmo se o admin desistir
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := a.Engine.RunPass(ctx)
	if err != nil {
		a.Log.Error("manual pass failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type correctRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type correctResponse struct {
	PredictionID string `json:"predictionId"`
	Status       string `json:"status"`
	UserBets     int64  `json:"userBets"`
}

func (a *API) correct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))

	switch req.Status {
	case model.StatusWon, model.StatusLost, model.StatusVoid:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be WON, LOST or VOID"})
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "note required"})
		return
	}

	affected, err := a.Corrector.Correct(r.Context(), id, req.Status, req.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "prediction not found"})
			return
		}
		a.Log.Error("correction failed", zap.String("prediction_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := a.Pub.PublishResolved(r.Context(), events.PredictionResolved{
		PredictionID: id,
		Status:       req.Status,
		UserBets:     affected,
		Corrected:    true,
	}); err != nil {
		a.Log.Warn("publish corrected failed", zap.String("prediction_id", id), zap.Error(err))
	}

	a.Log.Info("prediction corrected",
		zap.String("prediction_id", id),
		zap.String("status", req.Status),
		zap.Int64("user_bets", affected),
	)
	writeJSON(w, http.StatusOK, correctResponse{PredictionID: id, Status: req.Status, UserBets: affected})
}
