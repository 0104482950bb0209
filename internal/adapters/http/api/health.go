package api

import (
	"math"
	"net/http"
	"time"
)

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleHealth handles GET /healthz. It reports liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

// handleReady handles GET /readyz.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if err := s.ready(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not_ready", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

type statsResponse struct {
	Fetched     int       `json:"fetched"`
	Dropped     int       `json:"dropped"`
	TrainRows   int       `json:"train_rows"`
	HoldoutRows int       `json:"holdout_rows"`
	Models      int       `json:"models"`
	LeaderID    string    `json:"leader_id"`
	SortMetric  string    `json:"sort_metric"`
	TrainedAt   time.Time `json:"trained_at"`
	DurationMs  int64     `json:"training_duration_ms"`
	Holdout     struct {
		RMSE  *float64 `json:"rmse"`
		MAE   *float64 `json:"mae"`
		R2    *float64 `json:"r2"`
		RMSLE *float64 `json:"rmsle"`
	} `json:"holdout"`
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not_ready"})
		return
	}
	st := s.stats.Stats()
	m := s.stats.HoldoutMetrics()

	resp := statsResponse{
		Fetched:     st.Fetched,
		Dropped:     st.Dropped,
		TrainRows:   st.TrainRows,
		HoldoutRows: st.HoldoutRows,
		Models:      st.Models,
		LeaderID:    st.LeaderID,
		SortMetric:  st.SortMetric,
		TrainedAt:   st.TrainedAt,
		DurationMs:  st.Duration.Milliseconds(),
	}
	if st.HoldoutRows > 0 {
		resp.Holdout.RMSE = finite(m.RMSE)
		resp.Holdout.MAE = finite(m.MAE)
		resp.Holdout.R2 = finite(m.R2)
		resp.Holdout.RMSLE = finite(m.RMSLE)
	}
	writeJSON(w, http.StatusOK, resp)
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
