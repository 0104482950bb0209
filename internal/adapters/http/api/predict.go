package api

import (
	"fmt"
	"net/http"

	"github.com/okian/quakeml/internal/adapters/http/site"
	"github.com/okian/quakeml/internal/domain/quake"
	"github.com/okian/quakeml/pkg/logger"
	"github.com/okian/quakeml/pkg/metrics"
)

// handleIndex handles GET / and renders the prediction form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	features := quake.Features()
	if s.predictor != nil {
		if f := s.predictor.Features(); len(f) > 0 {
			features = f
		}
	}
	_ = s.pages.Render(w, http.StatusOK, site.PageIndex, site.IndexView{
		Features:   features,
		TimeFormat: timeFormatHint,
	})
}

// handlePredict handles POST /predict.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		metrics.RecordPredictionError("bad_form")
		s.renderError(w, http.StatusBadRequest, fmt.Sprintf("could not read the form: %v", err))
		return
	}

	req, verr := ParsePredictionForm(r.PostForm)
	if verr != nil {
		metrics.RecordPredictionError(verr.Kind.String())
		s.logger.Debug(ctx, "prediction form rejected",
			logger.String("kind", verr.Kind.String()),
			logger.String("field", verr.Field),
		)
		s.renderError(w, http.StatusBadRequest, validationMessage(verr))
		return
	}

	if err := s.ready(ctx); err != nil {
		s.renderError(w, http.StatusServiceUnavailable, "The model is not ready yet. Try again shortly.")
		return
	}

	yhat, err := s.predictor.Predict(ctx, req.Row())
	if err != nil {
		s.logger.Warn(ctx, "prediction failed", logger.Error(err))
		s.renderError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = s.pages.Render(w, http.StatusOK, site.PageResult, site.ResultView{
		Magnitude: fmt.Sprintf("%.2f", yhat),
	})
}

func (s *Server) renderError(w http.ResponseWriter, status int, msg string) {
	_ = s.pages.Render(w, status, site.PageError, site.ErrorView{Message: msg})
}

// validationMessage maps a validation failure to the text shown to the user.
func validationMessage(err *ValidationError) string {
	var prefix string
	switch err.Kind {
	case MissingField:
		prefix = "Please fill in every field."
	case NonNumericField:
		prefix = "Coordinates and depth must be numbers."
	case BadDateFormat:
		prefix = "Time must look like " + timeFormatHint + "."
	default:
		return err.Error()
	}
	return prefix + " (" + err.Error() + ")"
}
