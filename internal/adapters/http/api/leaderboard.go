package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/quakeml/internal/adapters/http/site"
	"github.com/okian/quakeml/internal/domain/automl"
)

// leaderboardColumns is the fixed display order of the leaderboard page.
var leaderboardColumns = []string{
	automl.ColModelID,
	automl.ColAlgo,
	automl.ColRMSE,
	automl.ColMAE,
	automl.ColR2,
}

// handleLeaderboard handles GET /leaderboard.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if err := s.ready(r.Context()); err != nil {
		s.renderError(w, http.StatusServiceUnavailable, "No leaderboard yet: the model is still training.")
		return
	}
	_ = s.pages.Render(w, http.StatusOK, site.PageLeaderboard, leaderboardView(s.predictor.Leaderboard()))
}

// leaderboardView restricts lb to the display columns it carries.
func leaderboardView(lb automl.Leaderboard) site.LeaderboardView {
	sel := lb.Select(leaderboardColumns...)
	view := site.LeaderboardView{Columns: sel.Columns, Rows: make([][]string, len(sel.Rows))}
	for i, row := range sel.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		view.Rows[i] = cells
	}
	return view
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', 6, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
