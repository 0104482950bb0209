package automl

import "slices"

// Leaderboard column names.
const (
	ColModelID      = "model_id"
	ColRMSE         = "rmse"
	ColMSE          = "mse"
	ColMAE          = "mae"
	ColRMSLE        = "rmsle"
	ColR2           = "r2"
	ColAlgo         = "algo"
	ColTrainingTime = "training_time_ms"
)

// leaderboardColumns is the full column order of a search leaderboard.
var leaderboardColumns = []string{
	ColModelID, ColRMSE, ColMSE, ColMAE, ColRMSLE, ColR2, ColAlgo, ColTrainingTime,
}

// Entry is one ranked candidate.
type Entry struct {
	Model        Model
	Metrics      Metrics
	TrainingTime int64 // milliseconds
}

// Leaderboard is a ranked table of candidates. Row cells are string
// (model_id, algo), float64 (metrics) or int64 (training_time_ms).
type Leaderboard struct {
	Columns []string
	Rows    [][]any
}

func newLeaderboard(entries []Entry) Leaderboard {
	lb := Leaderboard{
		Columns: slices.Clone(leaderboardColumns),
		Rows:    make([][]any, 0, len(entries)),
	}
	for _, e := range entries {
		lb.Rows = append(lb.Rows, []any{
			e.Model.ID(),
			e.Metrics.RMSE,
			e.Metrics.MSE,
			e.Metrics.MAE,
			e.Metrics.RMSLE,
			e.Metrics.R2,
			e.Model.Algo(),
			e.TrainingTime,
		})
	}
	return lb
}

// Len returns the number of rows.
func (lb Leaderboard) Len() int { return len(lb.Rows) }

// Select projects the table onto the requested columns that exist, in the
// requested order. Unknown column names are skipped.
func (lb Leaderboard) Select(columns ...string) Leaderboard {
	idx := make([]int, 0, len(columns))
	out := Leaderboard{Columns: make([]string, 0, len(columns))}
	for _, c := range columns {
		if i := slices.Index(lb.Columns, c); i >= 0 && !slices.Contains(out.Columns, c) {
			idx = append(idx, i)
			out.Columns = append(out.Columns, c)
		}
	}

	out.Rows = make([][]any, len(lb.Rows))
	for r, row := range lb.Rows {
		cells := make([]any, len(idx))
		for k, i := range idx {
			if i < len(row) {
				cells[k] = row[i]
			}
		}
		out.Rows[r] = cells
	}
	return out
}
