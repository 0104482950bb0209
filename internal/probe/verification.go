package probe

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	resultPattern = regexp.MustCompile(`<p class="result">(-?\d+\.\d{2})</p>`)
	headerPattern = regexp.MustCompile(`<th>([^<]*)</th>`)
	rowPattern    = regexp.MustCompile(`<tr>\s*<td>`)
)

// leaderboardColumns is the fixed column order of the leaderboard page.
var leaderboardColumns = []string{"model_id", "algo", "rmse", "mae", "r2"}

// checkPrediction reports whether a /predict response matches the form.
func checkPrediction(f Form, status int, body string) bool {
	if f.Valid {
		return status == http.StatusOK && resultPattern.MatchString(body)
	}
	return status == http.StatusBadRequest && strings.TrimSpace(body) != ""
}

// parseLeaderboard extracts header names and the number of data rows.
func parseLeaderboard(body string) ([]string, int) {
	var cols []string
	for _, m := range headerPattern.FindAllStringSubmatch(body, -1) {
		cols = append(cols, strings.TrimSpace(m[1]))
	}
	return cols, len(rowPattern.FindAllStringIndex(body, -1))
}

// orderedSubset reports whether cols appear in leaderboardColumns in the
// same relative order.
func orderedSubset(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	j := 0
	for _, c := range cols {
		for j < len(leaderboardColumns) && leaderboardColumns[j] != c {
			j++
		}
		if j == len(leaderboardColumns) {
			return false
		}
		j++
	}
	return true
}
