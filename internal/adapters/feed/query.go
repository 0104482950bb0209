package feed

import (
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
)

// Query is the FDSN event filter sent to the provider.
type Query struct {
	StartTime    string // YYYY-MM-DD
	EndTime      string // YYYY-MM-DD
	MinMagnitude float64
	// Region is the epicentre bounding box; Min is (minlon, minlat).
	Region orb.Bound
}

// DefaultQuery covers August 2025, M4+, from the Middle East to the western Pacific.
func DefaultQuery() Query {
	return Query{
		StartTime:    "2025-08-01",
		EndTime:      "2025-09-01",
		MinMagnitude: 4,
		Region: orb.Bound{
			Min: orb.Point{25, -1},
			Max: orb.Point{180, 80},
		},
	}
}

// Values renders the query as FDSN URL parameters.
func (q Query) Values() url.Values {
	return url.Values{
		"format":       {"geojson"},
		"starttime":    {q.StartTime},
		"endtime":      {q.EndTime},
		"minmagnitude": {formatFloat(q.MinMagnitude)},
		"minlatitude":  {formatFloat(q.Region.Min.Lat())},
		"maxlatitude":  {formatFloat(q.Region.Max.Lat())},
		"minlongitude": {formatFloat(q.Region.Min.Lon())},
		"maxlongitude": {formatFloat(q.Region.Max.Lon())},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
