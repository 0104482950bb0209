// Package feed fetches earthquake events from an FDSN event web service
// (USGS by default) and decodes the GeoJSON response into records.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/quakeml/internal/domain/quake"
	"github.com/okian/quakeml/pkg/logger"
	"github.com/okian/quakeml/pkg/metrics"
	"github.com/paulmach/orb"
)

const (
	defaultBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"
	defaultTimeout = 30 * time.Second
	// errorBodyLimit caps how much of a failed response is kept in the error.
	errorBodyLimit = 512
)

// Client queries the event service once per Fetch. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	query      Query
	logger     logger.Logger
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		query:      DefaultQuery(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("feed")
	}
	return c
}

// Fetch issues the query and returns one record per feature.
func (c *Client) Fetch(ctx context.Context) ([]quake.Record, error) {
	start := time.Now()
	fullURL := c.baseURL + "?" + c.query.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	c.logger.Info(ctx, "fetching earthquake feed", logger.String("url", fullURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("%w: status %d: %s", ErrStatus, resp.StatusCode, body)
	}

	records, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordFeedFetch(elapsed.Seconds(), len(records))
	c.logger.Info(ctx, "earthquake feed fetched",
		logger.Int("records", len(records)),
		logger.Int("outside_region", c.countOutside(records)),
		logger.Duration("elapsed", elapsed),
	)
	return records, nil
}

// countOutside counts located records whose epicentre falls outside the
// requested region. The provider filters server-side, so a non-zero count
// points at a misbehaving endpoint.
func (c *Client) countOutside(records []quake.Record) int {
	n := 0
	for _, r := range records {
		if r.Longitude == nil || r.Latitude == nil {
			continue
		}
		if !c.query.Region.Contains(orb.Point{*r.Longitude, *r.Latitude}) {
			n++
		}
	}
	return n
}

// Decode parses a GeoJSON FeatureCollection. properties.time is converted
// from milliseconds to seconds; geometry.coordinates are [lon, lat, depth].
func Decode(r io.Reader) ([]quake.Record, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if fc.Features == nil {
		return nil, fmt.Errorf("%w: missing features array", ErrDecode)
	}

	records := make([]quake.Record, len(fc.Features))
	for i, f := range fc.Features {
		rec := quake.Record{Magnitude: f.Properties.Mag}
		if f.Properties.Time != nil {
			secs := *f.Properties.Time / 1000
			rec.Time = &secs
		}
		if f.Geometry != nil {
			coords := f.Geometry.Coordinates
			rec.Longitude = coordAt(coords, 0)
			rec.Latitude = coordAt(coords, 1)
			rec.Depth = coordAt(coords, 2)
		}
		records[i] = rec
	}
	return records, nil
}

func coordAt(coords []*float64, i int) *float64 {
	if i >= len(coords) {
		return nil
	}
	return coords[i]
}

// GeoJSON response types. Pointers distinguish null from zero.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
	Geometry   *geometry  `json:"geometry"`
}

type properties struct {
	Time *float64 `json:"time"` // ms since epoch
	Mag  *float64 `json:"mag"`
}

type geometry struct {
	Coordinates []*float64 `json:"coordinates"` // [lon, lat, depth]
}
