package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/okian/quakeml/internal/adapters/http/api"
	service "github.com/okian/quakeml/internal/app"
	"github.com/okian/quakeml/internal/domain/automl"
	"github.com/okian/quakeml/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// stubPredictor is a fixed model used in place of a trained handle.
type stubPredictor struct {
	value    float64
	err      error
	notReady bool
	lb       automl.Leaderboard
	lastRow  map[string]float64
}

func (p *stubPredictor) Predict(_ context.Context, row map[string]float64) (float64, error) {
	p.lastRow = row
	return p.value, p.err
}

func (p *stubPredictor) Features() []string {
	return []string{"longitude", "latitude", "depth", "time"}
}

func (p *stubPredictor) Leaderboard() automl.Leaderboard { return p.lb }

func (p *stubPredictor) CheckReadiness(context.Context) error {
	if p.notReady {
		return service.ErrNotReady
	}
	return nil
}

type stubStats struct{}

func (stubStats) Stats() service.Stats {
	return service.Stats{Fetched: 10, Dropped: 1, TrainRows: 7, HoldoutRows: 2, Models: 3, LeaderID: "GBM_1_AutoML_x", SortMetric: "rmse"}
}

func (stubStats) HoldoutMetrics() automl.Metrics {
	return automl.Metrics{RMSE: 0.25, MAE: 0.2, R2: 0.5}
}

func newMux(p api.Predictor, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	opts = append([]api.Option{api.WithLogger(logger.NewNop())}, opts...)
	api.NewServer(p, opts...).Register(context.Background(), mux)
	return mux
}

func postForm(mux http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"longitude":  {"140.0"},
		"latitude":   {"35.0"},
		"depth":      {"10.0"},
		"time_input": {"2025-08-15 12:00:00"},
	}
}

func TestIndex(t *testing.T) {
	Convey("Given a server with a model", t, func() {
		mux := newMux(&stubPredictor{})

		Convey("When requesting the form page", func() {
			w := get(mux, "/")

			Convey("Then it lists every feature name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				for _, f := range []string{"longitude", "latitude", "depth", "time"} {
					So(w.Body.String(), ShouldContainSubstring, "<code>"+f+"</code>")
				}
			})
		})

		Convey("When requesting an unknown path", func() {
			So(get(mux, "/nope").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a server with a model predicting 5.4321", t, func() {
		p := &stubPredictor{value: 5.4321}
		mux := newMux(p)

		Convey("When submitting a valid form", func() {
			w := postForm(mux, validForm())

			Convey("Then the result page shows two decimals", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, ">5.43<")
				So(regexp.MustCompile(`>\d+\.\d{2}<`).MatchString(w.Body.String()), ShouldBeTrue)
			})

			Convey("And the model receives the training feature names", func() {
				want := float64(time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC).Unix())
				So(p.lastRow, ShouldResemble, map[string]float64{
					"longitude": 140,
					"latitude":  35,
					"depth":     10,
					"time":      want,
				})
			})
		})

		Convey("When the time is malformed", func() {
			form := validForm()
			form.Set("time_input", "not-a-date")
			w := postForm(mux, form)

			Convey("Then the error page is returned with a body", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.Len(), ShouldBeGreaterThan, 0)
				So(w.Body.String(), ShouldContainSubstring, "Time must look like YYYY-MM-DD HH:MM:SS.")
				So(w.Body.String(), ShouldContainSubstring, "not-a-date")
			})
		})

		Convey("When a field is missing", func() {
			form := validForm()
			form.Del("depth")
			w := postForm(mux, form)

			Convey("Then the error page names it", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Please fill in every field.")
				So(w.Body.String(), ShouldContainSubstring, "depth")
			})
		})

		Convey("When a coordinate is not a number", func() {
			form := validForm()
			form.Set("latitude", "north")
			w := postForm(mux, form)

			Convey("Then the error page explains it", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Coordinates and depth must be numbers.")
			})
		})

		Convey("When the form is submitted with GET", func() {
			w := get(mux, "/predict")

			Convey("Then the method is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})

	Convey("Given a model that fails", t, func() {
		mux := newMux(&stubPredictor{err: errors.New("model exploded")})
		w := postForm(mux, validForm())

		Convey("Then the error page carries the failure with status 500", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "model exploded")
		})
	})

	Convey("Given no model", t, func() {
		mux := newMux(nil)
		w := postForm(mux, validForm())

		Convey("Then predictions are unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "not ready")
		})
	})
}

func TestLeaderboard(t *testing.T) {
	Convey("Given a leaderboard with extra and missing columns", t, func() {
		p := &stubPredictor{lb: automl.Leaderboard{
			Columns: []string{"r2", "training_time_ms", "model_id", "mse", "algo"},
			Rows: [][]any{
				{0.5, int64(12), "GLM_1_AutoML_x", 0.1, "GLM"},
				{0.25, int64(40), "GBM_1_AutoML_x", 0.2, "GBM"},
			},
		}}
		mux := newMux(p)

		Convey("When requesting the leaderboard", func() {
			w := get(mux, "/leaderboard")
			body := w.Body.String()

			Convey("Then only whitelisted columns are shown in the fixed order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "<th>model_id</th><th>algo</th><th>r2</th>")
				So(body, ShouldNotContainSubstring, "mse")
				So(body, ShouldNotContainSubstring, "training_time_ms")
			})

			Convey("And rows keep leaderboard order", func() {
				So(strings.Index(body, "GLM_1_AutoML_x"), ShouldBeLessThan, strings.Index(body, "GBM_1_AutoML_x"))
				So(body, ShouldContainSubstring, "<td>GLM_1_AutoML_x</td><td>GLM</td><td>0.500000</td>")
			})
		})
	})

	Convey("Given a model that is not ready", t, func() {
		w := get(newMux(&stubPredictor{notReady: true}), "/leaderboard")

		Convey("Then the page reports it", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.Len(), ShouldBeGreaterThan, 0)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given a ready server", t, func() {
		mux := newMux(&stubPredictor{}, api.WithStats(stubStats{}))

		Convey("Then /healthz reports healthy", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"status":"healthy"}`)
		})

		Convey("And /readyz reports ready", func() {
			So(get(mux, "/readyz").Code, ShouldEqual, http.StatusOK)
		})

		Convey("And /stats reports dataset and holdout figures", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["leader_id"], ShouldEqual, "GBM_1_AutoML_x")
			So(body["train_rows"], ShouldEqual, 7.0)
			So(body["holdout"].(map[string]any)["rmse"], ShouldEqual, 0.25)
			So(body["holdout"].(map[string]any)["rmsle"], ShouldEqual, 0.0)
		})

		Convey("And /metrics exposes the HTTP counters", func() {
			get(mux, "/healthz")
			w := get(mux, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "quakeml_http_requests_total")
		})
	})

	Convey("Given a server without a model", t, func() {
		mux := newMux(nil)

		Convey("Then /readyz is unavailable and /healthz still healthy", func() {
			So(get(mux, "/readyz").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(get(mux, "/healthz").Code, ShouldEqual, http.StatusOK)
			So(get(mux, "/stats").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() {
			api.NewServer(nil, api.WithLogger(logger.NewNop())).Register(context.Background(), nil)
		}, ShouldPanic)
	})
}
