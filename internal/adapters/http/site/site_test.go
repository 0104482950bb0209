package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderer(t *testing.T) {
	Convey("Given a renderer over the embedded pages", t, func() {
		r, err := NewRenderer()
		So(err, ShouldBeNil)

		Convey("When rendering the form page", func() {
			w := httptest.NewRecorder()
			err := r.Render(w, http.StatusOK, PageIndex, IndexView{Features: []string{"longitude", "time"}, TimeFormat: "YYYY-MM-DD HH:MM:SS"})

			Convey("Then it lists the features inside the layout", func() {
				So(err, ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "<code>longitude</code>, <code>time</code>")
				So(w.Body.String(), ShouldContainSubstring, `name="time_input"`)
				So(w.Body.String(), ShouldContainSubstring, "/static/style.css")
			})
		})

		Convey("When rendering the error page", func() {
			w := httptest.NewRecorder()
			err := r.Render(w, http.StatusBadRequest, PageError, ErrorView{Message: "<bad> input"})

			Convey("Then the status is kept and the message escaped", func() {
				So(err, ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "&lt;bad&gt; input")
			})
		})

		Convey("When rendering an empty leaderboard", func() {
			w := httptest.NewRecorder()
			err := r.Render(w, http.StatusOK, PageLeaderboard, LeaderboardView{Columns: []string{"model_id"}})

			Convey("Then a placeholder row is shown", func() {
				So(err, ShouldBeNil)
				So(w.Body.String(), ShouldContainSubstring, "No models trained.")
			})
		})

		Convey("When rendering an unknown page", func() {
			w := httptest.NewRecorder()
			err := r.Render(w, http.StatusOK, "missing.html", nil)

			Convey("Then it fails with a body", func() {
				So(err, ShouldNotBeNil)
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.Len(), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestStaticAssets(t *testing.T) {
	Convey("Given the static routes", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("Then the stylesheet is served", func() {
			req := httptest.NewRequest(http.MethodGet, "/static/style.css", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
		})

		Convey("And a nil mux panics", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
