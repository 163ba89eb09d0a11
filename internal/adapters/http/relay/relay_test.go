package relay_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/squadkit/internal/adapters/http/relay"
	"github.com/okian/squadkit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func TestRelay(t *testing.T) {
	Convey("Given a relay in front of a fake provider", t, func() {
		var gotPath, gotQuery, gotUA string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotQuery, gotUA = r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")
			if r.URL.Path == "/api/fixtures/" && r.URL.Query().Get("event") == "99" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"detail":"Not found."}`))
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`{"elements":[]}`))
		}))
		defer upstream.Close()

		mux := http.NewServeMux()
		relay.New(relay.WithUpstream(upstream.URL + "/api/")).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When fetching bootstrap data", func() {
			resp, err := http.Get(srv.URL + "/fpl/bootstrap-static")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then the body is forwarded with relay headers", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldEqual, `{"elements":[]}`)
				So(gotPath, ShouldEqual, "/api/bootstrap-static/")
				So(gotUA, ShouldContainSubstring, "Mozilla/5.0")
				So(resp.Header.Get("Content-Type"), ShouldEqual, "application/json")
				So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(resp.Header.Get("Cache-Control"), ShouldEqual, "public, max-age=300")
			})
		})

		Convey("When fetching fixtures with a query", func() {
			resp, err := http.Get(srv.URL + "/fpl/fixtures?future=1")
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then the query string is preserved", func() {
				So(gotPath, ShouldEqual, "/api/fixtures/")
				So(gotQuery, ShouldEqual, "future=1")
			})
		})

		Convey("When the provider answers with an error status", func() {
			resp, err := http.Get(srv.URL + "/fpl/fixtures?event=99")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then the status is passed through", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(string(body), ShouldContainSubstring, "Not found.")
			})
		})

		Convey("When the method is not GET", func() {
			resp, err := http.Post(srv.URL+"/fpl/fixtures", "application/json", strings.NewReader("{}"))
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a relay whose provider is unreachable", t, func() {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		h := relay.New(relay.WithUpstream(deadURL))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fpl/bootstrap-static", nil))

		Convey("Then it answers 502 in plain text", func() {
			So(rec.Code, ShouldEqual, http.StatusBadGateway)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "text/plain")
			So(rec.Body.String(), ShouldStartWith, "Upstream fetch failed: ")
		})
	})

	Convey("Given a provider body larger than the byte cap", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"elements": [1, 2, 3, 4, 5, 6]}`))
		}))
		defer upstream.Close()

		h := relay.New(relay.WithUpstream(upstream.URL), relay.WithMaxBytes(8))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fpl/bootstrap-static", nil))

		Convey("Then it answers 502 without forwarding the body", func() {
			So(rec.Code, ShouldEqual, http.StatusBadGateway)
			So(rec.Body.String(), ShouldContainSubstring, "upstream body too large")
			So(rec.Body.String(), ShouldNotContainSubstring, "elements")
		})
	})

	Convey("Given a custom cache lifetime", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer upstream.Close()

		h := relay.New(relay.WithUpstream(upstream.URL), relay.WithMaxAge(time.Minute))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fpl/fixtures", nil))

		So(rec.Header().Get("Cache-Control"), ShouldEqual, "public, max-age=60")
	})
}
