package source_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/squadkit/internal/adapters/source"
	"github.com/okian/squadkit/internal/domain/normalize"
	"github.com/okian/squadkit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func bootstrapBody(n int) string {
	var b strings.Builder
	b.WriteString(`{"teams":[{"id":1,"name":"Arsenal"}],"elements":[`)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":%d,"web_name":"P%d","team":1,"element_type":3,"now_cost":50,"form":"5.0"}`, i, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

// countingServer serves body with status and counts hits.
func countingServer(status int, body string, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func bootstrapSources(urls ...string) []source.Source[normalize.Bootstrap] {
	return source.Sources(urls, time.Second, source.MinElements(source.DefaultMinElements))
}

func TestResolverOrder(t *testing.T) {
	Convey("Given an ordered list of bootstrap sources", t, func() {
		var firstHits, secondHits, thirdHits atomic.Int32
		first := countingServer(http.StatusOK, bootstrapBody(10), &firstHits)
		defer first.Close()
		second := countingServer(http.StatusOK, bootstrapBody(600), &secondHits)
		defer second.Close()
		third := countingServer(http.StatusOK, bootstrapBody(600), &thirdHits)
		defer third.Close()

		r := source.NewBootstrapResolver()

		Convey("When the first source returns too few elements", func() {
			res := r.Resolve(context.Background(), bootstrapSources(first.URL, second.URL, third.URL))

			Convey("Then the second source wins and the third is never tried", func() {
				So(res.Available, ShouldBeTrue)
				So(len(res.Value.Elements), ShouldEqual, 600)
				So(len(res.Attempts), ShouldEqual, 2)
				So(res.Attempts[0].Outcome, ShouldEqual, source.OutcomeInvalid)
				So(errors.Is(res.Attempts[0].Err, source.ErrTooFewElements), ShouldBeTrue)
				So(res.Attempts[1].Outcome, ShouldEqual, source.OutcomeOK)
				So(res.Source, ShouldEqual, res.Attempts[1].Source)
				So(firstHits.Load(), ShouldEqual, 1)
				So(secondHits.Load(), ShouldEqual, 1)
				So(thirdHits.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the first source succeeds", func() {
			res := r.Resolve(context.Background(), bootstrapSources(second.URL, third.URL))

			Convey("Then it returns immediately", func() {
				So(res.Available, ShouldBeTrue)
				So(len(res.Attempts), ShouldEqual, 1)
				So(thirdHits.Load(), ShouldEqual, 0)
			})
		})
	})
}

func TestResolverFailures(t *testing.T) {
	Convey("Given sources that fail in different ways", t, func() {
		var hits atomic.Int32
		notFound := countingServer(http.StatusNotFound, `{"detail":"nope"}`, &hits)
		defer notFound.Close()
		html := countingServer(http.StatusOK, `<html>challenge</html>`, &hits)
		defer html.Close()
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer slow.Close()
		big := countingServer(http.StatusOK, bootstrapBody(600), &hits)
		defer big.Close()

		Convey("When every source fails", func() {
			r := source.NewBootstrapResolver(source.WithMaxBytes(1024))
			srcs := bootstrapSources(notFound.URL, html.URL, big.URL)
			srcs = append(srcs, source.Source[normalize.Bootstrap]{Name: "slow", URL: slow.URL, Timeout: 50 * time.Millisecond})
			res := r.Resolve(context.Background(), srcs)

			Convey("Then the result is unavailable and each failure is classified", func() {
				So(res.Available, ShouldBeFalse)
				So(len(res.Attempts), ShouldEqual, 4)
				So(res.Attempts[0].Outcome, ShouldEqual, source.OutcomeStatus)
				So(res.Attempts[0].Status, ShouldEqual, http.StatusNotFound)
				So(res.Attempts[1].Outcome, ShouldEqual, source.OutcomeDecode)
				So(errors.Is(res.Attempts[1].Err, normalize.ErrDecode), ShouldBeTrue)
				So(res.Attempts[2].Outcome, ShouldEqual, source.OutcomeTooLarge)
				So(res.Attempts[3].Outcome, ShouldEqual, source.OutcomeTimeout)
				So(res.Attempts[3].Source, ShouldEqual, "slow")
				So(res.Attempts[3].Duration, ShouldBeLessThan, time.Second)
			})
		})

		Convey("When the source list is empty", func() {
			res := source.NewBootstrapResolver().Resolve(context.Background(), nil)
			So(res.Available, ShouldBeFalse)
			So(res.Attempts, ShouldBeEmpty)
		})

		Convey("When the url is unusable", func() {
			res := source.NewBootstrapResolver().Resolve(context.Background(), bootstrapSources("not a url"))
			So(res.Available, ShouldBeFalse)
			So(errors.Is(res.Attempts[0].Err, source.ErrBadURL), ShouldBeTrue)
		})

		Convey("When the caller cancels before resolving", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			before := hits.Load()
			res := source.NewBootstrapResolver().Resolve(ctx, bootstrapSources(big.URL))

			Convey("Then no source is attempted", func() {
				So(res.Available, ShouldBeFalse)
				So(res.Attempts, ShouldBeEmpty)
				So(hits.Load(), ShouldEqual, before)
			})
		})
	})
}

func TestResolverHeaders(t *testing.T) {
	Convey("Given a source that records request headers", t, func() {
		var ua, accept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua, accept = r.Header.Get("User-Agent"), r.Header.Get("Accept")
			_, _ = w.Write([]byte(bootstrapBody(60)))
		}))
		defer srv.Close()

		res := source.NewBootstrapResolver(source.WithUserAgent("squadkit-test")).
			Resolve(context.Background(), bootstrapSources(srv.URL))

		So(res.Available, ShouldBeTrue)
		So(ua, ShouldEqual, "squadkit-test")
		So(accept, ShouldEqual, "application/json")
	})
}

func TestResolverFileSource(t *testing.T) {
	Convey("Given a local snapshot file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "bootstrap-static.json")
		So(os.WriteFile(path, []byte(bootstrapBody(75)), 0o600), ShouldBeNil)

		Convey("When it is listed after a failing network source", func() {
			down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer down.Close()

			res := source.NewBootstrapResolver().Resolve(context.Background(),
				bootstrapSources(down.URL, "file://"+filepath.ToSlash(path)))

			Convey("Then the file is used", func() {
				So(res.Available, ShouldBeTrue)
				So(len(res.Value.Elements), ShouldEqual, 75)
				So(res.Source, ShouldEqual, "file:"+filepath.ToSlash(path))
			})
		})

		Convey("When the file does not exist", func() {
			res := source.NewBootstrapResolver().Resolve(context.Background(),
				bootstrapSources("file://"+filepath.ToSlash(filepath.Join(dir, "missing.json"))))

			Convey("Then the attempt fails on status", func() {
				So(res.Available, ShouldBeFalse)
				So(res.Attempts[0].Outcome, ShouldEqual, source.OutcomeStatus)
			})
		})
	})
}

func TestFixturesResolver(t *testing.T) {
	Convey("Given fixture sources", t, func() {
		var hits atomic.Int32
		empty := countingServer(http.StatusOK, `[]`, &hits)
		defer empty.Close()
		good := countingServer(http.StatusOK,
			`[{"id":1,"event":1,"kickoff_time":"2030-08-16T19:00:00Z","team_h":1,"team_a":2,"finished":false}]`, &hits)
		defer good.Close()

		srcs := source.Sources([]string{empty.URL, "", good.URL}, time.Second, source.MinFixtures(source.DefaultMinFixtures))
		res := source.NewFixturesResolver().Resolve(context.Background(), srcs)

		Convey("Then an empty list is rejected and blank urls are skipped", func() {
			So(len(srcs), ShouldEqual, 2)
			So(res.Available, ShouldBeTrue)
			So(len(res.Value), ShouldEqual, 1)
			So(errors.Is(res.Attempts[0].Err, source.ErrTooFewFixtures), ShouldBeTrue)
		})
	})
}

func TestFallback(t *testing.T) {
	Convey("Given the bundled dataset", t, func() {
		b, err := source.Fallback()

		Convey("Then it decodes and passes the bootstrap integrity check", func() {
			So(err, ShouldBeNil)
			So(source.MinElements(source.DefaultMinElements)(b), ShouldBeNil)
			So(len(b.Teams), ShouldEqual, 20)
		})

		Convey("And it can field a complete squad by position", func() {
			counts := map[int]int{}
			for _, e := range b.Elements {
				counts[e.ElementType]++
			}
			So(counts[1], ShouldBeGreaterThanOrEqualTo, 2)
			So(counts[2], ShouldBeGreaterThanOrEqualTo, 5)
			So(counts[3], ShouldBeGreaterThanOrEqualTo, 5)
			So(counts[4], ShouldBeGreaterThanOrEqualTo, 3)
		})
	})
}

func TestName(t *testing.T) {
	Convey("Given source urls", t, func() {
		So(source.Name("https://fantasy.premierleague.com/api/bootstrap-static/"), ShouldEqual, "fantasy.premierleague.com/api/bootstrap-static/")
		So(source.Name("file:///data/bootstrap.json"), ShouldEqual, "file:/data/bootstrap.json")
		So(source.Name("relative/path"), ShouldEqual, "relative/path")
	})
}
