package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/squadkit/internal/adapters/repository"
	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/squad"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a leaderboard seeded with the default entries", t, func() {
		lb := repository.NewMemoryLeaderboard(repository.DefaultEntries())

		Convey("When reading without extra entries", func() {
			top, err := lb.TopN(ctx, 10)

			Convey("Then entries are ranked by points", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0], ShouldResemble, repository.Entry{Rank: 1, Name: "Peter", Points: 180})
				So(top[2].Name, ShouldEqual, "Bruno")
				So(top[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When merging a manager's entry", func() {
			top, err := lb.TopN(ctx, 10, repository.Entry{Name: "Ann", Points: 170, You: true})

			Convey("Then it slots in by points and keeps its flag", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 4)
				So(top[1].Name, ShouldEqual, "Ann")
				So(top[1].You, ShouldBeTrue)
				So(top[1].Rank, ShouldEqual, 2)
				So(lb.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When points tie", func() {
			lb.Replace(ctx, []repository.Entry{{Name: "Zed", Points: 50}, {Name: "Amy", Points: 50}, {Name: "Max", Points: 90}})
			top, _ := lb.TopN(ctx, 2)

			Convey("Then names break the tie and the limit applies", func() {
				So(len(top), ShouldEqual, 2)
				So(top[0].Name, ShouldEqual, "Max")
				So(top[1].Name, ShouldEqual, "Amy")
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := lb.TopN(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When results are modified by the caller", func() {
			top, _ := lb.TopN(ctx, 1)
			top[0].Points = 0
			again, _ := lb.TopN(ctx, 1)
			So(again[0].Points, ShouldEqual, 180)
		})
	})
}

func TestLoadEntries(t *testing.T) {
	Convey("Given leaderboard files", t, func() {
		dir := t.TempDir()
		write := func(name, body string) string {
			p := filepath.Join(dir, name)
			So(os.WriteFile(p, []byte(body), 0o600), ShouldBeNil)
			return p
		}

		Convey("When the file is valid", func() {
			entries, err := repository.LoadEntries(write("ok.json", `[{"name":"Lee","points":210},{"name":" ","points":5}]`))
			So(err, ShouldBeNil)
			So(entries, ShouldResemble, []repository.Entry{{Name: "Lee", Points: 210}})
		})

		Convey("When no path is configured", func() {
			entries, err := repository.LoadEntries("")
			So(err, ShouldBeNil)
			So(entries, ShouldResemble, repository.DefaultEntries())
		})

		Convey("When the file is missing, malformed or empty", func() {
			for _, p := range []string{
				filepath.Join(dir, "nope.json"),
				write("bad.json", `{"name":"Lee"}`),
				write("empty.json", `[]`),
			} {
				entries, err := repository.LoadEntries(p)
				So(errors.Is(err, repository.ErrLeaderboard), ShouldBeTrue)
				So(entries, ShouldResemble, repository.DefaultEntries())
			}
		})
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session store", t, func() {
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		store := repository.NewSessionStore(squad.DefaultLimits(),
			repository.WithSessionTTL(time.Hour),
			repository.WithClock(func() time.Time { return now }),
		)

		Convey("When creating sessions", func() {
			a := store.Create(ctx, "  Ann ")
			b := store.Create(ctx, "")

			Convey("Then each gets a unique id and an empty squad", func() {
				So(a.ID, ShouldNotEqual, b.ID)
				So(a.Manager, ShouldEqual, "Ann")
				So(b.Manager, ShouldEqual, repository.DefaultManagerName)
				So(a.Squad.Len(), ShouldEqual, 0)
				So(a.Squad.Budget(), ShouldEqual, squad.DefaultStartingBudget)
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("And squads are independent", func() {
				err := store.With(ctx, a.ID, func(s *repository.Session) error {
					s.Squad.TryAdd(model.Player{ID: "1", Club: "Arsenal", Position: model.MID, Price: 100})
					return nil
				})
				So(err, ShouldBeNil)
				So(a.Squad.Len(), ShouldEqual, 1)
				So(b.Squad.Len(), ShouldEqual, 0)
			})

			Convey("And deleting removes only that session", func() {
				So(store.Delete(ctx, a.ID), ShouldBeNil)
				So(errors.Is(store.Delete(ctx, a.ID), repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.With(ctx, a.ID, func(*repository.Session) error { return nil }), repository.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When fn fails", func() {
			sess := store.Create(ctx, "Ann")
			boom := errors.New("boom")
			So(store.With(ctx, sess.ID, func(*repository.Session) error { return boom }), ShouldEqual, boom)
		})

		Convey("When many goroutines mutate one session", func() {
			sess := store.Create(ctx, "Ann")
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = store.With(ctx, sess.ID, func(s *repository.Session) error {
						s.Squad.TryAdd(model.Player{ID: "gk", Club: "Arsenal", Position: model.GK, Price: 45})
						return nil
					})
				}()
			}
			wg.Wait()

			Convey("Then the duplicate check holds under contention", func() {
				So(sess.Squad.Len(), ShouldEqual, 1)
				So(sess.Squad.Budget(), ShouldEqual, squad.DefaultStartingBudget-45)
			})
		})

		Convey("When sessions go idle", func() {
			old := store.Create(ctx, "Old")
			now = now.Add(2 * time.Hour)
			fresh := store.Create(ctx, "Fresh")

			Convey("Then Sweep evicts only the idle ones", func() {
				So(store.Sweep(ctx), ShouldEqual, 1)
				So(errors.Is(store.With(ctx, old.ID, func(*repository.Session) error { return nil }), repository.ErrNotFound), ShouldBeTrue)
				So(store.With(ctx, fresh.ID, func(*repository.Session) error { return nil }), ShouldBeNil)
			})
		})

		Convey("When the janitor runs", func() {
			jctx, cancel := context.WithCancel(ctx)
			janitor := repository.NewSessionStore(squad.DefaultLimits(), repository.WithSweepInterval(time.Millisecond))
			janitor.StartJanitor(jctx)
			cancel()

			Convey("Then Close returns once it has stopped", func() {
				So(janitor.Close(), ShouldBeNil)
				So(janitor.Close(), ShouldBeNil)
			})
		})
	})
}
