package service_test

import (
	"context"
	"time"

	"github.com/okian/squadkit/internal/adapters/source"
	service "github.com/okian/squadkit/internal/app"
	"github.com/okian/squadkit/internal/domain/normalize"
	"github.com/okian/squadkit/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

var testNow = time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)

type bootstrapFunc func(ctx context.Context) source.Result[normalize.Bootstrap]

func (f bootstrapFunc) Resolve(ctx context.Context, _ []source.Source[normalize.Bootstrap]) source.Result[normalize.Bootstrap] {
	return f(ctx)
}

type fixturesFunc func(ctx context.Context) source.Result[[]normalize.RawFixture]

func (f fixturesFunc) Resolve(ctx context.Context, _ []source.Source[[]normalize.RawFixture]) source.Result[[]normalize.RawFixture] {
	return f(ctx)
}

func element(id, team, typ int, name string, cost int64, form string) normalize.RawElement {
	return normalize.RawElement{ID: id, WebName: name, Team: team, ElementType: typ, NowCost: normalize.Cost(cost), Form: normalize.FlexString(form)}
}

// testBootstrap is a small pool: three clubs, enough for the rule scenarios.
func testBootstrap() normalize.Bootstrap {
	return normalize.Bootstrap{
		Teams: []normalize.RawTeam{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Liverpool"}, {ID: 3, Name: "Man City"}},
		Elements: []normalize.RawElement{
			element(1, 1, 1, "Raya", 55, "5.1"),
			element(2, 2, 1, "Alisson", 55, "4.7"),
			element(3, 3, 1, "Ederson", 56, "6.8"),
			element(4, 1, 3, "Saka", 96, "8.4"),
			element(5, 1, 2, "Saliba", 62, "7.3"),
			element(6, 1, 2, "Gabriel", 60, "6.6"),
			element(7, 2, 3, "Salah", 125, "8.8"),
			element(8, 3, 4, "Haaland", 140, "9.2"),
			element(9, 2, 2, "Robertson", 60, ""),
		},
	}
}

func testFixtures() []normalize.RawFixture {
	at := func(t time.Time) *string { s := t.Format(time.RFC3339); return &s }
	ev := 1
	return []normalize.RawFixture{
		{ID: 10, Event: &ev, KickoffTime: at(testNow.Add(48 * time.Hour)), TeamH: 2, TeamA: 1},
		{ID: 11, Event: &ev, KickoffTime: at(testNow.Add(24 * time.Hour)), TeamH: 3, TeamA: 9},
		{ID: 12, Event: &ev, KickoffTime: at(testNow.Add(-24 * time.Hour)), TeamH: 1, TeamA: 3, Finished: true},
	}
}

func okBootstrap(_ context.Context) source.Result[normalize.Bootstrap] {
	return source.Result[normalize.Bootstrap]{Value: testBootstrap(), Available: true, Source: "primary"}
}

func okFixtures(_ context.Context) source.Result[[]normalize.RawFixture] {
	return source.Result[[]normalize.RawFixture]{Value: testFixtures(), Available: true, Source: "primary"}
}

func downBootstrap(_ context.Context) source.Result[normalize.Bootstrap] {
	return source.Result[normalize.Bootstrap]{Attempts: []source.Attempt{{Source: "primary", Outcome: source.OutcomeStatus, Status: 503}}}
}

func downFixtures(_ context.Context) source.Result[[]normalize.RawFixture] {
	return source.Result[[]normalize.RawFixture]{}
}

func newLoader(b bootstrapFunc, f fixturesFunc, opts ...service.LoaderOption) *service.Loader {
	opts = append([]service.LoaderOption{service.WithLoaderClock(func() time.Time { return testNow })}, opts...)
	return service.NewLoader(b, nil, f, nil, opts...)
}

func newService(l *service.Loader, opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithLoader(l),
		service.WithClock(func() time.Time { return testNow }),
	}, opts...)
	return service.New(opts...)
}
