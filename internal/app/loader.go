package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/squadkit/internal/adapters/source"
	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/normalize"
	"github.com/okian/squadkit/pkg/logger"
	"github.com/okian/squadkit/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Notices shown to the manager when the pool is degraded.
const (
	NoticePlayersFallback = "Couldn't load real FPL players. Showing fallback list."
	NoticePlayersFailed   = "Couldn't load players (FPL + fallback both failed)."
	NoticeFixturesMissing = "Couldn't load fixtures."
)

// Source labels recorded on a snapshot when no upstream source served it.
const (
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// BootstrapResolver resolves reference payloads.
type BootstrapResolver interface {
	Resolve(ctx context.Context, sources []source.Source[normalize.Bootstrap]) source.Result[normalize.Bootstrap]
}

// FixturesResolver resolves fixture lists.
type FixturesResolver interface {
	Resolve(ctx context.Context, sources []source.Source[[]normalize.RawFixture]) source.Result[[]normalize.RawFixture]
}

// PoolSnapshot is the applied result of one load. It is never mutated
// after it is published.
type PoolSnapshot struct {
	Generation     uint64                      `json:"generation"`
	Players        []model.Player              `json:"-"`
	Teams          []model.Team                `json:"-"`
	Fixtures       []model.Fixture             `json:"-"`
	PlayersSource  string                      `json:"players_source"`
	FixturesSource string                      `json:"fixtures_source"`
	Degraded       bool                        `json:"degraded"`
	Notices        []string                    `json:"notices,omitempty"`
	LoadedAt       time.Time                   `json:"loaded_at"`
	Attempts       map[string][]source.Attempt `json:"attempts,omitempty"`

	index map[string]int
}

// Player looks a pool player up by id.
func (p *PoolSnapshot) Player(id string) (model.Player, bool) {
	i, ok := p.index[id]
	if !ok {
		return model.Player{}, false
	}
	return p.Players[i], true
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithFallback overrides the bundled dataset, for tests.
func WithFallback(fn func() (normalize.Bootstrap, error)) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.fallback = fn
		}
	}
}

// WithLoaderClock overrides the time source.
func WithLoaderClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLoaderLogger sets the logger instance.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader resolves the player pool and fixtures together. Every Load takes
// a new generation token; a result is applied only if its token is still
// the latest when both resolutions have settled.
type Loader struct {
	bootstrap        BootstrapResolver
	fixtures         FixturesResolver
	bootstrapSources []source.Source[normalize.Bootstrap]
	fixtureSources   []source.Source[[]normalize.RawFixture]
	fallback         func() (normalize.Bootstrap, error)
	now              func() time.Time
	logger           logger.Logger

	generation atomic.Uint64
	applyMu    sync.Mutex
	current    atomic.Pointer[PoolSnapshot]
}

// NewLoader creates a loader over the given resolvers and ordered sources.
func NewLoader(
	bootstrap BootstrapResolver,
	bootstrapSources []source.Source[normalize.Bootstrap],
	fixtures FixturesResolver,
	fixtureSources []source.Source[[]normalize.RawFixture],
	opts ...LoaderOption,
) *Loader {
	l := &Loader{
		bootstrap:        bootstrap,
		fixtures:         fixtures,
		bootstrapSources: bootstrapSources,
		fixtureSources:   fixtureSources,
		fallback:         source.Fallback,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("loader")
	}
	l.current.Store(&PoolSnapshot{})
	return l
}

// Generation returns the most recently issued token.
func (l *Loader) Generation() uint64 { return l.generation.Load() }

// Snapshot returns the applied pool.
func (l *Loader) Snapshot() *PoolSnapshot { return l.current.Load() }

// Load resolves bootstrap and fixtures concurrently and applies the
// combined result unless a newer Load started meanwhile or ctx was
// cancelled. It reports the snapshot it built and whether it was applied.
func (l *Loader) Load(ctx context.Context) (*PoolSnapshot, bool) {
	gen := l.generation.Add(1)

	var (
		boot source.Result[normalize.Bootstrap]
		fix  source.Result[[]normalize.RawFixture]
	)
	// Neither side fails the group; unavailability is data.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		boot = l.bootstrap.Resolve(gctx, l.bootstrapSources)
		return nil
	})
	g.Go(func() error {
		fix = l.fixtures.Resolve(gctx, l.fixtureSources)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return l.discardCancelled(ctx, &PoolSnapshot{Generation: gen})
	}
	snap := l.build(ctx, gen, boot, fix)

	l.applyMu.Lock()
	defer l.applyMu.Unlock()
	if ctx.Err() != nil {
		return l.discardCancelled(ctx, snap)
	}
	if latest := l.generation.Load(); latest != gen {
		metrics.RecordGenerationStale()
		l.logger.Info(ctx, "discarding stale load",
			logger.Uint64("generation", gen),
			logger.Uint64("latest", latest))
		return snap, false
	}
	l.current.Store(snap)
	metrics.RecordGenerationApplied()
	metrics.UpdatePoolSize(len(snap.Players), len(snap.Fixtures))
	l.logger.Info(ctx, "pool loaded",
		logger.Uint64("generation", gen),
		logger.Int("players", len(snap.Players)),
		logger.Int("fixtures", len(snap.Fixtures)),
		logger.String("players_source", snap.PlayersSource),
		logger.String("fixtures_source", snap.FixturesSource),
		logger.Bool("degraded", snap.Degraded))
	return snap, true
}

// discardCancelled drops a load whose caller went away. A torn-down
// resolution is indistinguishable from an outage, so it never replaces
// the live pool.
func (l *Loader) discardCancelled(ctx context.Context, snap *PoolSnapshot) (*PoolSnapshot, bool) {
	metrics.RecordGenerationStale()
	l.logger.Info(ctx, "discarding cancelled load",
		logger.Uint64("generation", snap.Generation),
		logger.Error(ctx.Err()))
	return snap, false
}

func (l *Loader) build(ctx context.Context, gen uint64, boot source.Result[normalize.Bootstrap], fix source.Result[[]normalize.RawFixture]) *PoolSnapshot {
	snap := &PoolSnapshot{
		Generation: gen,
		LoadedAt:   l.now().UTC(),
		Attempts: map[string][]source.Attempt{
			source.KindBootstrap: boot.Attempts,
			source.KindFixtures:  fix.Attempts,
		},
	}

	bootstrap := boot.Value
	snap.PlayersSource = boot.Source
	if !boot.Available {
		metrics.RecordFallback(source.KindBootstrap)
		snap.Degraded = true
		fb, err := l.fallback()
		if err != nil {
			l.logger.Error(ctx, "fallback dataset unusable", logger.Error(err))
			bootstrap = normalize.Bootstrap{}
			snap.PlayersSource = SourceNone
			snap.Notices = append(snap.Notices, NoticePlayersFailed)
		} else {
			bootstrap = fb
			snap.PlayersSource = SourceFallback
			snap.Notices = append(snap.Notices, NoticePlayersFallback)
		}
	}
	snap.Players = normalize.Players(bootstrap)
	snap.index = make(map[string]int, len(snap.Players))
	for i, p := range snap.Players {
		if _, dup := snap.index[p.ID]; !dup {
			snap.index[p.ID] = i
		}
	}
	snap.Teams = normalize.Teams(bootstrap)

	snap.FixturesSource = fix.Source
	if fix.Available {
		snap.Fixtures = normalize.Fixtures(fix.Value, normalize.TeamNames(bootstrap))
	} else {
		metrics.RecordFallback(source.KindFixtures)
		snap.Degraded = true
		snap.FixturesSource = SourceNone
		snap.Fixtures = []model.Fixture{}
		snap.Notices = append(snap.Notices, NoticeFixturesMissing)
	}
	return snap
}

// Run reloads every interval until ctx is done. A non-positive interval disables it.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Load(ctx)
		}
	}
}
