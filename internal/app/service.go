// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/squadkit/internal/adapters/repository"
	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/normalize"
	"github.com/okian/squadkit/internal/domain/scoring"
	"github.com/okian/squadkit/internal/domain/squad"
	"github.com/okian/squadkit/internal/domain/types"
	"github.com/okian/squadkit/internal/domain/viewquery"
	"github.com/okian/squadkit/pkg/logger"
	"github.com/okian/squadkit/pkg/metrics"
)

// Mutation names used in logs and metrics.
const (
	opAdd       = "add"
	opRemove    = "remove"
	opReset     = "reset"
	opFormation = "formation"
)

// Service implements the API dependencies for the squad builder.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader      *Loader
	sessions    *repository.SessionStore
	leaderboard repository.Leaderboard
	scorer      *scoring.FormScorer

	// Configuration
	limits          squad.Limits
	leaderboardPath string
	sessionTTL      time.Duration
	refreshInterval time.Duration
	now             func() time.Time

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the pool loader. Required.
func WithLoader(l *Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithLimits sets the squad rules for new sessions.
func WithLimits(l squad.Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

// WithLeaderboardPath sets the JSON file holding other managers' points.
func WithLeaderboardPath(path string) Option {
	return func(s *Service) {
		s.leaderboardPath = path
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithRefreshInterval reloads the pool periodically once started.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithScorer sets the squad scorer.
func WithScorer(sc *scoring.FormScorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		limits:     squad.DefaultLimits(),
		sessionTTL: 24 * time.Hour,
		scorer:     scoring.NewFormScorer(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the leaderboard and the first pool generation, then starts
// the background refresh and session janitor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		return errors.New("service: loader is required")
	}
	if err := s.limits.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}

	s.logger.Info(ctx, "starting squad service...")

	entries, err := repository.LoadEntries(s.leaderboardPath)
	if err != nil {
		s.logger.Warn(ctx, "using built-in leaderboard", logger.Error(err))
	}
	s.leaderboard = repository.NewMemoryLeaderboard(entries)
	s.sessions = repository.NewSessionStore(s.limits,
		repository.WithSessionTTL(s.sessionTTL),
		repository.WithClock(s.now),
	)

	snap, _ := s.loader.Load(ctx)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.sessions.StartJanitor(runCtx)
	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loader.Run(runCtx, s.refreshInterval)
		}()
	}

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "squad service started",
		logger.Int("players", len(snap.Players)),
		logger.Int("leaderboard", len(entries)),
		logger.Bool("degraded", snap.Degraded),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping squad service...")
	s.cancel()
	s.wg.Wait()
	_ = s.sessions.Close()
	s.started = false
	s.logger.Info(context.Background(), "squad service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.ErrNotStarted
	}
	return nil
}

// Pool returns a summary of the applied pool.
func (s *Service) Pool(_ context.Context) types.PoolInfo {
	return poolInfo(s.loader.Snapshot(), true)
}

// Reload starts a new load generation and waits for it to settle.
func (s *Service) Reload(ctx context.Context) (types.PoolInfo, error) {
	if err := s.ready(); err != nil {
		return types.PoolInfo{}, err
	}
	snap, applied := s.loader.Load(ctx)
	return poolInfo(snap, applied), nil
}

// Players lists the pool filtered and sorted, flagging players already in
// the session's squad. sessionID may be empty.
func (s *Service) Players(ctx context.Context, sessionID, filter string, key viewquery.SortKey) ([]viewquery.Row, types.PoolInfo, error) {
	if err := s.ready(); err != nil {
		return nil, types.PoolInfo{}, err
	}
	snap := s.loader.Snapshot()

	var picked []model.Player
	if sessionID != "" {
		err := s.with(ctx, sessionID, func(sess *repository.Session) error {
			picked = sess.Squad.Players()
			return nil
		})
		if err != nil {
			return nil, types.PoolInfo{}, err
		}
	}
	return viewquery.Query(snap.Players, picked, filter, key), poolInfo(snap, true), nil
}

// CreateSession starts a new squad for manager.
func (s *Service) CreateSession(ctx context.Context, manager string) (types.SquadView, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, err
	}
	sess := s.sessions.Create(ctx, manager)
	s.logger.Debug(ctx, "session created", logger.String("session", sess.ID), logger.String("manager", sess.Manager))

	var view types.SquadView
	err := s.with(ctx, sess.ID, func(sess *repository.Session) error {
		view = s.view(sess)
		return nil
	})
	return view, err
}

// Squad returns the session's squad.
func (s *Service) Squad(ctx context.Context, sessionID string) (types.SquadView, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, err
	}
	var view types.SquadView
	err := s.with(ctx, sessionID, func(sess *repository.Session) error {
		view = s.view(sess)
		return nil
	})
	return view, err
}

// DeleteSession drops the session and its squad.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return sessionErr(err)
	}
	return nil
}

// AddPlayer adds a pool player to the squad. A rejection is reported
// through the reason, never as an error.
func (s *Service) AddPlayer(ctx context.Context, sessionID, playerID string) (types.SquadView, squad.Reason, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, squad.ReasonNone, err
	}
	p, ok := s.loader.Snapshot().Player(playerID)
	if !ok {
		return types.SquadView{}, squad.ReasonNone, fmt.Errorf("%w: %s", types.ErrPlayerNotFound, playerID)
	}

	var (
		view   types.SquadView
		reason squad.Reason
	)
	err := s.with(ctx, sessionID, func(sess *repository.Session) error {
		d := sess.Squad.TryAdd(p)
		reason = d.Reason
		view = s.view(sess)
		return nil
	})
	if err != nil {
		return types.SquadView{}, squad.ReasonNone, err
	}
	s.recordMutation(ctx, opAdd, sessionID, playerID, reason)
	return view, reason, nil
}

// RemovePlayer removes a player from the squad, refunding its price.
func (s *Service) RemovePlayer(ctx context.Context, sessionID, playerID string) (types.SquadView, squad.Reason, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, squad.ReasonNone, err
	}
	var (
		view   types.SquadView
		reason squad.Reason
	)
	err := s.with(ctx, sessionID, func(sess *repository.Session) error {
		d := sess.Squad.TryRemove(playerID)
		reason = d.Reason
		view = s.view(sess)
		return nil
	})
	if err != nil {
		return types.SquadView{}, squad.ReasonNone, err
	}
	s.recordMutation(ctx, opRemove, sessionID, playerID, reason)
	return view, reason, nil
}

// ResetSquad empties the squad and restores the starting budget.
func (s *Service) ResetSquad(ctx context.Context, sessionID string) (types.SquadView, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, err
	}
	var view types.SquadView
	err := s.with(ctx, sessionID, func(sess *repository.Session) error {
		sess.Squad.Reset()
		view = s.view(sess)
		return nil
	})
	if err != nil {
		return types.SquadView{}, err
	}
	s.recordMutation(ctx, opReset, sessionID, "", squad.ReasonNone)
	return view, nil
}

// SetFormation changes the display formation.
func (s *Service) SetFormation(ctx context.Context, sessionID string, f model.Formation) (types.SquadView, error) {
	if err := s.ready(); err != nil {
		return types.SquadView{}, err
	}
	var view types.SquadView
	err := s.with(ctx, sessionID, func(sess *repository.Session) error {
		sess.Squad.SetFormation(f)
		view = s.view(sess)
		return nil
	})
	if err != nil {
		return types.SquadView{}, err
	}
	s.recordMutation(ctx, opFormation, sessionID, string(f), squad.ReasonNone)
	return view, nil
}

// Fixtures returns up to limit upcoming fixtures, soonest first.
func (s *Service) Fixtures(_ context.Context, limit int) []model.Fixture {
	return normalize.Upcoming(s.loader.Snapshot().Fixtures, s.now(), limit)
}

// NextFixture returns the soonest upcoming fixture.
func (s *Service) NextFixture(_ context.Context) (model.Fixture, bool) {
	return normalize.Next(s.loader.Snapshot().Fixtures, s.now())
}

// Leaderboard returns the top n entries, merging in the session's manager
// when sessionID is set.
func (s *Service) Leaderboard(ctx context.Context, n int, sessionID string) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var extra []repository.Entry
	if sessionID != "" {
		err := s.with(ctx, sessionID, func(sess *repository.Session) error {
			extra = append(extra, repository.Entry{
				Name:   sess.Manager,
				Points: s.scorer.Points(sess.Squad.Players()),
				You:    true,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	entries, err := s.leaderboard.TopN(ctx, n, extra...)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, Name: e.Name, Points: e.Points, You: e.You}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"squadSize": s.limits.TotalSquadSize,
		"clubCap":   s.limits.ClubCap,
		"budget":    s.limits.StartingBudget,
	}
	if s.loader != nil {
		stats["pool"] = poolInfo(s.loader.Snapshot(), true)
		stats["generation"] = s.loader.Generation()
	}
	if s.started {
		sessions := s.sessions.Count(ctx)
		stats["sessions"] = sessions
		stats["leaderboardEntries"] = s.leaderboard.Count(ctx)
		stats["uptimeSec"] = int(s.now().Sub(s.startedAt).Seconds())
		metrics.UpdateActiveSessions(sessions)
	}
	return stats
}

func (s *Service) with(ctx context.Context, sessionID string, fn func(*repository.Session) error) error {
	return sessionErr(s.sessions.With(ctx, sessionID, fn))
}

func (s *Service) view(sess *repository.Session) types.SquadView {
	st := sess.Squad
	players := st.Players()
	return types.SquadView{
		ID:             sess.ID,
		Manager:        sess.Manager,
		Players:        players,
		Formation:      st.Formation(),
		Budget:         st.Budget(),
		Spent:          st.Spent(),
		BudgetDisplay:  st.Budget().Money(),
		Size:           st.Len(),
		MaxSize:        st.Limits().TotalSquadSize,
		Complete:       st.Complete(),
		PositionCounts: st.PositionCounts(),
		ClubCounts:     st.ClubCounts(),
		Points:         s.scorer.Points(players),
	}
}

func (s *Service) recordMutation(ctx context.Context, op, sessionID, subject string, reason squad.Reason) {
	outcome := "ok"
	if reason != squad.ReasonNone {
		outcome = string(reason)
		s.logger.Debug(ctx, "squad mutation rejected",
			logger.String("op", op),
			logger.String("session", sessionID),
			logger.String("subject", subject),
			logger.String("reason", outcome))
	}
	metrics.RecordSquadMutation(op, outcome)
}

func sessionErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", types.ErrSessionNotFound, err)
	}
	return err
}

func poolInfo(snap *PoolSnapshot, applied bool) types.PoolInfo {
	return types.PoolInfo{
		Generation:     snap.Generation,
		Players:        len(snap.Players),
		Fixtures:       len(snap.Fixtures),
		PlayersSource:  snap.PlayersSource,
		FixturesSource: snap.FixturesSource,
		Degraded:       snap.Degraded,
		Notices:        snap.Notices,
		LoadedAt:       snap.LoadedAt,
		Applied:        applied,
	}
}
