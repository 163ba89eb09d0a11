// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/squad"
	"github.com/okian/squadkit/internal/domain/types"
	"github.com/okian/squadkit/internal/domain/viewquery"
)

// Defaults for list endpoints.
const (
	DefaultMaxLimit      = 100
	defaultFixturesLimit = 5
	defaultBoardLimit    = 10
	maxBodyBytes         = 1 << 16
)

// PoolDependencies exposes the player pool.
type PoolDependencies interface {
	Players(ctx context.Context, sessionID, filter string, key viewquery.SortKey) ([]viewquery.Row, types.PoolInfo, error)
	Pool(ctx context.Context) types.PoolInfo
	Reload(ctx context.Context) (types.PoolInfo, error)
}

// SquadDependencies exposes session and squad mutations.
type SquadDependencies interface {
	CreateSession(ctx context.Context, manager string) (types.SquadView, error)
	Squad(ctx context.Context, sessionID string) (types.SquadView, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AddPlayer(ctx context.Context, sessionID, playerID string) (types.SquadView, squad.Reason, error)
	RemovePlayer(ctx context.Context, sessionID, playerID string) (types.SquadView, squad.Reason, error)
	ResetSquad(ctx context.Context, sessionID string) (types.SquadView, error)
	SetFormation(ctx context.Context, sessionID string, f model.Formation) (types.SquadView, error)
}

// FixtureDependencies exposes upcoming fixtures.
type FixtureDependencies interface {
	Fixtures(ctx context.Context, limit int) []model.Fixture
	NextFixture(ctx context.Context) (model.Fixture, bool)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PoolDependencies
	SquadDependencies
	FixtureDependencies
	LeaderboardDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	playersHandler     *PlayersHandler
	squadsHandler      *SquadsHandler
	fixturesHandler    *FixturesHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers. A maxLimit below
// one falls back to DefaultMaxLimit.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = DefaultMaxLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		playersHandler:     NewPlayersHandler(deps),
		squadsHandler:      NewSquadsHandler(deps),
		fixturesHandler:    NewFixturesHandler(deps, maxLimit),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("GET /pool", MetricsMiddleware(s.playersHandler.HandlePool, "pool"))
	mux.HandleFunc("POST /pool/reload", MetricsMiddleware(s.playersHandler.HandleReload, "pool_reload"))

	mux.HandleFunc("POST /squads", MetricsMiddleware(s.squadsHandler.HandleCreate, "squads_create"))
	mux.HandleFunc("GET /squads/{id}", MetricsMiddleware(s.squadsHandler.HandleGet, "squads_get"))
	mux.HandleFunc("DELETE /squads/{id}", MetricsMiddleware(s.squadsHandler.HandleDelete, "squads_delete"))
	mux.HandleFunc("POST /squads/{id}/players", MetricsMiddleware(s.squadsHandler.HandleAddPlayer, "squads_add"))
	mux.HandleFunc("DELETE /squads/{id}/players/{player_id}", MetricsMiddleware(s.squadsHandler.HandleRemovePlayer, "squads_remove"))
	mux.HandleFunc("POST /squads/{id}/reset", MetricsMiddleware(s.squadsHandler.HandleReset, "squads_reset"))
	mux.HandleFunc("PUT /squads/{id}/formation", MetricsMiddleware(s.squadsHandler.HandleFormation, "squads_formation"))

	mux.HandleFunc("GET /fixtures", MetricsMiddleware(s.fixturesHandler.HandleList, "fixtures"))
	mux.HandleFunc("GET /fixtures/next", MetricsMiddleware(s.fixturesHandler.HandleNext, "fixtures_next"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError maps err onto a status code and the error envelope.
func respondError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, types.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, types.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, types.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody reads a small JSON request body into v.
func decodeBody(op string, w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return NewKind(op, ErrBadRequest)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
