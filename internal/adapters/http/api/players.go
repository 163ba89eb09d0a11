package api

import (
	"net/http"
	"strings"

	"github.com/okian/squadkit/internal/domain/types"
	"github.com/okian/squadkit/internal/domain/viewquery"
)

// PlayersHandler serves the player pool.
type PlayersHandler struct {
	deps PoolDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PoolDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type playersResponse struct {
	Players []viewquery.Row `json:"players"`
	Notices []string        `json:"notices"`
	Pool    types.PoolInfo  `json:"pool"`
}

// HandleList handles GET /players?q=&sort=value|form&session= requests.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	q := r.URL.Query()
	rows, pool, err := h.deps.Players(r.Context(),
		strings.TrimSpace(q.Get("session")),
		q.Get("q"),
		viewquery.ParseSortKey(q.Get("sort")),
	)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	if rows == nil {
		rows = []viewquery.Row{}
	}
	notices := pool.Notices
	if notices == nil {
		notices = []string{}
	}
	writeJSON(w, http.StatusOK, playersResponse{Players: rows, Notices: notices, Pool: pool})
}

// HandlePool handles GET /pool requests.
func (h *PlayersHandler) HandlePool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Pool(r.Context()))
}

// HandleReload handles POST /pool/reload requests.
func (h *PlayersHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload_pool"
	info, err := h.deps.Reload(r.Context())
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
