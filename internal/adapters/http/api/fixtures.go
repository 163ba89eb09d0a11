package api

import (
	"net/http"

	"github.com/okian/squadkit/internal/domain/model"
)

// FixturesHandler serves upcoming fixtures.
type FixturesHandler struct {
	deps     FixtureDependencies
	maxLimit int
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(deps FixtureDependencies, maxLimit int) *FixturesHandler {
	return &FixturesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /fixtures?limit=N requests.
func (h *FixturesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_fixtures"
	n, err := parseLimit(op, r, defaultFixturesLimit, h.maxLimit)
	if err != nil {
		respondError(w, err)
		return
	}
	fixtures := h.deps.Fixtures(r.Context(), n)
	if fixtures == nil {
		fixtures = []model.Fixture{}
	}
	writeJSON(w, http.StatusOK, fixtures)
}

// HandleNext handles GET /fixtures/next requests.
func (h *FixturesHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	next, ok := h.deps.NextFixture(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "no_upcoming_fixture", nil)
		return
	}
	writeJSON(w, http.StatusOK, next)
}
