package api

import (
	"net/http"
	"strings"

	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/squad"
	"github.com/okian/squadkit/internal/domain/types"
)

// SquadsHandler serves session and squad mutation requests.
type SquadsHandler struct {
	deps SquadDependencies
}

// NewSquadsHandler creates a new squads handler.
func NewSquadsHandler(deps SquadDependencies) *SquadsHandler {
	return &SquadsHandler{deps: deps}
}

type createSquadRequest struct {
	Manager string `json:"manager"`
}

type addPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type formationRequest struct {
	Formation string `json:"formation"`
}

// rejectionResponse carries the unchanged squad with the rejection reason.
type rejectionResponse struct {
	errorResponse
	Squad types.SquadView `json:"squad"`
}

// HandleCreate handles POST /squads requests. An empty body is allowed.
func (h *SquadsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_squad"
	var req createSquadRequest
	if r.ContentLength != 0 {
		if err := decodeBody(op, w, r, &req); err != nil {
			respondError(w, err)
			return
		}
	}
	view, err := h.deps.CreateSession(r.Context(), strings.TrimSpace(req.Manager))
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /squads/{id} requests.
func (h *SquadsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_squad"
	view, err := h.deps.Squad(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /squads/{id} requests.
func (h *SquadsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_squad"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddPlayer handles POST /squads/{id}/players requests.
func (h *SquadsHandler) HandleAddPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_player"
	var req addPlayerRequest
	if err := decodeBody(op, w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		respondError(w, NewKind(op, ErrBadRequest))
		return
	}
	view, reason, err := h.deps.AddPlayer(r.Context(), r.PathValue("id"), playerID)
	h.writeDecision(w, op, view, reason, err)
}

// HandleRemovePlayer handles DELETE /squads/{id}/players/{player_id} requests.
func (h *SquadsHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_player"
	view, reason, err := h.deps.RemovePlayer(r.Context(), r.PathValue("id"), r.PathValue("player_id"))
	h.writeDecision(w, op, view, reason, err)
}

// HandleReset handles POST /squads/{id}/reset requests.
func (h *SquadsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_squad"
	view, err := h.deps.ResetSquad(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleFormation handles PUT /squads/{id}/formation requests.
func (h *SquadsHandler) HandleFormation(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_formation"
	var req formationRequest
	if err := decodeBody(op, w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	f, err := model.ParseFormation(req.Formation)
	if err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.SetFormation(r.Context(), r.PathValue("id"), f)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SquadsHandler) writeDecision(w http.ResponseWriter, op string, view types.SquadView, reason squad.Reason, err error) {
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	if reason != squad.ReasonNone {
		writeJSON(w, http.StatusConflict, rejectionResponse{
			errorResponse: errorResponse{Code: string(reason), Message: reason.Message()},
			Squad:         view,
		})
		return
	}
	writeJSON(w, http.StatusOK, view)
}
