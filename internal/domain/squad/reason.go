package squad

import "errors"

// Reason identifies why a squad mutation was rejected. The zero value means accepted.
type Reason string

// Rejection reasons, in the order the add checks run.
const (
	ReasonNone                 Reason = ""
	ReasonDuplicatePlayer      Reason = "duplicate_player"
	ReasonSquadFull            Reason = "squad_full"
	ReasonInsufficientBudget   Reason = "insufficient_budget"
	ReasonPositionLimitReached Reason = "position_limit_reached"
	ReasonClubCapReached       Reason = "club_cap_reached"
	ReasonNotInSquad           Reason = "not_in_squad"
)

// Sentinel errors mirroring each Reason so callers can use errors.Is.
var (
	ErrDuplicatePlayer      = errors.New("player already in your squad")
	ErrSquadFull            = errors.New("squad is full")
	ErrInsufficientBudget   = errors.New("insufficient budget")
	ErrPositionLimitReached = errors.New("position limit reached")
	ErrClubCapReached       = errors.New("club cap reached")
	ErrNotInSquad           = errors.New("player not in squad")
	ErrInvalidLimits        = errors.New("invalid squad limits")
)

var reasonErrors = map[Reason]error{
	ReasonDuplicatePlayer:      ErrDuplicatePlayer,
	ReasonSquadFull:            ErrSquadFull,
	ReasonInsufficientBudget:   ErrInsufficientBudget,
	ReasonPositionLimitReached: ErrPositionLimitReached,
	ReasonClubCapReached:       ErrClubCapReached,
	ReasonNotInSquad:           ErrNotInSquad,
}

var reasonMessages = map[Reason]string{
	ReasonDuplicatePlayer:      "Player already in your squad.",
	ReasonSquadFull:            "You already have a full squad.",
	ReasonInsufficientBudget:   "Insufficient budget.",
	ReasonPositionLimitReached: "You cannot add more players in this position.",
	ReasonClubCapReached:       "You already have the maximum number of players from this club.",
	ReasonNotInSquad:           "Player is not in your squad.",
}

// Err returns the sentinel error for r, or nil for ReasonNone.
func (r Reason) Err() error { return reasonErrors[r] }

// Message returns a user-facing sentence for r.
func (r Reason) Message() string { return reasonMessages[r] }
