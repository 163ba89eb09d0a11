package squad

import "github.com/okian/squadkit/internal/domain/model"

// Validator holds the pure predicates consulted before a mutation commits.
type Validator struct {
	limits Limits
}

// NewValidator returns a validator for the given limits.
func NewValidator(limits Limits) Validator {
	return Validator{limits: limits}
}

// CheckAdd evaluates the add checks in their fixed order and returns the
// first failure. The order decides which message the user sees when more
// than one check fails.
func (v Validator) CheckAdd(players []model.Player, budget model.Price, p model.Player) Reason {
	if indexOf(players, p.ID) >= 0 {
		return ReasonDuplicatePlayer
	}
	if len(players) >= v.limits.TotalSquadSize {
		return ReasonSquadFull
	}
	if budget < p.Price {
		return ReasonInsufficientBudget
	}
	if countPosition(players, p.Position) >= v.limits.PerPosition[p.Position] {
		return ReasonPositionLimitReached
	}
	if countClub(players, p.Club) >= v.limits.ClubCap {
		return ReasonClubCapReached
	}
	return ReasonNone
}

// CheckRemove reports ReasonNotInSquad when id is absent.
func (v Validator) CheckRemove(players []model.Player, id string) Reason {
	if indexOf(players, id) < 0 {
		return ReasonNotInSquad
	}
	return ReasonNone
}

func indexOf(players []model.Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}

func countPosition(players []model.Player, pos model.Position) int {
	n := 0
	for i := range players {
		if players[i].Position == pos {
			n++
		}
	}
	return n
}

func countClub(players []model.Player, club string) int {
	n := 0
	for i := range players {
		if players[i].Club == club {
			n++
		}
	}
	return n
}
