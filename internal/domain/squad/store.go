package squad

import (
	"slices"

	"github.com/okian/squadkit/internal/domain/model"
)

// Decision is the outcome of a squad mutation. A rejected decision leaves
// the store untouched.
type Decision struct {
	Reason Reason
	// Player is the player added or removed; zero on rejection of an unknown id.
	Player model.Player
	// Budget is the remaining budget after the call.
	Budget model.Price
}

// OK reports whether the mutation committed.
func (d Decision) OK() bool { return d.Reason == ReasonNone }

// Err returns the sentinel error for a rejection, nil when committed.
func (d Decision) Err() error { return d.Reason.Err() }

// Store is the single owner of one squad's state. It is not safe for
// concurrent use; callers serving several goroutines must serialize access.
type Store struct {
	limits    Limits
	validator Validator

	players   []model.Player
	budget    model.Price
	formation model.Formation
}

// NewStore returns an empty squad with the starting budget.
func NewStore(limits Limits) *Store {
	limits = limits.clone()
	return &Store{
		limits:    limits,
		validator: NewValidator(limits),
		players:   make([]model.Player, 0, limits.TotalSquadSize),
		budget:    limits.StartingBudget,
		formation: model.DefaultFormation,
	}
}

// TryAdd appends p and debits its price when every add check passes.
func (s *Store) TryAdd(p model.Player) Decision {
	if r := s.validator.CheckAdd(s.players, s.budget, p); r != ReasonNone {
		return Decision{Reason: r, Player: p, Budget: s.budget}
	}
	s.players = append(s.players, p)
	s.budget -= p.Price
	return Decision{Player: p, Budget: s.budget}
}

// TryRemove removes the player with id and refunds exactly its price.
func (s *Store) TryRemove(id string) Decision {
	if r := s.validator.CheckRemove(s.players, id); r != ReasonNone {
		return Decision{Reason: r, Budget: s.budget}
	}
	i := indexOf(s.players, id)
	p := s.players[i]
	s.players = slices.Delete(s.players, i, i+1)
	s.budget += p.Price
	return Decision{Player: p, Budget: s.budget}
}

// Reset empties the squad and restores the starting budget and formation.
func (s *Store) Reset() {
	s.players = s.players[:0]
	s.budget = s.limits.StartingBudget
	s.formation = model.DefaultFormation
}

// Players returns a copy of the squad in insertion order.
func (s *Store) Players() []model.Player {
	return slices.Clone(s.players)
}

// Has reports whether id is in the squad.
func (s *Store) Has(id string) bool { return indexOf(s.players, id) >= 0 }

// Budget returns the remaining budget.
func (s *Store) Budget() model.Price { return s.budget }

// Spent returns the amount committed to selected players.
func (s *Store) Spent() model.Price { return s.limits.StartingBudget - s.budget }

// Len returns the number of selected players.
func (s *Store) Len() int { return len(s.players) }

// Remaining returns how many more players are needed to complete the squad.
func (s *Store) Remaining() int { return s.limits.TotalSquadSize - len(s.players) }

// Complete reports whether the squad is full. Every mutation preserves the
// other invariants, so a full squad is always a valid one.
func (s *Store) Complete() bool { return len(s.players) == s.limits.TotalSquadSize }

// Limits returns a copy of the store's limits.
func (s *Store) Limits() Limits { return s.limits.clone() }

// PositionCounts returns the number of selected players per position.
func (s *Store) PositionCounts() map[model.Position]int {
	out := make(map[model.Position]int, len(model.Positions))
	for _, pos := range model.Positions {
		out[pos] = 0
	}
	for i := range s.players {
		out[s.players[i].Position]++
	}
	return out
}

// ClubCounts returns the number of selected players per club.
func (s *Store) ClubCounts() map[string]int {
	out := make(map[string]int)
	for i := range s.players {
		out[s.players[i].Club]++
	}
	return out
}

// Formation returns the display formation.
func (s *Store) Formation() model.Formation { return s.formation }

// SetFormation changes the display formation; it has no effect on validity.
func (s *Store) SetFormation(f model.Formation) { s.formation = f }
