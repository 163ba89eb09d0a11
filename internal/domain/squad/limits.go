// Package squad owns the squad-building state machine and its constraints.
//
// A Store is Building while it holds fewer than Limits.TotalSquadSize
// players and Complete when it is full; completion is derived, never
// stored. Every mutation is checked by the Validator against the state
// before the mutation and either commits fully or not at all.
package squad

import (
	"fmt"

	"github.com/okian/squadkit/internal/domain/model"
)

// Default limits of a classic fantasy squad.
const (
	DefaultSquadSize = 15
	DefaultClubCap   = 3
	// DefaultStartingBudget is 100.0 in tenths.
	DefaultStartingBudget = model.Price(1000)
)

// Limits is the static squad configuration.
type Limits struct {
	TotalSquadSize int
	PerPosition    map[model.Position]int
	ClubCap        int
	StartingBudget model.Price
}

// DefaultLimits returns 15 players, {GK:2, DEF:5, MID:5, FWD:3}, 3 per club and 100.0.
func DefaultLimits() Limits {
	return Limits{
		TotalSquadSize: DefaultSquadSize,
		PerPosition: map[model.Position]int{
			model.GK:  2,
			model.DEF: 5,
			model.MID: 5,
			model.FWD: 3,
		},
		ClubCap:        DefaultClubCap,
		StartingBudget: DefaultStartingBudget,
	}
}

// Validate checks the configuration itself. The per-position caps must sum
// to the squad size; this is assumed, not re-checked, at mutation time.
func (l Limits) Validate() error {
	if l.TotalSquadSize <= 0 {
		return fmt.Errorf("%w: squad size must be positive", ErrInvalidLimits)
	}
	if l.ClubCap <= 0 {
		return fmt.Errorf("%w: club cap must be positive", ErrInvalidLimits)
	}
	if l.StartingBudget < 0 {
		return fmt.Errorf("%w: starting budget must not be negative", ErrInvalidLimits)
	}
	sum := 0
	for _, pos := range model.Positions {
		n, ok := l.PerPosition[pos]
		if !ok || n < 0 {
			return fmt.Errorf("%w: missing limit for %s", ErrInvalidLimits, pos)
		}
		sum += n
	}
	if sum != l.TotalSquadSize {
		return fmt.Errorf("%w: position limits sum to %d, squad size is %d", ErrInvalidLimits, sum, l.TotalSquadSize)
	}
	return nil
}

func (l Limits) clone() Limits {
	per := make(map[model.Position]int, len(l.PerPosition))
	for k, v := range l.PerPosition {
		per[k] = v
	}
	l.PerPosition = per
	return l
}
