// Package model contains the canonical domain entities shared by the
// loader, the squad engine and the HTTP layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Position is one of the four squad roles governing per-position quotas.
type Position string

// Positions in display order.
const (
	GK  Position = "GK"
	DEF Position = "DEF"
	MID Position = "MID"
	FWD Position = "FWD"
)

// Positions lists every position in display order.
var Positions = []Position{GK, DEF, MID, FWD}

// ParsePosition parses a position label case-insensitively.
func ParsePosition(s string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK":
		return GK, nil
	case "DEF":
		return DEF, nil
	case "MID":
		return MID, nil
	case "FWD":
		return FWD, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// Player is a selectable footballer. Values are never mutated after
// normalization; the squad stores copies.
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Club     string   `json:"club"`
	Position Position `json:"position"`
	Price    Price    `json:"price"`
	// Form is nil when the provider sent no parseable value.
	Form *float64 `json:"form,omitempty"`
}

// FormOr returns the form score or def when unknown.
func (p Player) FormOr(def float64) float64 {
	if p.Form == nil {
		return def
	}
	return *p.Form
}

// Team is a real-world club as listed by the provider.
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Fixture is a scheduled match with team ids resolved to names.
type Fixture struct {
	ID       string    `json:"id"`
	Event    *int      `json:"event,omitempty"`
	Kickoff  time.Time `json:"kickoff_utc"`
	Home     string    `json:"home"`
	Away     string    `json:"away"`
	Finished bool      `json:"finished"`
}
