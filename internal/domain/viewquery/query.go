// Package viewquery derives the filtered, sorted player listing shown
// next to the squad. It never mutates the pool or the squad.
package viewquery

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/squadkit/internal/domain/model"
)

// SortKey selects the primary ordering of a listing.
type SortKey string

// Supported sort keys.
const (
	SortValue SortKey = "value"
	SortForm  SortKey = "form"
)

// ParseSortKey maps a query parameter to a SortKey. Anything unrecognised
// sorts by value.
func ParseSortKey(s string) SortKey {
	if strings.EqualFold(strings.TrimSpace(s), string(SortForm)) {
		return SortForm
	}
	return SortValue
}

// Row is a listed player and whether it is already in the squad.
type Row struct {
	Player   model.Player `json:"player"`
	Selected bool         `json:"selected"`
}

// Query filters pool by a case-insensitive substring of name, club or
// position and sorts it by key, then form, then name.
func Query(pool, squad []model.Player, filter string, key SortKey) []Row {
	selected := make(map[string]struct{}, len(squad))
	for _, p := range squad {
		selected[p.ID] = struct{}{}
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	rows := make([]Row, 0, len(pool))
	for _, p := range pool {
		if needle != "" && !matches(p, needle) {
			continue
		}
		_, in := selected[p.ID]
		rows = append(rows, Row{Player: p, Selected: in})
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return compare(a.Player, b.Player, key)
	})
	return rows
}

func matches(p model.Player, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Club), needle) ||
		strings.Contains(strings.ToLower(string(p.Position)), needle)
}

// compare orders descending on the primary key and form, ascending on name.
func compare(a, b model.Player, key SortKey) int {
	fa, fb := a.FormOr(0), b.FormOr(0)
	if key == SortForm {
		if c := cmp.Compare(fb, fa); c != 0 {
			return c
		}
	} else {
		if c := cmp.Compare(b.Price, a.Price); c != 0 {
			return c
		}
		if c := cmp.Compare(fb, fa); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Name, b.Name)
}
