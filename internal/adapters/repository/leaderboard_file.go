package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultEntries is the built-in leaderboard used when no file is usable.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "Peter", Points: 180},
		{Name: "Carios", Points: 165},
		{Name: "Bruno", Points: 150},
	}
}

// LoadEntries reads a JSON array of {name, points} objects. It always
// returns usable entries: when the file is missing, malformed or empty
// the defaults come back together with an error saying why.
func LoadEntries(path string) ([]Entry, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultEntries(), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultEntries(), fmt.Errorf("%w: %s does not exist", ErrLeaderboard, path)
		}
		return DefaultEntries(), fmt.Errorf("%w: %v", ErrLeaderboard, err)
	}

	var raw []struct {
		Name   string `json:"name"`
		Points int    `json:"points"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return DefaultEntries(), fmt.Errorf("%w: %v", ErrLeaderboard, err)
	}

	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		out = append(out, Entry{Name: name, Points: r.Points})
	}
	if len(out) == 0 {
		return DefaultEntries(), fmt.Errorf("%w: %s has no entries", ErrLeaderboard, path)
	}
	return out, nil
}
