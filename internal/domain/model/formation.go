package model

import (
	"fmt"
	"strings"
)

// Formation is a display-only arrangement label. It never affects squad validity.
type Formation string

// Supported formations.
const (
	Formation442 Formation = "4-4-2"
	Formation433 Formation = "4-3-3"
	Formation343 Formation = "3-4-3"
	Formation352 Formation = "3-5-2"
	Formation532 Formation = "5-3-2"
)

// DefaultFormation is used for new and reset squads.
const DefaultFormation = Formation442

// Formations lists the supported formations in menu order.
var Formations = []Formation{Formation442, Formation433, Formation343, Formation352, Formation532}

// ParseFormation validates a formation label.
func ParseFormation(s string) (Formation, error) {
	f := Formation(strings.TrimSpace(s))
	for _, known := range Formations {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormation, s)
}
