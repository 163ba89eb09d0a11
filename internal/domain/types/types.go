// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/squadkit/internal/domain/model"
)

// Entry represents a leaderboard entry
type Entry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	You    bool   `json:"you,omitempty"`
}

// SquadView is the read shape of one manager's squad.
type SquadView struct {
	ID             string                 `json:"id"`
	Manager        string                 `json:"manager"`
	Players        []model.Player         `json:"players"`
	Formation      model.Formation        `json:"formation"`
	Budget         model.Price            `json:"budget"`
	Spent          model.Price            `json:"spent"`
	BudgetDisplay  string                 `json:"budget_display"`
	Size           int                    `json:"size"`
	MaxSize        int                    `json:"max_size"`
	Complete       bool                   `json:"complete"`
	PositionCounts map[model.Position]int `json:"position_counts"`
	ClubCounts     map[string]int         `json:"club_counts"`
	Points         int                    `json:"points"`
}

// PoolInfo summarises the applied player pool.
type PoolInfo struct {
	Generation     uint64    `json:"generation"`
	Players        int       `json:"players"`
	Fixtures       int       `json:"fixtures"`
	PlayersSource  string    `json:"players_source"`
	FixturesSource string    `json:"fixtures_source"`
	Degraded       bool      `json:"degraded"`
	Notices        []string  `json:"notices,omitempty"`
	LoadedAt       time.Time `json:"loaded_at"`
	Applied        bool      `json:"applied"`
}
