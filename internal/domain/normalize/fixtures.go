package normalize

import (
	"sort"
	"strconv"
	"time"

	"github.com/okian/squadkit/internal/domain/model"
)

// Fixtures resolves team ids to names and parses kickoff times. Fixtures
// without a parseable kickoff are dropped; they cannot be scheduled.
func Fixtures(raw []RawFixture, teams map[int]string) []model.Fixture {
	out := make([]model.Fixture, 0, len(raw))
	for _, f := range raw {
		if f.KickoffTime == nil {
			continue
		}
		kickoff, err := time.Parse(time.RFC3339, *f.KickoffTime)
		if err != nil {
			continue
		}
		out = append(out, model.Fixture{
			ID:       strconv.Itoa(f.ID),
			Event:    f.Event,
			Kickoff:  kickoff.UTC(),
			Home:     teamName(teams, f.TeamH),
			Away:     teamName(teams, f.TeamA),
			Finished: f.Finished,
		})
	}
	return out
}

// Upcoming returns up to limit fixtures kicking off after now, soonest
// first. A non-positive limit returns all of them.
func Upcoming(fixtures []model.Fixture, now time.Time, limit int) []model.Fixture {
	out := make([]model.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Kickoff.After(now) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			return out[i].Kickoff.Before(out[j].Kickoff)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Next returns the soonest upcoming fixture.
func Next(fixtures []model.Fixture, now time.Time) (model.Fixture, bool) {
	up := Upcoming(fixtures, now, 1)
	if len(up) == 0 {
		return model.Fixture{}, false
	}
	return up[0], true
}
