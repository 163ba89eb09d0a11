package normalize

import (
	"strconv"
	"strings"

	"github.com/okian/squadkit/internal/domain/model"
	"github.com/shopspring/decimal"
)

// positionByType maps provider element_type codes to positions.
var positionByType = map[int]model.Position{
	1: model.GK,
	2: model.DEF,
	3: model.MID,
	4: model.FWD,
}

// TeamNames builds the team id lookup once per payload.
func TeamNames(b Bootstrap) map[int]string {
	out := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		if t.Name != "" {
			out[t.ID] = t.Name
		}
	}
	return out
}

// Teams returns the payload's teams as model values.
func Teams(b Bootstrap) []model.Team {
	names := TeamNames(b)
	out := make([]model.Team, 0, len(b.Teams))
	for _, t := range b.Teams {
		out = append(out, model.Team{ID: t.ID, Name: teamName(names, t.ID)})
	}
	return out
}

// Players maps every element to a Player, in payload order. Missing teams,
// unknown position codes and bad form values degrade instead of failing.
func Players(b Bootstrap) []model.Player {
	teams := TeamNames(b)
	out := make([]model.Player, 0, len(b.Elements))
	for _, e := range b.Elements {
		out = append(out, player(e, teams))
	}
	return out
}

func player(e RawElement, teams map[int]string) model.Player {
	pos, ok := positionByType[e.ElementType]
	if !ok {
		pos = model.MID
	}
	return model.Player{
		ID:       strconv.Itoa(e.ID),
		Name:     pickName(e),
		Club:     teamName(teams, e.Team),
		Position: pos,
		Price:    model.PriceFromTenths(int64(e.NowCost)),
		Form:     ParseForm(string(e.Form)),
	}
}

func pickName(e RawElement) string {
	if n := strings.TrimSpace(e.WebName); n != "" {
		return n
	}
	if full := strings.TrimSpace(e.FirstName + " " + e.SecondName); full != "" {
		return full
	}
	return "#" + strconv.Itoa(e.ID)
}

func teamName(teams map[int]string, id int) string {
	if n, ok := teams[id]; ok {
		return n
	}
	return "Team " + strconv.Itoa(id)
}

// ParseForm parses a decimal form string, returning nil when it is empty or
// not a number. Values are rounded to one decimal place.
func ParseForm(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f := d.Round(1).InexactFloat64()
	return &f
}
