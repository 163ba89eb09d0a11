// Package scoring turns a squad into the points shown on the leaderboard.
package scoring

import (
	"math"

	"github.com/okian/squadkit/internal/domain/model"
)

// DefaultUnknownForm is credited for players whose form the provider did not report.
const DefaultUnknownForm = 6.0

// Option applies a configuration option to the FormScorer.
type Option func(*FormScorer)

// WithUnknownForm sets the form credited to players without a form value.
func WithUnknownForm(v float64) Option {
	return func(s *FormScorer) {
		if v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			s.unknownForm = v
		}
	}
}

// FormScorer scores a squad as the rounded sum of its players' form.
type FormScorer struct {
	unknownForm float64
}

// NewFormScorer creates a scorer with configuration options.
func NewFormScorer(opts ...Option) *FormScorer {
	s := &FormScorer{unknownForm: DefaultUnknownForm}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Points returns round(sum(form)) over players. An empty squad scores zero.
func (s *FormScorer) Points(players []model.Player) int {
	var sum float64
	for _, p := range players {
		sum += p.FormOr(s.unknownForm)
	}
	return int(math.Round(sum))
}

// SquadPoints scores players with the default configuration.
func SquadPoints(players []model.Player) int {
	return NewFormScorer().Points(players)
}
