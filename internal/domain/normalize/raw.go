// Package normalize decodes provider payloads and maps them into canonical
// domain entities. Decoding is the only place where upstream shapes are
// trusted; everything past Players and Fixtures works on model types.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bootstrap is the decoded reference payload: every team and element of a season.
type Bootstrap struct {
	Teams    []RawTeam    `json:"teams"`
	Elements []RawElement `json:"elements"`
}

// RawTeam is a provider team record.
type RawTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawElement is a provider player record.
type RawElement struct {
	ID          int        `json:"id"`
	FirstName   string     `json:"first_name"`
	SecondName  string     `json:"second_name"`
	WebName     string     `json:"web_name"`
	Team        int        `json:"team"`
	ElementType int        `json:"element_type"`
	NowCost     Cost       `json:"now_cost"`
	Form        FlexString `json:"form"`
}

// RawFixture is a provider fixture record.
type RawFixture struct {
	ID          int     `json:"id"`
	Event       *int    `json:"event"`
	KickoffTime *string `json:"kickoff_time"`
	TeamH       int     `json:"team_h"`
	TeamA       int     `json:"team_a"`
	Finished    bool    `json:"finished"`
}

// Cost is a provider price in tenths of a currency unit.
type Cost int64

// UnmarshalJSON accepts 55, 55.0 and "55", rounding fractional tenths half
// away from zero. Anything else fails the decode.
func (c *Cost) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("now_cost %q: %w", b, err)
	}
	*c = Cost(d.Round(0).IntPart())
	return nil
}

// FlexString holds a value the provider sends either as a JSON string or a number.
type FlexString string

// UnmarshalJSON accepts "8.4", 8.4 and null. Any other JSON value decodes
// to the empty string so one odd field cannot reject a whole payload.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// DecodeBootstrap decodes and validates a bootstrap document.
func DecodeBootstrap(body []byte) (Bootstrap, error) {
	var probe struct {
		Teams    json.RawMessage `json:"teams"`
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Bootstrap{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !isArray(probe.Elements) {
		return Bootstrap{}, fmt.Errorf("%w: elements must be an array", ErrDecode)
	}
	if len(probe.Teams) > 0 && !isArray(probe.Teams) && !bytes.Equal(probe.Teams, []byte("null")) {
		return Bootstrap{}, fmt.Errorf("%w: teams must be an array", ErrDecode)
	}

	var out Bootstrap
	if err := json.Unmarshal(body, &out); err != nil {
		return Bootstrap{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	for i, e := range out.Elements {
		if e.ID == 0 {
			return Bootstrap{}, fmt.Errorf("%w: element %d has no id", ErrDecode, i)
		}
	}
	return out, nil
}

// DecodeFixtures decodes and validates a fixtures document.
func DecodeFixtures(body []byte) ([]RawFixture, error) {
	if !isArray(bytes.TrimSpace(body)) {
		return nil, fmt.Errorf("%w: fixtures must be an array", ErrDecode)
	}
	var out []RawFixture
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
