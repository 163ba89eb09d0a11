package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/squadkit/internal/domain/model"
	types "github.com/okian/squadkit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given leaderboard entries", t, func() {
		Convey("When the entry is another manager", func() {
			b, err := json.Marshal(types.Entry{Rank: 2, Name: "Peter", Points: 180})

			Convey("Then the you flag is omitted", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"rank":2,"name":"Peter","points":180}`)
			})
		})

		Convey("When the entry is the caller", func() {
			b, _ := json.Marshal(types.Entry{Rank: 1, Name: "Ann", Points: 200, You: true})
			So(string(b), ShouldContainSubstring, `"you":true`)
		})
	})
}

func TestSquadViewJSON(t *testing.T) {
	Convey("Given a squad view", t, func() {
		v := types.SquadView{
			ID:             "s1",
			Manager:        "Ann",
			Players:        []model.Player{},
			Formation:      model.DefaultFormation,
			Budget:         model.PriceFromTenths(875),
			Spent:          model.PriceFromTenths(125),
			PositionCounts: map[model.Position]int{model.MID: 1},
			ClubCounts:     map[string]int{"Liverpool": 1},
		}
		b, err := json.Marshal(v)

		Convey("Then prices encode with one decimal and positions key the counts", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"budget":87.5`)
			So(string(b), ShouldContainSubstring, `"spent":12.5`)
			So(string(b), ShouldContainSubstring, `"position_counts":{"MID":1}`)
			So(string(b), ShouldContainSubstring, `"formation":"4-4-2"`)
		})
	})
}
