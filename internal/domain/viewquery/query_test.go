package viewquery_test

import (
	"testing"

	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/viewquery"
	. "github.com/smartystreets/goconvey/convey"
)

func form(f float64) *float64 { return &f }

func pool() []model.Player {
	return []model.Player{
		{ID: "1", Name: "Saka", Club: "Arsenal", Position: model.MID, Price: 96, Form: form(8.4)},
		{ID: "2", Name: "Haaland", Club: "Man City", Position: model.FWD, Price: 140, Form: form(9.2)},
		{ID: "3", Name: "Raya", Club: "Arsenal", Position: model.GK, Price: 55},
		{ID: "4", Name: "Odegaard", Club: "Arsenal", Position: model.MID, Price: 96, Form: form(8.4)},
		{ID: "5", Name: "Gabriel", Club: "Arsenal", Position: model.DEF, Price: 60, Form: form(9.2)},
	}
}

func ids(rows []viewquery.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Player.ID)
	}
	return out
}

func TestQuery(t *testing.T) {
	Convey("Given a player pool", t, func() {
		p := pool()

		Convey("When sorting by value", func() {
			rows := viewquery.Query(p, nil, "", viewquery.SortValue)

			Convey("Then price desc breaks ties on form then name", func() {
				So(ids(rows), ShouldResemble, []string{"2", "4", "1", "5", "3"})
			})
		})

		Convey("When sorting by form", func() {
			rows := viewquery.Query(p, nil, "", viewquery.SortForm)

			Convey("Then unknown form sorts as zero", func() {
				So(ids(rows), ShouldResemble, []string{"5", "2", "4", "1", "3"})
			})
		})

		Convey("When filtering", func() {
			So(ids(viewquery.Query(p, nil, "arsenal", viewquery.SortValue)), ShouldResemble, []string{"4", "1", "5", "3"})
			So(ids(viewquery.Query(p, nil, "  HAA ", viewquery.SortValue)), ShouldResemble, []string{"2"})
			So(ids(viewquery.Query(p, nil, "gk", viewquery.SortValue)), ShouldResemble, []string{"3"})
			So(viewquery.Query(p, nil, "nobody", viewquery.SortValue), ShouldBeEmpty)
		})

		Convey("When some players are in the squad", func() {
			rows := viewquery.Query(p, []model.Player{p[2]}, "", viewquery.SortValue)

			Convey("Then they are flagged selected", func() {
				for _, r := range rows {
					So(r.Selected, ShouldEqual, r.Player.ID == "3")
				}
			})
		})

		Convey("Then the pool itself is left untouched", func() {
			viewquery.Query(p, nil, "", viewquery.SortForm)
			So(p, ShouldResemble, pool())
		})
	})
}

func TestParseSortKey(t *testing.T) {
	Convey("Given sort parameters", t, func() {
		So(viewquery.ParseSortKey("form"), ShouldEqual, viewquery.SortForm)
		So(viewquery.ParseSortKey(" FORM"), ShouldEqual, viewquery.SortForm)
		So(viewquery.ParseSortKey("value"), ShouldEqual, viewquery.SortValue)
		So(viewquery.ParseSortKey(""), ShouldEqual, viewquery.SortValue)
		So(viewquery.ParseSortKey("price"), ShouldEqual, viewquery.SortValue)
	})
}
