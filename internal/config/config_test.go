package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/squadkit/internal/config"
	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/squad"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.SourceTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.RelayMaxAge(), convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("And the squad limits match the classic rules", func() {
			limits, err := cfg.SquadLimits()
			convey.So(err, convey.ShouldBeNil)
			convey.So(limits, convey.ShouldResemble, squad.DefaultLimits())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"blank addr", func(c *config.Config) { c.Addr = "  " }},
			{"no bootstrap sources", func(c *config.Config) { c.BootstrapSources = []string{" "} }},
			{"zero timeout", func(c *config.Config) { c.SourceTimeoutMS = 0 }},
			{"zero payload cap", func(c *config.Config) { c.MaxPayloadBytes = 0 }},
			{"zero leaderboard limit", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"negative refresh", func(c *config.Config) { c.RefreshIntervalSec = -1 }},
			{"zero session ttl", func(c *config.Config) { c.SessionTTLSec = 0 }},
			{"relay without upstream", func(c *config.Config) { c.RelayUpstream = "" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unknown position", func(c *config.Config) { c.PositionLimits["gkp"] = 1 }},
			{"limits off by one", func(c *config.Config) { c.SquadSize = 14 }},
			{"zero club cap", func(c *config.Config) { c.ClubCap = 0 }},
		}

		for _, tc := range cases {
			convey.Convey("When it has a "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then it is rejected", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When the relay is disabled its upstream is not needed", func() {
			cfg.RelayEnabled = false
			cfg.RelayUpstream = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the budget has hundredths it is rounded to tenths", func() {
			cfg.StartingBudget = 99.96
			limits, err := cfg.SquadLimits()
			convey.So(err, convey.ShouldBeNil)
			convey.So(limits.StartingBudget, convey.ShouldEqual, model.Price(1000))
		})
	})
}
