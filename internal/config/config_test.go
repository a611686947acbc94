package config_test

import (
	"testing"

	"github.com/okian/fleetbench/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewDefaults(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New()

		Convey("Then run parameters carry their documented defaults", func() {
			So(cfg.Workers, ShouldEqual, 10)
			So(cfg.DurationS, ShouldEqual, 60)
			So(cfg.PoolSize, ShouldEqual, 50)
			So(cfg.Table, ShouldEqual, "vehicles")
			So(cfg.InitialRecords, ShouldEqual, 10_000_000)
			So(cfg.Recreate, ShouldBeFalse)
			So(cfg.ReportIntervalS, ShouldEqual, 10)
			So(cfg.GraceS, ShouldEqual, 10)
			So(cfg.LogLevel, ShouldEqual, "info")
		})

		Convey("And the connection block defaults to a local postgres target", func() {
			So(cfg.Connection.Port, ShouldEqual, 5432)
			So(cfg.Connection.Database, ShouldEqual, "postgres")
			So(cfg.Connection.User, ShouldEqual, "postgres")
			So(cfg.Connection.SSLMode, ShouldEqual, "require")
			So(cfg.Connection.Host, ShouldBeEmpty)
		})
	})
}
