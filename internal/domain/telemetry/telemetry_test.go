package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/okian/fleetbench/internal/domain/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPayloadRoundTrip(t *testing.T) {
	Convey("Given a fresh telemetry payload", t, func() {
		now := time.Now()
		p := telemetry.New(now)

		Convey("When encoding and decoding it", func() {
			blob, err := telemetry.Encode(p)
			So(err, ShouldBeNil)
			So(blob, ShouldNotBeEmpty)

			decoded, err := telemetry.Decode(blob)

			Convey("Then all sensor fields survive the round trip", func() {
				So(err, ShouldBeNil)
				So(decoded.OdometerKM, ShouldEqual, p.OdometerKM)
				So(decoded.FuelLevelPct, ShouldEqual, p.FuelLevelPct)
				So(decoded.EngineTempC, ShouldEqual, p.EngineTempC)
				So(decoded.BatteryVoltage, ShouldEqual, p.BatteryVoltage)
				So(decoded.TirePressureKPa, ShouldResemble, p.TirePressureKPa)
				So(decoded.RecordedAt.Equal(p.RecordedAt), ShouldBeTrue)
			})
		})
	})
}

func TestMutate(t *testing.T) {
	Convey("Given an encoded telemetry payload", t, func() {
		created := time.Now().Add(-time.Hour)
		blob, err := telemetry.Encode(telemetry.New(created))
		So(err, ShouldBeNil)

		Convey("When mutating it", func() {
			now := time.Now()
			mutated, err := telemetry.Mutate(blob, now)
			So(err, ShouldBeNil)

			decoded, err := telemetry.Decode(mutated)
			So(err, ShouldBeNil)

			Convey("Then the recording time is stamped to the mutation time", func() {
				So(decoded.RecordedAt.Equal(now.UTC()), ShouldBeTrue)
			})

			Convey("And sensor values stay within their ranges", func() {
				So(decoded.FuelLevelPct, ShouldBeBetweenOrEqual, 0, 100)
				So(decoded.EngineTempC, ShouldBeBetweenOrEqual, 70, 110)
				So(decoded.BatteryVoltage, ShouldBeBetweenOrEqual, 11.5, 14.8)
				So(len(decoded.DiagnosticCodes), ShouldBeLessThanOrEqualTo, 8)
			})
		})

		Convey("When mutating repeatedly", func() {
			current := blob
			var lastOdometer float64
			for i := 0; i < 50; i++ {
				var err error
				current, err = telemetry.Mutate(current, time.Now())
				So(err, ShouldBeNil)

				decoded, err := telemetry.Decode(current)
				So(err, ShouldBeNil)

				// The odometer never moves backwards.
				So(decoded.OdometerKM, ShouldBeGreaterThanOrEqualTo, lastOdometer)
				lastOdometer = decoded.OdometerKM
			}
		})
	})
}

func TestDecodeCorruptPayload(t *testing.T) {
	Convey("Given corrupted blobs", t, func() {
		Convey("When decoding an empty blob", func() {
			_, err := telemetry.Decode(nil)

			Convey("Then a corrupt payload error is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, telemetry.ErrCorruptPayload), ShouldBeTrue)
			})
		})

		Convey("When decoding a valid snappy frame carrying invalid JSON", func() {
			blob := snappy.Encode(nil, []byte("{not json"))
			_, err := telemetry.Decode(blob)

			Convey("Then a corrupt payload error is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, telemetry.ErrCorruptPayload), ShouldBeTrue)
			})
		})
	})
}
