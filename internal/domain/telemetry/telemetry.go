// Package telemetry implements the vehicle telemetry payload codec and mutator.
//
// A payload travels as JSON compressed with snappy. Mutation decodes the
// blob, updates a randomized subset of sensor and diagnostic fields, stamps
// the recording time and re-encodes. No I/O, no shared state; every
// invocation works on its own decoded copy.
package telemetry

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/golang/snappy"
)

// Sensor value ranges.
const (
	odometerStepMaxKM  = 50.0
	fuelLevelMaxPct    = 100.0
	engineTempMinC     = 70.0
	engineTempRangeC   = 40.0
	batteryMinV        = 11.5
	batteryRangeV      = 3.3
	tirePressureMinKPa = 180.0
	tirePressureRange  = 80.0
	tireCount          = 4
)

// Diagnostic code handling.
const (
	maxDiagnosticCodes = 8
	dtcAddChance       = 4 // one in N mutations appends a code
	dtcClearChance     = 6 // one in N mutations clears all codes
)

// diagnosticCodes is the pool of OBD-II trouble codes drawn from during mutation.
var diagnosticCodes = []string{
	"P0101", "P0171", "P0300", "P0420", "P0442", "P0455", "P0500", "C1201", "U0100", "B1342",
}

// Payload is the decoded telemetry entry set for one vehicle.
type Payload struct {
	OdometerKM      float64   `json:"odometer_km"`
	FuelLevelPct    float64   `json:"fuel_level_pct"`
	EngineTempC     float64   `json:"engine_temp_c"`
	BatteryVoltage  float64   `json:"battery_voltage"`
	TirePressureKPa []float64 `json:"tire_pressure_kpa"`
	DiagnosticCodes []string  `json:"diagnostic_codes"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// New produces a payload with randomized initial sensor values.
func New(now time.Time) *Payload {
	tires := make([]float64, tireCount)
	for i := range tires {
		tires[i] = tirePressureMinKPa + randomFloat()*tirePressureRange
	}

	return &Payload{
		OdometerKM:      randomFloat() * 200_000,
		FuelLevelPct:    randomFloat() * fuelLevelMaxPct,
		EngineTempC:     engineTempMinC + randomFloat()*engineTempRangeC,
		BatteryVoltage:  batteryMinV + randomFloat()*batteryRangeV,
		TirePressureKPa: tires,
		DiagnosticCodes: nil,
		RecordedAt:      now.UTC(),
	}
}

// Encode serializes a payload to its compressed wire form.
func Encode(p *Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode telemetry payload: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// Decode parses a compressed blob back into a payload.
func Decode(blob []byte) (*Payload, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	return &p, nil
}

// Mutate decodes a blob, applies sensor updates stamped at now, and
// re-encodes. The result always round-trips through Decode.
func Mutate(blob []byte, now time.Time) ([]byte, error) {
	p, err := Decode(blob)
	if err != nil {
		return nil, err
	}

	p.apply(now)

	return Encode(p)
}

// apply updates a randomized subset of sensor fields in place.
func (p *Payload) apply(now time.Time) {
	// Odometer only moves forward.
	p.OdometerKM += randomFloat() * odometerStepMaxKM

	if randomIndex(2) == 0 {
		p.FuelLevelPct = randomFloat() * fuelLevelMaxPct
	}
	if randomIndex(2) == 0 {
		p.EngineTempC = engineTempMinC + randomFloat()*engineTempRangeC
	}
	if randomIndex(2) == 0 {
		p.BatteryVoltage = batteryMinV + randomFloat()*batteryRangeV
	}

	if len(p.TirePressureKPa) == tireCount && randomIndex(2) == 0 {
		tire := randomIndex(tireCount)
		p.TirePressureKPa[tire] = tirePressureMinKPa + randomFloat()*tirePressureRange
	}

	switch {
	case randomIndex(dtcClearChance) == 0:
		p.DiagnosticCodes = nil
	case randomIndex(dtcAddChance) == 0 && len(p.DiagnosticCodes) < maxDiagnosticCodes:
		code := diagnosticCodes[randomIndex(len(diagnosticCodes))]
		p.DiagnosticCodes = append(p.DiagnosticCodes, code)
	}

	p.RecordedAt = now.UTC()
}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	const divisor = 1_000_000
	n, _ := rand.Int(rand.Reader, big.NewInt(divisor))
	return float64(n.Int64()) / float64(divisor)
}

// randomIndex returns a uniform random int in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
