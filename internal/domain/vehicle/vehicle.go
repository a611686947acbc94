// Package vehicle defines the vehicle record and VIN generation helpers.
package vehicle

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// VIN layout constants.
const (
	vinLength       = 17
	wmiLength       = 3
	indexSuffixLen  = 6
	randomMiddleLen = vinLength - wmiLength - indexSuffixLen
)

// vinChars is the VIN alphabet: uppercase letters excluding I, O and Q, plus digits.
const vinChars = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

// wmiPrefixes are world manufacturer identifier prefixes used for generated VINs.
var wmiPrefixes = []string{"WP0", "1HG", "WBA", "JTD", "WVW", "1G1", "KNA", "YV1", "TMB", "VF3"}

// brands are manufacturer names used when seeding records.
var brands = []string{
	"Porsche", "BMW", "Mercedes-Benz", "Audi", "Toyota",
	"Honda", "Ford", "Chevrolet", "Volkswagen", "Nissan",
}

// countries are ISO 3166-1 alpha-2 origin codes used when seeding records.
var countries = []string{"DE", "US", "JP", "UK", "FR", "IT", "KR", "SE", "CZ", "ES"}

// Record represents one telemetry-bearing vehicle row.
type Record struct {
	// VIN is the primary key; immutable after creation.
	VIN string

	// Brand and Country are static descriptive attributes.
	Brand   string
	Country string

	// CreatedAt is set once at creation.
	CreatedAt time.Time

	// UpdatedAt advances on every successful write.
	UpdatedAt time.Time

	// Payload is the encoded, compressed telemetry blob.
	Payload []byte

	// Fleet marks fleet-operated vehicles.
	Fleet bool
}

// GenerateVIN produces a 17-character VIN with a random WMI prefix, random
// middle section and a zero-padded index suffix that keeps generated VINs
// unique per seeding run.
func GenerateVIN(index int) string {
	wmi := wmiPrefixes[randomIndex(len(wmiPrefixes))]

	middle := make([]byte, randomMiddleLen)
	for i := range middle {
		middle[i] = vinChars[randomIndex(len(vinChars))]
	}

	return fmt.Sprintf("%s%s%06d", wmi, middle, index%1_000_000)
}

// RandomBrand returns a random manufacturer name.
func RandomBrand() string {
	return brands[randomIndex(len(brands))]
}

// RandomCountry returns a random origin code.
func RandomCountry() string {
	return countries[randomIndex(len(countries))]
}

// RandomFleetFlag returns a random fleet classification.
func RandomFleetFlag() bool {
	return randomIndex(2) == 1
}

// randomIndex returns a uniform random int in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
