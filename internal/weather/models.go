package weather

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Unit is the temperature unit a Reading is expressed in.
type Unit string

const (
	UnitCelsius    Unit = "C"
	UnitFahrenheit Unit = "F"
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	return u == UnitCelsius || u == UnitFahrenheit
}

var (
	// ErrIncompleteReading is returned when a provider response lacks one of the
	// fields every Reading must carry.
	ErrIncompleteReading = errors.New("incomplete weather reading")
)

// Reading is one fetched weather result for a single location at a point in time.
// Readings are values: a new search produces a new Reading, never a mutated one.
type Reading struct {
	Temperature  float64   `json:"temperature"`
	Unit         Unit      `json:"unit"`
	Condition    string    `json:"condition"`
	LocationName string    `json:"location"`
	Provider     string    `json:"provider,omitempty"`
	ObservedAt   time.Time `json:"observedAt"` // UTC, zero when the provider does not report it
}

// NewReading builds a Reading and checks its invariants: a finite temperature in a
// known unit, plus a non-empty condition and location name.
func NewReading(temperature float64, unit Unit, condition, locationName string) (Reading, error) {
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return Reading{}, ErrIncompleteReading
	}
	if !unit.Valid() {
		return Reading{}, ErrIncompleteReading
	}
	condition = strings.TrimSpace(condition)
	locationName = strings.TrimSpace(locationName)
	if condition == "" || locationName == "" {
		return Reading{}, ErrIncompleteReading
	}

	return Reading{
		Temperature:  temperature,
		Unit:         unit,
		Condition:    condition,
		LocationName: locationName,
	}, nil
}

// In returns a copy of r converted to unit. Unknown units leave the copy unchanged.
func (r Reading) In(unit Unit) Reading {
	if r.Unit == unit || !unit.Valid() {
		return r
	}

	out := r
	switch unit {
	case UnitFahrenheit:
		out.Temperature = roundTenth(r.Temperature*9/5 + 32)
	case UnitCelsius:
		out.Temperature = roundTenth((r.Temperature - 32) * 5 / 9)
	}
	out.Unit = unit
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
