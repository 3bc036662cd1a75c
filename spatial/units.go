// Copyright 2025 The Locamap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"strings"
)

// Unit is the distance unit used for search radii and displayed distances.
type Unit int

const (
	// Kilometers is the metric unit. It is also the unit the query webhook expects.
	Kilometers Unit = iota
	// Miles is the statute mile.
	Miles
)

const (
	metersPerKilometer = 1000
	metersPerMile      = 1609.34
	kilometersPerMile  = 1.60934
)

// ParseUnit parses the user facing names of a unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kms", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	default:
		return Kilometers, fmt.Errorf("spatial: unknown unit %q", s)
	}
}

// String returns the short name of the unit.
func (u Unit) String() string {
	if u == Miles {
		return "mi"
	}

	return "km"
}

// Label returns the unit name as shown in headers ("km" or "miles").
func (u Unit) Label() string {
	if u == Miles {
		return "miles"
	}

	return "km"
}

// EarthRadius returns the mean Earth radius expressed in the unit.
func (u Unit) EarthRadius() float64 {
	if u == Miles {
		return 3959
	}

	return 6371
}

// ToMeters converts a distance expressed in the unit to meters.
func (u Unit) ToMeters(d float64) float64 {
	if u == Miles {
		return d * metersPerMile
	}

	return d * metersPerKilometer
}

// ToKilometers converts a distance expressed in the unit to kilometers.
func (u Unit) ToKilometers(d float64) float64 {
	if u == Miles {
		return d * kilometersPerMile
	}

	return d
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}

	*u = parsed

	return nil
}
