// Copyright 2025 The Locamap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether both coordinates are finite and inside the WGS84 ranges.
func (p Point) Valid() bool {
	return ValidLatitude(p.Lat) && ValidLongitude(p.Lng)
}

// ValidLatitude reports whether lat is finite and within [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is finite and within [-180, 180].
func ValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && !math.IsInf(lng, 0) && lng >= -180 && lng <= 180
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	return haversine(*p, *other, earthRadius)
}

// DistanceIn calculates the great-circle distance between two points in the given unit.
func DistanceIn(a, b Point, unit Unit) float64 {
	return haversine(a, b, unit.EarthRadius())
}

func haversine(p, other Point, radius float64) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}
