// Copyright 2025 The Locamap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// Bounds is a latitude/longitude aligned rectangle.
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
	valid     bool
}

// NewBounds returns the smallest Bounds containing all the points.
func NewBounds(points ...Point) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.Extend(p)
	}

	return b
}

// Empty reports whether no point has been added to the bounds.
func (b Bounds) Empty() bool {
	return !b.valid
}

// Extend returns a copy of b grown to include p.
func (b Bounds) Extend(p Point) Bounds {
	if !b.valid {
		return Bounds{SouthWest: p, NorthEast: p, valid: true}
	}

	b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)

	return b
}

// Pad returns a copy of b enlarged by fraction of its size on every side.
func (b Bounds) Pad(fraction float64) Bounds {
	if !b.valid {
		return b
	}

	dLat := (b.NorthEast.Lat - b.SouthWest.Lat) * fraction
	dLng := (b.NorthEast.Lng - b.SouthWest.Lng) * fraction

	b.SouthWest = Point{Lat: max(b.SouthWest.Lat-dLat, -90), Lng: max(b.SouthWest.Lng-dLng, -180)}
	b.NorthEast = Point{Lat: min(b.NorthEast.Lat+dLat, 90), Lng: min(b.NorthEast.Lng+dLng, 180)}

	return b
}

// Contains reports whether p lies inside b (edges included).
func (b Bounds) Contains(p Point) bool {
	return b.valid &&
		p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// CellResolution is the H3 resolution used to key markers (~0.1 km² hexagons).
const CellResolution = 9

// Cell returns the H3 index of p at the given resolution.
func Cell(p Point, res int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return "", fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell.String(), nil
}

// averageEdgeMeters is the mean hexagon edge length per H3 resolution, 0 to
// CellResolution.
var averageEdgeMeters = [...]float64{
	1281256.011, 483056.8391, 182512.9565, 68979.22179, 26071.75968,
	9854.090990, 3724.532667, 1406.475763, 531.414010, 200.786148,
}

// ResolutionFor returns the finest resolution, not above CellResolution,
// whose hexagon edges are at least meters long.
func ResolutionFor(meters float64) int {
	for res := CellResolution; res > 0; res-- {
		if averageEdgeMeters[res] >= meters {
			return res
		}
	}

	return 0
}

// EdgeMeters returns the average hexagon edge length at res.
func EdgeMeters(res int) float64 {
	return averageEdgeMeters[min(max(res, 0), CellResolution)]
}

// CellParent returns the ancestor of cell at the coarser resolution res.
func CellParent(cell string, res int) (string, error) {
	c := h3.Cell(h3.IndexFromString(cell))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid h3 cell %q", cell)
	}

	if c.Resolution() == res {
		return cell, nil
	}

	parent, err := c.Parent(res)
	if err != nil {
		return "", fmt.Errorf("error getting parent of %s at res %d: %w", cell, res, err)
	}

	return parent.String(), nil
}

// CellDisk returns cell and every cell within k grid steps of it.
func CellDisk(cell string, k int) ([]string, error) {
	c := h3.Cell(h3.IndexFromString(cell))
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid h3 cell %q", cell)
	}

	disk, err := c.GridDisk(k)
	if err != nil {
		return nil, fmt.Errorf("error computing grid disk of %s: %w", cell, err)
	}

	out := make([]string, len(disk))
	for i, d := range disk {
		out[i] = d.String()
	}

	return out, nil
}
