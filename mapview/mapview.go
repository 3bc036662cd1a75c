// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapview keeps the map overlays (location markers, search circle and
// search point) in sync with the current result set.
package mapview

import (
	"github.com/locamap/locamap/spatial"
)

// MarkerStyle selects how the widget draws a marker.
type MarkerStyle string

const (
	// StyleLocation is the default pin used for results.
	StyleLocation MarkerStyle = "location"
	// StyleSearchPoint highlights the geocoded search center.
	StyleSearchPoint MarkerStyle = "search-point"
)

// FitPadding is the fraction of the bounds added on every side when fitting the viewport.
const FitPadding = 0.1

// Marker is a point overlay.
type Marker struct {
	Point  spatial.Point `json:"point"`
	Title  string        `json:"title"`
	Popup  string        `json:"popup,omitempty"` // HTML
	Style  MarkerStyle   `json:"style"`
	Serial string        `json:"serial,omitempty"`
	Rank   int           `json:"rank,omitempty"`
	Cell   string        `json:"cell,omitempty"` // H3 index
}

// Circle is a radius overlay.
type Circle struct {
	Center       spatial.Point `json:"center"`
	RadiusMeters float64       `json:"radius_meters"`
}

// Map is the subset of the map widget the reconciler drives. Layer ids are
// opaque to the caller.
type Map interface {
	AddMarker(m Marker) string
	AddCircle(c Circle) string
	RemoveLayer(id string)
	FitBounds(b spatial.Bounds, padding float64)
}

// Overlay describes the search area to draw.
type Overlay struct {
	Center spatial.Point
	Radius float64
	Unit   spatial.Unit
}
