// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package locations turns the records served by the location webhook into
// canonical, ranked results.
package locations

import (
	"github.com/locamap/locamap/spatial"
)

// RawRecord is a location record as served by the remote API. Field names are
// not consistently cased and the record may be wrapped under a "json" key.
type RawRecord map[string]any

// Location is the canonical representation of a record after alias resolution.
type Location struct {
	Point        spatial.Point `json:"point"`
	Name         string        `json:"name"`
	BusinessName string        `json:"business_name,omitempty"`
	Type         string        `json:"type,omitempty"`
	Address      string        `json:"address,omitempty"`
	Region       string        `json:"region,omitempty"`
	ContactPhone string        `json:"contact_phone,omitempty"`
	Email        string        `json:"email,omitempty"`
	Website      string        `json:"website,omitempty"`
	SerialID     string        `json:"serial_id"`
	Rating       int           `json:"rating,omitempty"` // 1..5, 0 when absent
	FeedbackText string        `json:"feedback_text,omitempty"`
}

// SearchContext holds the parameters of the last successful search.
type SearchContext struct {
	// Reference is the geocoded search center, nil until the first successful geocode.
	Reference *spatial.Point
	Radius    float64
	Unit      spatial.Unit
}

// RankedResult is a Location annotated with its position in the sorted list.
type RankedResult struct {
	Location
	Rank     int      `json:"rank"`
	Distance *float64 `json:"distance,omitempty"` // in SearchContext.Unit
}
