// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text addresses into coordinates.
package geocode

import (
	"context"

	"github.com/locamap/locamap/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}
