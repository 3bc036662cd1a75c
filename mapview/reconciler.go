// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"log"

	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/spatial"
)

// Reconciler owns the overlays it places on a Map. Nothing else should add or
// remove them.
type Reconciler struct {
	m         Map
	markers   []string
	circle    string
	highlight string
	center    *spatial.Point
	unit      spatial.Unit
}

// NewReconciler creates a reconciler drawing on m.
func NewReconciler(m Map) *Reconciler {
	return &Reconciler{m: m}
}

// Reconcile replaces the location markers with one per result. A non-nil
// overlay also replaces the search circle and the search point highlight;
// with a nil overlay the previous ones stay drawn. When there are results the
// viewport is fitted to them (and to the search point, when highlighted).
func (r *Reconciler) Reconcile(results []locations.RankedResult, overlay *Overlay) {
	for _, id := range r.markers {
		r.m.RemoveLayer(id)
	}

	r.markers = r.markers[:0]

	if overlay != nil {
		r.drawOverlay(*overlay)
	}

	var bounds spatial.Bounds

	for _, res := range results {
		cell, err := spatial.Cell(res.Point, spatial.CellResolution)
		if err != nil {
			log.Printf("⚠️  No H3 cell for %s: %v", res.SerialID, err)
		}

		r.markers = append(r.markers, r.m.AddMarker(Marker{
			Point:  res.Point,
			Title:  res.Name,
			Popup:  Popup(res, r.unit),
			Style:  StyleLocation,
			Serial: res.SerialID,
			Rank:   res.Rank,
			Cell:   cell,
		}))
		bounds = bounds.Extend(res.Point)
	}

	if len(results) == 0 {
		return
	}

	if r.center != nil {
		bounds = bounds.Extend(*r.center)
	}

	r.m.FitBounds(bounds, FitPadding)
}

func (r *Reconciler) drawOverlay(o Overlay) {
	if r.circle != "" {
		r.m.RemoveLayer(r.circle)
	}

	if r.highlight != "" {
		r.m.RemoveLayer(r.highlight)
	}

	center := o.Center
	r.center = &center
	r.unit = o.Unit

	r.circle = r.m.AddCircle(Circle{Center: center, RadiusMeters: o.Unit.ToMeters(o.Radius)})
	r.highlight = r.m.AddMarker(Marker{
		Point: center,
		Title: "Search location",
		Style: StyleSearchPoint,
	})
}
