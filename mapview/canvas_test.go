// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"testing"

	"github.com/locamap/locamap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasLayers(t *testing.T) {
	c := NewCanvas()

	a := c.AddMarker(Marker{Title: "a", Point: spatial.Point{Lat: 1, Lng: 1}})
	circle := c.AddCircle(Circle{Center: spatial.Point{Lat: 1, Lng: 1}, RadiusMeters: 100})
	b := c.AddMarker(Marker{Title: "b", Point: spatial.Point{Lat: 2, Lng: 2}})

	assert.NotEqual(t, a, b)

	view := c.Snapshot()
	require.Len(t, view.Layers, 3)
	assert.Equal(t, LayerMarker, view.Layers[0].Kind)
	assert.Equal(t, LayerCircle, view.Layers[1].Kind)
	assert.Nil(t, view.Viewport)

	c.RemoveLayer(circle)
	c.RemoveLayer("unknown")
	assert.Empty(t, c.Circles())
	assert.Len(t, c.Markers(), 2)

	c.RemoveLayer(a)
	markers := c.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, "b", markers[0].Title)
}

func TestCanvasVisible(t *testing.T) {
	c := NewCanvas()

	c.AddMarker(Marker{Title: "inside", Point: spatial.Point{Lat: 1, Lng: 1}})
	c.AddMarker(Marker{Title: "outside", Point: spatial.Point{Lat: 50, Lng: 50}})
	removed := c.AddMarker(Marker{Title: "removed", Point: spatial.Point{Lat: 1.5, Lng: 1.5}})

	assert.Len(t, c.Visible(), 3, "everything is visible before the first fit")

	c.RemoveLayer(removed)
	c.FitBounds(spatial.NewBounds(spatial.Point{Lat: 0, Lng: 0}, spatial.Point{Lat: 2, Lng: 2}), 0.1)

	visible := c.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "inside", visible[0].Title)
	assert.InDelta(t, 0.1, c.Snapshot().Padding, 0)
}
