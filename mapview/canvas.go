// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/locamap/locamap/spatial"
)

// LayerKind tells markers from circles.
type LayerKind string

const (
	LayerMarker LayerKind = "marker"
	LayerCircle LayerKind = "circle"
)

// Layer is an overlay placed on the canvas.
type Layer struct {
	ID     string    `json:"id"`
	Kind   LayerKind `json:"kind"`
	Marker *Marker   `json:"marker,omitempty"`
	Circle *Circle   `json:"circle,omitempty"`
}

// View is a snapshot of the canvas, as published to the browser widget.
type View struct {
	Layers   []Layer         `json:"layers"`
	Viewport *spatial.Bounds `json:"viewport,omitempty"`
	Padding  float64         `json:"padding,omitempty"`
}

// Canvas is an in-memory Map. The browser widget mirrors its layers and
// viewport; markers are indexed so the ones inside the viewport can be listed.
type Canvas struct {
	mu       sync.RWMutex
	layers   map[string]*Layer
	order    []string
	index    *rtreego.Rtree
	entries  map[string]*entry
	viewport *spatial.Bounds
	padding  float64
}

type entry struct {
	id   string
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// pointTolerance gives markers a non-degenerate rectangle in the index.
const pointTolerance = 1e-9

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		layers:  make(map[string]*Layer),
		entries: make(map[string]*entry),
		index:   rtreego.NewTree(2, 25, 50),
	}
}

func (c *Canvas) add(l *Layer) string {
	l.ID = uuid.NewString()
	c.layers[l.ID] = l
	c.order = append(c.order, l.ID)

	return l.ID
}

// AddMarker implements Map.
func (c *Canvas) AddMarker(m Marker) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.add(&Layer{Kind: LayerMarker, Marker: &m})

	e := &entry{id: id, rect: rtreego.Point{m.Point.Lng, m.Point.Lat}.ToRect(pointTolerance)}
	c.entries[id] = e
	c.index.Insert(e)

	return id
}

// AddCircle implements Map.
func (c *Canvas) AddCircle(circle Circle) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.add(&Layer{Kind: LayerCircle, Circle: &circle})
}

// RemoveLayer implements Map. Unknown ids are ignored.
func (c *Canvas) RemoveLayer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.layers[id]; !ok {
		return
	}

	delete(c.layers, id)
	c.order = slices.DeleteFunc(c.order, func(o string) bool { return o == id })

	if e, ok := c.entries[id]; ok {
		c.index.Delete(e)
		delete(c.entries, id)
	}
}

// FitBounds implements Map.
func (c *Canvas) FitBounds(b spatial.Bounds, padding float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	padded := b.Pad(padding)
	c.viewport = &padded
	c.padding = padding
}

// Snapshot returns the layers in drawing order and the current viewport.
func (c *Canvas) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{Layers: make([]Layer, 0, len(c.order)), Padding: c.padding}
	for _, id := range c.order {
		v.Layers = append(v.Layers, *c.layers[id])
	}

	if c.viewport != nil {
		vp := *c.viewport
		v.Viewport = &vp
	}

	return v
}

// Markers returns the markers in drawing order.
func (c *Canvas) Markers() []Marker {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.markers()
}

func (c *Canvas) markers() []Marker {
	var markers []Marker

	for _, id := range c.order {
		if l := c.layers[id]; l.Kind == LayerMarker {
			markers = append(markers, *l.Marker)
		}
	}

	return markers
}

// Circles returns the circles in drawing order.
func (c *Canvas) Circles() []Circle {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var circles []Circle

	for _, id := range c.order {
		if l := c.layers[id]; l.Kind == LayerCircle {
			circles = append(circles, *l.Circle)
		}
	}

	return circles
}

// Visible returns, in drawing order, the markers inside the viewport. Before
// the first FitBounds every marker is visible.
func (c *Canvas) Visible() []Marker {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.viewport == nil {
		return c.markers()
	}

	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{c.viewport.SouthWest.Lng, c.viewport.SouthWest.Lat},
		rtreego.Point{c.viewport.NorthEast.Lng, c.viewport.NorthEast.Lat},
	)
	if err != nil {
		return nil
	}

	hits := make(map[string]bool)
	for _, s := range c.index.SearchIntersect(rect) {
		hits[s.(*entry).id] = true
	}

	var markers []Marker

	for _, id := range c.order {
		if hits[id] {
			markers = append(markers, *c.layers[id].Marker)
		}
	}

	return markers
}
