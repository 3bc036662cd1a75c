// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"testing"

	"github.com/locamap/locamap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterMarkers(t *testing.T) {
	markers := []Marker{
		{Title: "search", Style: StyleSearchPoint, Point: spatial.Point{Lat: 33.5207, Lng: -86.8025}},
		{Title: "a", Style: StyleLocation, Point: spatial.Point{Lat: 33.5000, Lng: -86.8000}},
		{Title: "far", Style: StyleLocation, Point: spatial.Point{Lat: 34.7304, Lng: -86.5861}},
		// ~800m east of a, and c is ~800m east of b: chained into one group
		{Title: "b", Style: StyleLocation, Point: spatial.Point{Lat: 33.5000, Lng: -86.7914}},
		{Title: "c", Style: StyleLocation, Point: spatial.Point{Lat: 33.5000, Lng: -86.7828}},
	}

	clusters := ClusterMarkers(markers, 1000)
	require.Len(t, clusters, 2)

	var titles []string
	for _, m := range clusters[0].Markers {
		titles = append(titles, m.Title)
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles)
	assert.InDelta(t, -86.7914, clusters[0].Center.Lng, 1e-4)
	assert.Equal(t, "far", clusters[1].Markers[0].Title)
	assert.Equal(t, markers[2].Point, clusters[1].Center)
}

func TestClusterMarkersEmpty(t *testing.T) {
	assert.Empty(t, ClusterMarkers(nil, 1000))
	assert.Empty(t, ClusterMarkers([]Marker{{Style: StyleSearchPoint}}, 1000))
}

func cellOf(t *testing.T, p spatial.Point) string {
	t.Helper()

	c, err := spatial.Cell(p, spatial.CellResolution)
	require.NoError(t, err)

	return c
}

func TestClusterMarkersKeyedByCell(t *testing.T) {
	a := spatial.Point{Lat: 33.5086, Lng: -86.8115}
	b := spatial.Point{Lat: 33.5090, Lng: -86.8110}
	far := spatial.Point{Lat: 33.4917, Lng: -86.7953}

	markers := []Marker{
		{Title: "a", Style: StyleLocation, Point: a, Cell: cellOf(t, a)},
		{Title: "b", Style: StyleLocation, Point: b, Cell: cellOf(t, b)},
		{Title: "far", Style: StyleLocation, Point: far, Cell: cellOf(t, far)},
	}

	clusters := ClusterMarkers(markers, 200)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0].Markers, 2)

	res := spatial.ResolutionFor(200)
	want, err := spatial.CellParent(markers[0].Cell, res)
	require.NoError(t, err)
	assert.Equal(t, want, clusters[0].Cell)

	want, err = spatial.CellParent(markers[2].Cell, res)
	require.NoError(t, err)
	assert.Equal(t, want, clusters[1].Cell)
}

func TestClusterMarkersWithoutUsableCell(t *testing.T) {
	a := spatial.Point{Lat: 33.5086, Lng: -86.8115}
	b := spatial.Point{Lat: 33.5090, Lng: -86.8110}

	clusters := ClusterMarkers([]Marker{
		{Title: "a", Style: StyleLocation, Point: a, Cell: cellOf(t, a)},
		{Title: "b", Style: StyleLocation, Point: b, Cell: "not-a-cell"},
	}, 200)

	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Markers, 2)
}

// Neighbours across a bucket boundary still group: sweep pairs 150 m apart
// along a line and expect one cluster each time.
func TestClusterMarkersAcrossCells(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := spatial.Point{Lat: 33.5, Lng: -86.8 + float64(i)*0.0007}
		q := spatial.Point{Lat: 33.5, Lng: p.Lng + 0.0016}

		clusters := ClusterMarkers([]Marker{
			{Style: StyleLocation, Point: p, Cell: cellOf(t, p)},
			{Style: StyleLocation, Point: q, Cell: cellOf(t, q)},
		}, 200)

		assert.Len(t, clusters, 1, "pair %d", i)
	}
}
