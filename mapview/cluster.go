// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"math"
	"slices"

	"github.com/locamap/locamap/spatial"
)

// Cluster is a group of nearby location markers.
type Cluster struct {
	// Cell is the H3 cell of the first member at the grouping resolution.
	Cell    string        `json:"cell,omitempty"`
	Center  spatial.Point `json:"center"`
	Markers []Marker      `json:"markers"`
}

// ClusterMarkers groups the location markers that are within distance meters
// of any member of a group. Search point markers are ignored. Groups and their
// members keep the input order.
//
// Markers are bucketed by the ancestor of their H3 cell at a resolution whose
// hexagons are about distance wide, so only markers in nearby buckets are
// measured.
func ClusterMarkers(markers []Marker, distance float64) []Cluster {
	var locs []Marker

	for _, m := range markers {
		if m.Style == StyleLocation {
			locs = append(locs, m)
		}
	}

	res := spatial.ResolutionFor(distance)
	ring := int(math.Ceil(distance/spatial.EdgeMeters(res))) + 2

	keys := make([]string, len(locs))
	buckets := make(map[string][]int)

	for i, m := range locs {
		keys[i] = bucketKey(m, res)
		buckets[keys[i]] = append(buckets[keys[i]], i)
	}

	neighbours := func(key string) []int {
		disk, err := spatial.CellDisk(key, ring)
		if err != nil {
			all := make([]int, len(locs))
			for i := range all {
				all[i] = i
			}

			return all
		}

		// markers without a cell are always candidates
		near := slices.Clone(buckets[""])
		for _, cell := range disk {
			near = append(near, buckets[cell]...)
		}

		return near
	}

	clusters := make([]Cluster, 0, len(locs))
	visited := make([]bool, len(locs))

	for i := range locs {
		if visited[i] {
			continue
		}

		visited[i] = true
		group := []int{i}

		for q := 0; q < len(group); q++ {
			member := locs[group[q]].Point

			for _, j := range neighbours(keys[group[q]]) {
				if visited[j] {
					continue
				}

				if locs[j].Point.HaversineDistance(&member) <= distance {
					visited[j] = true
					group = append(group, j)
				}
			}
		}

		slices.Sort(group)

		members := make([]Marker, len(group))
		for n, j := range group {
			members[n] = locs[j]
		}

		clusters = append(clusters, Cluster{Cell: keys[i], Center: centroid(members), Markers: members})
	}

	return clusters
}

// bucketKey returns the ancestor at res of the marker's cell, or "" when the
// marker cannot be indexed.
func bucketKey(m Marker, res int) string {
	cell := m.Cell
	if cell == "" {
		var err error
		if cell, err = spatial.Cell(m.Point, spatial.CellResolution); err != nil {
			return ""
		}
	}

	parent, err := spatial.CellParent(cell, res)
	if err != nil {
		return ""
	}

	return parent
}

func centroid(markers []Marker) spatial.Point {
	var lat, lng float64

	for _, m := range markers {
		lat += m.Point.Lat
		lng += m.Point.Lng
	}

	n := float64(len(markers))

	return spatial.Point{Lat: lat / n, Lng: lng / n}
}
