// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"math"
	"slices"

	"github.com/locamap/locamap/spatial"
)

// Process annotates the locations with their distance to the search reference
// (when there is one), sorts them by ascending distance and assigns 1-based
// ranks. Locations without a distance keep their relative input order after
// the ones with a distance.
func Process(locs []Location, ctx SearchContext) []RankedResult {
	results := make([]RankedResult, len(locs))

	for i, loc := range locs {
		results[i] = RankedResult{Location: loc}

		if ctx.Reference != nil {
			d := spatial.DistanceIn(*ctx.Reference, loc.Point, ctx.Unit)
			results[i].Distance = &d
		}
	}

	slices.SortStableFunc(results, func(a, b RankedResult) int {
		da, db := sortKey(a), sortKey(b)

		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})

	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}

func sortKey(r RankedResult) float64 {
	if r.Distance == nil {
		return math.Inf(1)
	}

	return *r.Distance
}
