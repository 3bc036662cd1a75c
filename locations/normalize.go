// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/locamap/locamap/spatial"
)

// ErrInvalidCoordinates is returned when a record has no plottable coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// wrapperKey is the key some webhook responses nest the record under.
const wrapperKey = "json"

// Normalize maps a raw record into a canonical Location. position is the
// 1-based index of the record in its batch and is used as serial when the
// record carries none.
func Normalize(raw RawRecord, position int) (Location, error) {
	rec := unwrap(raw)

	lat, err := coordinate(rec, fieldLatitude)
	if err != nil {
		return Location{}, fmt.Errorf("latitude: %w", err)
	}

	lng, err := coordinate(rec, fieldLongitude)
	if err != nil {
		return Location{}, fmt.Errorf("longitude: %w", err)
	}

	p := spatial.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Location{}, fmt.Errorf("%s out of range: %w", p, ErrInvalidCoordinates)
	}

	loc := Location{
		Point:        p,
		Name:         rec.lookup(fieldName),
		BusinessName: rec.lookup(fieldBusinessName),
		Type:         rec.lookup(fieldType),
		Address:      rec.lookup(fieldAddress),
		Region:       rec.lookup(fieldRegion),
		ContactPhone: rec.lookup(fieldContactPhone),
		Email:        rec.lookup(fieldEmail),
		Website:      rec.lookup(fieldWebsite),
		SerialID:     rec.lookup(fieldSerial),
		Rating:       rating(rec.lookup(fieldRating)),
		FeedbackText: rec.lookup(fieldFeedback),
	}

	if loc.SerialID == "" {
		loc.SerialID = strconv.Itoa(position)
	}

	return loc, nil
}

// NormalizeBatch normalizes every record of a batch, logging and skipping the
// ones without usable coordinates. The order of the batch is preserved.
func NormalizeBatch(raws []RawRecord) []Location {
	locs := make([]Location, 0, len(raws))

	for i, raw := range raws {
		loc, err := Normalize(raw, i+1)
		if err != nil {
			log.Printf("⚠️  Dropping record %d: %v", i+1, err)

			continue
		}

		locs = append(locs, loc)
	}

	return locs
}

type record map[string]any

func unwrap(raw RawRecord) record {
	if inner, ok := raw[wrapperKey]; ok {
		switch v := inner.(type) {
		case map[string]any:
			return record(v)
		case RawRecord:
			return record(v)
		}
	}

	return record(raw)
}

// lookup resolves a canonical field through its alias list.
func (r record) lookup(f field) string {
	for _, key := range aliases[f] {
		if s, ok := stringValue(r[key]); ok && s != "" {
			return s
		}
	}

	return ""
}

func coordinate(r record, f field) (float64, error) {
	s := r.lookup(f)
	if s == "" {
		return 0, fmt.Errorf("missing: %w", ErrInvalidCoordinates)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, ErrInvalidCoordinates)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite %q: %w", s, ErrInvalidCoordinates)
	}

	return v, nil
}

// stringValue renders the scalar JSON values a record may hold.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// rating keeps whole star values between 1 and 5.
func rating(s string) int {
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || v < 1 || v > 5 {
		return 0
	}

	return int(v)
}
