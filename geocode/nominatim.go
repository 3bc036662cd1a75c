// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/locamap/locamap/spatial"
	"golang.org/x/time/rate"
)

// DefaultNominatimURL is the public OpenStreetMap search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// Nominatim uses an OpenStreetMap Nominatim compatible search API.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatim creates a new Nominatim geocoder. The public service allows one
// request per second, which is the default pace.
func NewNominatim(baseURL string, httpClient *http.Client) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Nominatim{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// WithLimit replaces the request pacing.
func (g *Nominatim) WithLimit(limit rate.Limit, burst int) *Nominatim {
	g.limiter = rate.NewLimiter(limit, burst)

	return g
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (g *Nominatim) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &Error{Type: ErrorTypeInvalidRequest, Message: "empty address"}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &Error{Type: ErrorTypeTimeout, Message: "waiting for rate limiter", Err: err}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", address)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		errType := ErrorTypeNetworkError
		if errors.Is(err, context.DeadlineExceeded) {
			errType = ErrorTypeTimeout
		}

		return nil, &Error{Type: errType, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: "decoding response", Err: err}
	}

	if len(results) == 0 {
		return nil, &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results found for address: %s", address)}
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)

	p := spatial.Point{Lat: lat, Lng: lon}
	if err := errors.Join(errLat, errLon); err != nil || !p.Valid() {
		return nil, &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("invalid coordinates %q,%q", results[0].Lat, results[0].Lon),
			Err:     err,
		}
	}

	return &Result{
		Point:       p,
		Provider:    "nominatim",
		DisplayName: results[0].DisplayName,
	}, nil
}
