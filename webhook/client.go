// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package webhook is the client of the remote location API and review webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/utils/htmlutils"
)

// Review is the payload accepted by the review webhook.
type Review struct {
	Serial   string `json:"serial"`
	Review   int    `json:"review"`
	Feedback string `json:"feedback"`
}

type queryRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// Client talks to the location webhook API ({baseURL}/data, /query, /update)
// and to the review webhook.
type Client struct {
	baseURL   string
	reviewURL string
	client    *http.Client
}

// NewClient creates a webhook client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL, reviewURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		reviewURL: reviewURL,
		client:    httpClient,
	}
}

// All returns every location record known to the backend.
func (c *Client) All(ctx context.Context) ([]locations.RawRecord, error) {
	var records []locations.RawRecord
	if err := c.do(ctx, "data", http.MethodGet, c.baseURL+"/data", nil, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// Query returns the records within radiusKm kilometers of (lat, lon).
func (c *Client) Query(ctx context.Context, lat, lon, radiusKm float64) ([]locations.RawRecord, error) {
	body := queryRequest{Latitude: lat, Longitude: lon, Radius: radiusKm}

	var records []locations.RawRecord
	if err := c.do(ctx, "query", http.MethodPost, c.baseURL+"/query", body, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// TriggerUpdate asks the backend to refresh its data. The response body is ignored.
func (c *Client) TriggerUpdate(ctx context.Context) error {
	return c.do(ctx, "update", http.MethodPost, c.baseURL+"/update", nil, nil)
}

// SubmitReview posts a rating and feedback for a location.
func (c *Client) SubmitReview(ctx context.Context, review Review) error {
	return c.do(ctx, "review", http.MethodPost, c.reviewURL, review, nil)
}

func (c *Client) do(ctx context.Context, op, method, url string, in, out any) error {
	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", op, err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: htmlutils.Summary(resp)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	// Numbers stay json.Number so large numeric serials keep every digit.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	// A "null" body decodes into a nil slice, which callers treat as empty.
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: "decoding response", Err: err}
	}

	return nil
}
