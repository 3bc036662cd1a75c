// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("nominatim returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &Error{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}, IsRateLimitError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &Error{Type: ErrorTypeTimeout, Message: "timeout"},
			want: true,
		},
		{
			name: "wrapped deadline",
			err:  fmt.Errorf("geocoding: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "error message contains timeout",
			err:  errors.New("request timeout after 10 seconds"),
			want: true,
		},
		{
			name: "other error type",
			err:  &Error{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
	}, IsTimeoutError)
}

func TestIsNotFound(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "not found type",
			err:  &Error{Type: ErrorTypeNotFound, Message: "address not found"},
			want: true,
		},
		{
			name: "wrapped not found",
			err:  fmt.Errorf("search: %w", &Error{Type: ErrorTypeNotFound, Message: "address not found"}),
			want: true,
		},
		{
			name: "message only",
			err:  errors.New("address not found"),
			want: false,
		},
	}, IsNotFound)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   ErrorType
	}{
		{"429 too many requests", 429, ErrorTypeRateLimit},
		{"403 forbidden", 403, ErrorTypeInvalidRequest},
		{"400 bad request", 400, ErrorTypeInvalidRequest},
		{"404 not found", 404, ErrorTypeNotFound},
		{"503 service unavailable", 503, ErrorTypeNetworkError},
		{"502 bad gateway", 502, ErrorTypeNetworkError},
		{"504 gateway timeout", 504, ErrorTypeNetworkError},
		{"500 internal server error", 500, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHTTPError(tt.statusCode)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPError() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	geoErr := &Error{
		Type:    ErrorTypeNetworkError,
		Message: "geocoding request failed",
		Err:     innerErr,
	}

	if !errors.Is(geoErr, innerErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if geoErr.Error() != "geocoding request failed: inner error" {
		t.Errorf("unexpected message %q", geoErr.Error())
	}
}
