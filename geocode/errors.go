// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a geocoding failure.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the provider throttled us.
	ErrorTypeRateLimit
	// ErrorTypeTimeout the request did not complete in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the address matched nothing.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport or upstream availability failure.
	ErrorTypeNetworkError
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func isType(err error, t ErrorType) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == t
	}

	return false
}

// IsNotFound reports whether the address could not be resolved.
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsRateLimitError reports whether the provider throttled the lookup.
func IsRateLimitError(err error) bool {
	if isType(err, ErrorTypeRateLimit) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsTimeoutError reports whether the lookup timed out.
func IsTimeoutError(err error) bool {
	if isType(err, ErrorTypeTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps an HTTP status returned by a provider to an Error.
func ClassifyHTTPError(statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusBadRequest, http.StatusForbidden:
		return &Error{
			Type:    ErrorTypeInvalidRequest,
			Message: fmt.Sprintf("request rejected (status %d)", statusCode),
		}
	case http.StatusNotFound:
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "address not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &Error{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
