// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package webhook

import (
	"errors"
	"fmt"
)

// Error is a transport or server failure talking to a webhook.
type Error struct {
	Op         string // data, query, update, review
	StatusCode int    // 0 when no response was received
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op + " webhook"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s returned status %d", msg, e.StatusCode)
	} else {
		msg += " failed"
	}

	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsServerError reports whether the webhook answered with a 5xx status.
func IsServerError(err error) bool {
	var whErr *Error
	if errors.As(err, &whErr) {
		return whErr.StatusCode >= 500
	}

	return false
}
