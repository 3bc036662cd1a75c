// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/locamap/locamap/config"
	"github.com/locamap/locamap/geocode"
	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/session"
	"github.com/locamap/locamap/sidebar"
	"github.com/locamap/locamap/utils/httputils"
	"github.com/locamap/locamap/webhook"
)

const requestTimeout = 30 * time.Second

// newSession wires the remote services of opts into a session drawing on canvas.
// observer may be nil.
func newSession(opts *config.Options, canvas *mapview.Canvas, notifier session.Notifier, controls session.Controls, observer sidebar.TransitionFunc) *session.Session {
	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent:           fmt.Sprintf("%s/%s (+https://github.com/locamap/locamap)", opts.UserAgent, Version),
		Timeout:             requestTimeout,
		EnableHTTPTrace:     opts.HTTPTrace,
		EnableHTTPBodyTrace: opts.HTTPBodyTrace,
	})

	return session.New(session.Options{
		Geocoder:     geocode.NewNominatim(opts.GeocoderURL, client),
		Backend:      webhook.NewClient(opts.BaseURL, opts.ReviewURL, client),
		Map:          canvas,
		Notifier:     notifier,
		Controls:     controls,
		Observer:     observer,
		RefreshDelay: opts.RefreshDelay,
	})
}

// logTransition logs feedback editor state changes of the served page.
func logTransition(key string, from, to sidebar.State) {
	log.Printf("📝 Feedback %s: %s → %s", key, from, to)
}
