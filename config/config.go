// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the runtime options from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/locamap/locamap/geocode"
	"github.com/locamap/locamap/spatial"
)

const (
	EnvBaseURL      = "LOCAMAP_BASE_URL"
	EnvReviewURL    = "LOCAMAP_REVIEW_URL"
	EnvGeocoderURL  = "LOCAMAP_GEOCODER_URL"
	EnvUserAgent    = "LOCAMAP_USER_AGENT"
	EnvListen       = "LOCAMAP_LISTEN"
	EnvUnit         = "LOCAMAP_UNIT"
	EnvRefreshDelay = "LOCAMAP_REFRESH_DELAY"
)

const (
	DefaultListen    = "localhost:8080"
	DefaultUserAgent = "locamap"
)

// DefaultRefreshDelay is the wait between a successful update trigger and the reload.
const DefaultRefreshDelay = 2 * time.Second

// ErrMissingBaseURL is returned when no location webhook is configured.
var ErrMissingBaseURL = errors.New("base url is required (" + EnvBaseURL + " or --base-url)")

// Options are the runtime settings shared by every command.
type Options struct {
	// BaseURL is the root of the location webhook: {BaseURL}/data, /query and /update.
	BaseURL string
	// ReviewURL receives feedback submissions. Defaults to {BaseURL}/review.
	ReviewURL    string
	GeocoderURL  string
	UserAgent    string
	Listen       string
	Unit         spatial.Unit
	RefreshDelay time.Duration

	HTTPTrace     bool
	HTTPBodyTrace bool
}

// Load reads envFile, when present, and the process environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Options, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}

			log.Printf("No %s file found, using the process environment", envFile)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds options from getenv. Values are not validated beyond parsing.
func FromEnv(getenv func(string) string) (*Options, error) {
	opts := &Options{
		BaseURL:      getenv(EnvBaseURL),
		ReviewURL:    getenv(EnvReviewURL),
		GeocoderURL:  getEnv(getenv, EnvGeocoderURL, geocode.DefaultNominatimURL),
		UserAgent:    getEnv(getenv, EnvUserAgent, DefaultUserAgent),
		Listen:       getEnv(getenv, EnvListen, DefaultListen),
		RefreshDelay: DefaultRefreshDelay,
	}

	if v := getenv(EnvUnit); v != "" {
		unit, err := spatial.ParseUnit(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvUnit, err)
		}

		opts.Unit = unit
	}

	if v := getenv(EnvRefreshDelay); v != "" {
		d, err := parseDelay(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvRefreshDelay, err)
		}

		opts.RefreshDelay = d
	}

	return opts, nil
}

// parseDelay accepts a Go duration or a bare number of milliseconds.
func parseDelay(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return time.ParseDuration(v)
}

func getEnv(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}

	return fallback
}

// Validate checks the options and fills the derived defaults.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if err := checkURL("base url", o.BaseURL); err != nil {
		return err
	}

	if o.ReviewURL == "" {
		o.ReviewURL = o.BaseURL + "/review"
	}

	if err := checkURL("review url", o.ReviewURL); err != nil {
		return err
	}

	if err := checkURL("geocoder url", o.GeocoderURL); err != nil {
		return err
	}

	if o.RefreshDelay < 0 {
		return fmt.Errorf("refresh delay must not be negative, got %v", o.RefreshDelay)
	}

	if o.Unit != spatial.Kilometers && o.Unit != spatial.Miles {
		return fmt.Errorf("unsupported unit %d", o.Unit)
	}

	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", name, raw)
	}

	return nil
}
