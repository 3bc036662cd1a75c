// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/locamap/locamap/config"
	"github.com/locamap/locamap/spatial"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "locamap",
	Short: "map search over a remote location webhook",
	Long: `
locamap geocodes an address, asks the location webhook for the places within a
radius of it and shows them ranked by distance, either on a map served to the
browser or as a table on the terminal.
`,
	SilenceUsage: true,
}

var Version = "dev"

// globalFlags are the persistent flags. Set flags win over the environment.
type globalFlags struct {
	envFile       string
	baseURL       string
	reviewURL     string
	geocoderURL   string
	userAgent     string
	unit          string
	refreshDelay  time.Duration
	httpTrace     bool
	httpBodyTrace bool
}

var flags globalFlags

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "file with LOCAMAP_* variables, ignored when missing")
	pf.StringVar(&flags.baseURL, "base-url", "", "location webhook base url (env "+config.EnvBaseURL+")")
	pf.StringVar(&flags.reviewURL, "review-url", "", "review webhook url (env "+config.EnvReviewURL+")")
	pf.StringVar(&flags.geocoderURL, "geocoder-url", "", "Nominatim search url (env "+config.EnvGeocoderURL+")")
	pf.StringVar(&flags.userAgent, "user-agent", "", "User-Agent sent to remote services (env "+config.EnvUserAgent+")")
	pf.StringVar(&flags.unit, "unit", "", "distance unit, km or mi (env "+config.EnvUnit+")")
	pf.DurationVar(&flags.refreshDelay, "refresh-delay", 0, "wait between an update and the reload (env "+config.EnvRefreshDelay+")")
	pf.BoolVar(&flags.httpTrace, "http-trace", false, "log every HTTP request")
	pf.BoolVar(&flags.httpBodyTrace, "http-body-trace", false, "log every HTTP request and response body")
}

// loadOptions merges the environment with the flags set on cmd.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, opts); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

func applyFlags(cmd *cobra.Command, opts *config.Options) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)

		return f != nil && f.Changed
	}

	if changed("base-url") {
		opts.BaseURL = flags.baseURL
	}

	if changed("review-url") {
		opts.ReviewURL = flags.reviewURL
	}

	if changed("geocoder-url") {
		opts.GeocoderURL = flags.geocoderURL
	}

	if changed("user-agent") {
		opts.UserAgent = flags.userAgent
	}

	if changed("unit") {
		unit, err := spatial.ParseUnit(flags.unit)
		if err != nil {
			return err
		}

		opts.Unit = unit
	}

	if changed("refresh-delay") {
		opts.RefreshDelay = flags.refreshDelay
	}

	opts.HTTPTrace = opts.HTTPTrace || flags.httpTrace
	opts.HTTPBodyTrace = opts.HTTPBodyTrace || flags.httpBodyTrace

	return nil
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
