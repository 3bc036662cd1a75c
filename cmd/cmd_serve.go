// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"log"

	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/server"
	"github.com/locamap/locamap/session"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the map page and its API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("listen") {
			opts.Listen = serveListen
		}

		canvas := mapview.NewCanvas()
		notices := session.NewNoticeLog(20)
		controls := &session.ControlState{}

		sess := newSession(opts, canvas, session.MultiNotifier{notices, session.LogNotifier{}}, controls, logTransition)
		defer sess.Close()

		// Initial full load; the page still works when the webhook is down.
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		if err := sess.LoadAll(ctx); err != nil {
			log.Printf("⚠️  Initial load failed - %v", err)
		}
		cancel()

		return server.New(sess, canvas, notices, controls, opts.Unit).Run(opts.Listen)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "address to listen on (env LOCAMAP_LISTEN)")
	rootCmd.AddCommand(serveCmd)
}
