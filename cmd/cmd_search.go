// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"strings"

	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/session"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	radius float64
	filter string
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search <address>",
	Short: "Lists the locations within a radius of an address",
	Example: `  locamap search "Birmingham, AL" --radius 10 --unit mi
  locamap search "Plaza Independencia, Montevideo" --radius 2 --filter cafe`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		sess := newSession(opts, mapview.NewCanvas(), session.LogNotifier{}, newSpinner("Searching"), nil)
		defer sess.Close()

		address := strings.Join(args, " ")
		if err := sess.Search(cmd.Context(), address, searchOpts.radius, opts.Unit); err != nil {
			return err
		}

		printPanel(os.Stdout, sess.Presenter().Filter(searchOpts.filter))

		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Lists every location known to the webhook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		sess := newSession(opts, mapview.NewCanvas(), session.LogNotifier{}, newSpinner("Loading"), nil)
		defer sess.Close()

		if err := sess.LoadAll(cmd.Context()); err != nil {
			return err
		}

		printPanel(os.Stdout, sess.Presenter().Filter(searchOpts.filter))

		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Asks the webhook to refresh its data and lists the reloaded locations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		sess := newSession(opts, mapview.NewCanvas(), session.LogNotifier{}, newSpinner("Updating"), nil)
		defer sess.Close()

		if err := sess.TriggerUpdate(cmd.Context()); err != nil {
			return err
		}

		sess.WaitRefresh()
		printPanel(os.Stdout, sess.Presenter().Panel())

		return nil
	},
}

func init() {
	searchCmd.Flags().Float64VarP(&searchOpts.radius, "radius", "r", 10, "search radius, in --unit")
	searchCmd.Flags().StringVar(&searchOpts.filter, "filter", "", "only list locations whose name or address contains this text")
	loadCmd.Flags().StringVar(&searchOpts.filter, "filter", "", "only list locations whose name or address contains this text")

	rootCmd.AddCommand(searchCmd, loadCmd, updateCmd)
}
