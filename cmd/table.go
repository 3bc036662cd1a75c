// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/locamap/locamap/sidebar"
)

const (
	rankWidth     = 3
	nameWidth     = 32
	distanceWidth = 12
	addressWidth  = 44
)

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-1]) + "…"
}

func fieldValue(card sidebar.CardView, label string) string {
	for _, f := range card.Fields {
		if f.Label == label {
			return f.Value
		}
	}

	return ""
}

// printPanel writes the panel as a box table.
func printPanel(w io.Writer, panel sidebar.Panel) {
	fmt.Fprintln(w, panel.Header)

	if panel.Empty {
		if panel.Radius != "" {
			fmt.Fprintf(w, "No locations found within %s.\n", panel.Radius)
		}

		return
	}

	a, b, c, d := strings.Repeat("─", rankWidth), strings.Repeat("─", nameWidth),
		strings.Repeat("─", distanceWidth), strings.Repeat("─", addressWidth)

	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
	fmt.Fprintf(w, "│ %*s │ %-*s │ %*s │ %-*s │\n",
		rankWidth, "#", nameWidth, "Name", distanceWidth, "Distance", addressWidth, "Address")
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

	for _, card := range panel.Cards {
		fmt.Fprintf(w, "│ %*d │ %-*s │ %*s │ %-*s │\n",
			rankWidth, card.Rank,
			nameWidth, truncate(card.Name, nameWidth),
			distanceWidth, truncate(card.Distance, distanceWidth),
			addressWidth, truncate(fieldValue(card, "Address"), addressWidth))
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)
}
