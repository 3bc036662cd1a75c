// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"html/template"
	"log"
	"strings"

	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/spatial"
	"github.com/locamap/locamap/utils/textutils"
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="popup"><strong>{{.Name}}</strong>` +
		`{{with .BusinessName}}<br>{{.}}{{end}}` +
		`{{with .Address}}<br>{{.}}{{end}}` +
		`{{with .Type}}<br><em>{{.}}</em>{{end}}` +
		`{{with .Region}}<br>{{.}}{{end}}` +
		`{{with .ContactPhone}}<br>📞 {{.}}{{end}}` +
		`{{with .Email}}<br>✉️ <a href="mailto:{{.}}">{{.}}</a>{{end}}` +
		`{{with .Website}}<br><a href="{{.}}" target="_blank" rel="noopener">{{.}}</a>{{end}}` +
		`{{with .Distance}}<br>{{.}} away{{end}}` +
		`{{if .Rating}}<br>{{.Stars}}{{end}}` +
		`</div>`))

type popupData struct {
	locations.Location
	Distance string
	Stars    string
}

// Popup renders the marker popup of a result. Empty fields are left out.
func Popup(res locations.RankedResult, unit spatial.Unit) string {
	data := popupData{Location: res.Location}
	if res.Distance != nil {
		data.Distance = textutils.FormatDecimal(*res.Distance, 1) + " " + unit.Label()
	}

	if res.Rating > 0 {
		data.Stars = strings.Repeat("★", res.Rating) + strings.Repeat("☆", 5-res.Rating)
	}

	var sb strings.Builder
	if err := popupTemplate.Execute(&sb, data); err != nil {
		log.Printf("⚠️  Rendering popup for %s: %v", res.SerialID, err)

		return ""
	}

	return sb.String()
}
