// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package sidebar

const sidebarHTML = `<section class="sidebar" id="sidebar">
  <header class="results-header">{{.Header}}</header>
  {{- if .Empty}}
  <div class="no-results">No locations found{{with .Radius}} within {{.}}{{end}}.</div>
  {{- else}}
  <ol class="results">
    {{- range .Cards}}
    <li class="card state-{{.State}}" data-key="{{.Key}}" data-serial="{{.Serial}}" data-lat="{{.Point.Lat}}" data-lng="{{.Point.Lng}}">
      <div class="card-title"><span class="rank">{{.Rank}}</span> <span class="name">{{.Name}}</span>
        {{- with .Distance}} <span class="distance">{{.}}</span>{{end}}</div>
      {{- range .Fields}}
      <div class="field field-{{.Kind}}"><span class="label">{{.Label}}:</span>
        {{- if eq .Kind "email"}} <a href="mailto:{{.Value}}">{{.Value}}</a>
        {{- else if eq .Kind "link"}} <a href="{{.Value}}" target="_blank" rel="noopener">{{.Value}}</a>
        {{- else if eq .Kind "phone"}} <a href="tel:{{.Value}}">{{.Value}}</a>
        {{- else}} {{.Value}}{{end}}</div>
      {{- end}}
      {{- if .Rating}}
      <div class="rating" data-rating="{{.Rating}}">{{stars .Rating}}</div>
      {{- end}}
      {{- with .Feedback}}
      <blockquote class="feedback">{{.}}</blockquote>
      {{- end}}
      {{- if .Thanked}}
      <div class="thanks">Thank you for your feedback!</div>
      {{- end}}
      {{- if or (eq .State.String "editing") (eq .State.String "submitting")}}
      <form class="feedback-editor" data-key="{{.Key}}">
        <div class="stars">
          {{- $disabled := .Disabled}}
          {{- range .Stars}}
          <button type="button" class="star{{if .Selected}} selected{{end}}" data-value="{{.Value}}"{{if $disabled}} disabled{{end}}>★</button>
          {{- end}}
        </div>
        <textarea name="feedback"{{if .Disabled}} disabled{{end}}>{{.Draft.Text}}</textarea>
        {{- with .Error}}
        <div class="error">{{.}}</div>
        {{- end}}
        <button type="submit" class="submit"{{if .Disabled}} disabled{{end}}>{{if .Disabled}}Submitting…{{else}}Submit{{end}}</button>
        <button type="button" class="cancel"{{if .Disabled}} disabled{{end}}>Cancel</button>
      </form>
      {{- else}}
      <button type="button" class="write-feedback" data-key="{{.Key}}">Write feedback</button>
      {{- end}}
    </li>
    {{- end}}
  </ol>
  {{- end}}
</section>
`
