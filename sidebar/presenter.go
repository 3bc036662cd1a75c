// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package sidebar renders ranked results as cards and runs the feedback
// editor of every card.
package sidebar

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/spatial"
	"github.com/locamap/locamap/utils/textutils"
)

// RadiusLabel describes the active search area shown in the header. A zero
// Radius means the panel lists all locations.
type RadiusLabel struct {
	Radius float64
	Unit   spatial.Unit
}

func (l RadiusLabel) String() string {
	if l.Radius <= 0 {
		return ""
	}

	return textutils.FormatDecimal(l.Radius, decimals(l.Radius)) + " " + l.Unit.Label()
}

func decimals(v float64) int {
	if v == float64(int64(v)) {
		return 0
	}

	return 1
}

// FieldKind tells the template how to render an optional field.
type FieldKind string

const (
	FieldText  FieldKind = "text"
	FieldEmail FieldKind = "email"
	FieldLink  FieldKind = "link"
	FieldPhone FieldKind = "phone"
)

// Field is an optional, non-empty card attribute.
type Field struct {
	Label string    `json:"label"`
	Value string    `json:"value"`
	Kind  FieldKind `json:"kind"`
}

// CardView is the render state of a card.
type CardView struct {
	Key      string        `json:"key"`
	Serial   string        `json:"serial"`
	Rank     int           `json:"rank"`
	Name     string        `json:"name"`
	Point    spatial.Point `json:"point"`
	Distance string        `json:"distance,omitempty"`
	Fields   []Field       `json:"fields,omitempty"`
	Rating   int           `json:"rating,omitempty"`
	Feedback string        `json:"feedback,omitempty"`
	State    State         `json:"state"`
	Disabled bool          `json:"disabled"`
	Draft    Draft         `json:"draft"`
	Error    string        `json:"error,omitempty"`
	Thanked  bool          `json:"thanked,omitempty"`
	Stars    []Star        `json:"-"`
}

// Star is one of the five rating inputs of an open editor.
type Star struct {
	Value    int
	Selected bool
}

// Panel is the render state of the sidebar.
type Panel struct {
	Header string     `json:"header"`
	Count  int        `json:"count"`
	Radius string     `json:"radius,omitempty"`
	Empty  bool       `json:"empty"`
	Cards  []CardView `json:"cards"`
}

// Presenter owns the cards of the current result set.
type Presenter struct {
	mu       sync.RWMutex
	cards    []*Card
	byKey    map[string]*Card
	label    RadiusLabel
	rendered bool
	observer TransitionFunc
}

// NewPresenter creates an empty presenter. observer may be nil.
func NewPresenter(observer TransitionFunc) *Presenter {
	return &Presenter{byKey: make(map[string]*Card), observer: observer}
}

// Render replaces the cards with the given results and returns the new panel.
// Open editors of the previous result set are discarded.
func (p *Presenter) Render(results []locations.RankedResult, label RadiusLabel) Panel {
	p.mu.Lock()

	p.cards = make([]*Card, 0, len(results))
	p.byKey = make(map[string]*Card, len(results))
	p.label = label
	p.rendered = true

	for _, res := range results {
		key := res.SerialID
		if _, dup := p.byKey[key]; dup {
			key = fmt.Sprintf("%s-%d", res.SerialID, res.Rank)
		}

		card := newCard(key, res, p.observer)
		p.cards = append(p.cards, card)
		p.byKey[key] = card
	}

	p.mu.Unlock()

	return p.Panel()
}

// Card returns the card with the given key.
func (p *Presenter) Card(key string) (*Card, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.byKey[key]

	return c, ok
}

// Submit submits the draft of a card.
func (p *Presenter) Submit(ctx context.Context, key string, reviewer Reviewer) error {
	c, ok := p.Card(key)
	if !ok {
		return fmt.Errorf("card %q: %w", key, ErrUnknownCard)
	}

	return c.Submit(ctx, reviewer)
}

// Panel returns the current render state, reflecting in-place card updates.
func (p *Presenter) Panel() Panel {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.panel(p.cards)
}

// Filter returns the panel restricted to cards whose name, business name or
// address contains query, ignoring case and accents.
func (p *Presenter) Filter(query string) Panel {
	p.mu.RLock()
	defer p.mu.RUnlock()

	q := textutils.LowerASCIIFolding(query)
	if q == "" {
		return p.panel(p.cards)
	}

	var matches []*Card

	for _, c := range p.cards {
		c.mu.Lock()
		haystack := textutils.LowerASCIIFolding(strings.Join([]string{
			c.result.Name, c.result.BusinessName, c.result.Address,
		}, " "))
		c.mu.Unlock()

		if strings.Contains(haystack, q) {
			matches = append(matches, c)
		}
	}

	return p.panel(matches)
}

func (p *Presenter) panel(cards []*Card) Panel {
	panel := Panel{
		Count:  len(cards),
		Radius: p.label.String(),
		Empty:  len(cards) == 0,
		Cards:  make([]CardView, 0, len(cards)),
	}

	count := textutils.FormatInt(int64(len(cards)))

	noun := "locations"
	if len(cards) == 1 {
		noun = "location"
	}

	switch {
	case !p.rendered:
		panel.Header = "Search for an address to find nearby locations"
	case panel.Radius != "":
		panel.Header = fmt.Sprintf("%s %s within %s", count, noun, panel.Radius)
	default:
		panel.Header = fmt.Sprintf("%s %s", count, noun)
	}

	for _, c := range cards {
		panel.Cards = append(panel.Cards, c.view(p.label.Unit))
	}

	return panel
}

func (c *Card) view(unit spatial.Unit) CardView {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.result
	v := CardView{
		Key:      c.key,
		Serial:   r.SerialID,
		Rank:     r.Rank,
		Name:     r.Name,
		Rating:   r.Rating,
		Feedback: r.FeedbackText,
		State:    c.state,
		Disabled: c.state == Submitting,
		Draft:    c.draft,
		Thanked:  c.thanked,
		Point:    r.Point,
	}

	if v.Name == "" {
		v.Name = r.BusinessName
	}

	if r.Distance != nil {
		v.Distance = textutils.FormatDecimal(*r.Distance, 1) + " " + unit.Label()
	}

	if c.lastErr != nil {
		v.Error = "Could not submit feedback, please try again."
	}

	for _, f := range []Field{
		{"Business", r.BusinessName, FieldText},
		{"Address", r.Address, FieldText},
		{"Type", r.Type, FieldText},
		{"Region", r.Region, FieldText},
		{"Contact", r.ContactPhone, FieldPhone},
		{"Email", r.Email, FieldEmail},
		{"Website", r.Website, FieldLink},
	} {
		if f.Value != "" && !(f.Label == "Business" && f.Value == v.Name) {
			v.Fields = append(v.Fields, f)
		}
	}

	for i := 1; i <= 5; i++ {
		v.Stars = append(v.Stars, Star{Value: i, Selected: i <= c.draft.Rating})
	}

	return v
}

// HTML writes the panel markup.
func (p *Presenter) HTML(w io.Writer) error {
	return WritePanel(w, p.Panel())
}

// WritePanel writes the markup of a panel.
func WritePanel(w io.Writer, panel Panel) error {
	if err := panelTemplate.Execute(w, panel); err != nil {
		return fmt.Errorf("rendering sidebar: %w", err)
	}

	return nil
}

var panelTemplate = template.Must(template.New("sidebar").Funcs(template.FuncMap{
	"stars": func(n int) string {
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}).Parse(sidebarHTML))
