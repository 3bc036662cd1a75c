// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package sidebar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/webhook"
)

// State of the feedback editor of a card.
type State int

const (
	Idle State = iota
	Editing
	Submitting
	Succeeded
	Failed
)

var stateNames = [...]string{"idle", "editing", "submitting", "succeeded", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)

			return nil
		}
	}

	return fmt.Errorf("unknown feedback state %q", text)
}

var (
	// ErrRatingRequired is returned when submitting without a star rating.
	ErrRatingRequired = errors.New("select a rating before submitting")
	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrNotEditing is returned when the editor is not open.
	ErrNotEditing = errors.New("feedback editor is not open")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("feedback submission in progress")
	// ErrUnknownCard is returned when a card key does not match the current results.
	ErrUnknownCard = errors.New("unknown card")
)

// Reviewer submits reviews to the remote review webhook.
type Reviewer interface {
	SubmitReview(ctx context.Context, review webhook.Review) error
}

// Draft is the unsaved content of a feedback editor.
type Draft struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// TransitionFunc observes state changes of card editors.
type TransitionFunc func(key string, from, to State)

// Card is a result in the panel together with its feedback editor. Each card
// has its own lock; submissions on different cards do not wait on each other.
type Card struct {
	mu       sync.Mutex
	key      string
	result   locations.RankedResult
	state    State
	draft    Draft
	lastErr  error
	thanked  bool
	observer TransitionFunc
}

func newCard(key string, result locations.RankedResult, observer TransitionFunc) *Card {
	return &Card{key: key, result: result, observer: observer}
}

// Key identifies the card within the panel.
func (c *Card) Key() string {
	return c.key
}

func (c *Card) transition(to State) {
	from := c.state
	c.state = to

	if c.observer != nil && from != to {
		c.observer(c.key, from, to)
	}
}

// State returns the current editor state.
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Disabled reports whether the inputs of the card are disabled.
func (c *Card) Disabled() bool {
	return c.State() == Submitting
}

// Draft returns the current draft.
func (c *Card) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draft
}

// Open starts editing. Opening an editor that is already open keeps its draft.
func (c *Card) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Submitting:
		return ErrSubmitting
	case Editing:
		return nil
	}

	c.draft = Draft{}
	c.lastErr = nil
	c.thanked = false
	c.transition(Editing)

	return nil
}

// SelectRating sets the star rating of the draft.
func (c *Card) SelectRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}

	c.draft.Rating = rating

	return nil
}

// SetText sets the feedback text of the draft.
func (c *Card) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}

	c.draft.Text = text

	return nil
}

// Cancel discards the draft and closes the editor.
func (c *Card) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitting
	}

	c.draft = Draft{}
	c.lastErr = nil
	c.transition(Idle)

	return nil
}

func (c *Card) editable() error {
	switch c.state {
	case Editing:
		return nil
	case Submitting:
		return ErrSubmitting
	default:
		return ErrNotEditing
	}
}

// Submit sends the draft to the reviewer. Without a rating nothing is sent
// and the state does not change. On success the displayed rating and
// feedback are updated and the editor closes; on failure the editor stays
// open with the draft intact.
func (c *Card) Submit(ctx context.Context, reviewer Reviewer) error {
	c.mu.Lock()

	if err := c.editable(); err != nil {
		c.mu.Unlock()

		return err
	}

	if c.draft.Rating == 0 {
		c.mu.Unlock()

		return ErrRatingRequired
	}

	draft := c.draft
	review := webhook.Review{
		Serial:   c.result.SerialID,
		Review:   draft.Rating,
		Feedback: strings.TrimSpace(draft.Text),
	}

	c.lastErr = nil
	c.transition(Submitting)
	c.mu.Unlock()

	err := reviewer.SubmitReview(ctx, review)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.transition(Failed)
		c.lastErr = err
		c.transition(Editing)

		return fmt.Errorf("submitting feedback for %s: %w", review.Serial, err)
	}

	c.transition(Succeeded)
	c.result.Rating = review.Review
	c.result.FeedbackText = review.Feedback
	c.draft = Draft{}
	c.thanked = true
	c.transition(Idle)

	return nil
}
