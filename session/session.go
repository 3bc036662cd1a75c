// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package session sequences geocoding, location queries and the refresh of
// the map and the sidebar for one user session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/locamap/locamap/geocode"
	"github.com/locamap/locamap/locations"
	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/sidebar"
	"github.com/locamap/locamap/spatial"
	"github.com/locamap/locamap/utils/textutils"
	"github.com/locamap/locamap/webhook"
)

var (
	// ErrBusy is returned when a search or load is requested while another
	// one is in flight. The request is dropped.
	ErrBusy = errors.New("a search is already in progress")
	// ErrValidation is returned for input rejected before any network call.
	ErrValidation = errors.New("invalid search")
)

// defaultRefreshDelay applies when Options.RefreshDelay is zero.
const defaultRefreshDelay = 2 * time.Second

// Backend is the remote location API.
type Backend interface {
	All(ctx context.Context) ([]locations.RawRecord, error)
	Query(ctx context.Context, lat, lon, radiusKm float64) ([]locations.RawRecord, error)
	TriggerUpdate(ctx context.Context) error
	sidebar.Reviewer
}

// Options configures a Session.
type Options struct {
	Geocoder     geocode.Geocoder
	Backend      Backend
	Map          mapview.Map
	Notifier     Notifier
	Controls     Controls
	RefreshDelay time.Duration
	// Observer is told about feedback editor transitions.
	Observer sidebar.TransitionFunc
}

// Session owns the state of one map front end: the last search context, the
// loading flag, the map overlays and the sidebar cards.
type Session struct {
	geocoder     geocode.Geocoder
	backend      Backend
	reconciler   *mapview.Reconciler
	presenter    *sidebar.Presenter
	notifier     Notifier
	controls     Controls
	refreshDelay time.Duration

	loading atomic.Bool

	mu      sync.RWMutex
	search  locations.SearchContext
	results []locations.RankedResult

	refreshMu sync.Mutex
	refresh   *pendingRefresh
	closed    bool
}

// pendingRefresh is one scheduled reload. done closes once it has run or was
// stopped, and not before the refresh it replaced is done.
type pendingRefresh struct {
	timer *time.Timer
	prev  *pendingRefresh
	done  chan struct{}
}

func (r *pendingRefresh) finish() {
	if r.prev != nil {
		<-r.prev.done
	}

	close(r.done)
}

func (r *pendingRefresh) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// New creates a session.
func New(opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}

	if opts.Controls == nil {
		opts.Controls = &ControlState{}
	}

	if opts.RefreshDelay == 0 {
		opts.RefreshDelay = defaultRefreshDelay
	}

	if opts.Map == nil {
		opts.Map = mapview.NewCanvas()
	}

	return &Session{
		geocoder:     opts.Geocoder,
		backend:      opts.Backend,
		reconciler:   mapview.NewReconciler(opts.Map),
		presenter:    sidebar.NewPresenter(opts.Observer),
		notifier:     opts.Notifier,
		controls:     opts.Controls,
		refreshDelay: opts.RefreshDelay,
		search:       locations.SearchContext{Unit: spatial.Kilometers},
	}
}

// Loading reports whether a search or load is in flight.
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// SearchContext returns the context of the last successful search.
func (s *Session) SearchContext() locations.SearchContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.search
}

// Results returns the ranked results currently displayed.
func (s *Session) Results() []locations.RankedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]locations.RankedResult(nil), s.results...)
}

// Presenter returns the sidebar presenter.
func (s *Session) Presenter() *sidebar.Presenter {
	return s.presenter
}

func (s *Session) notify(kind NoticeKind, format string, args ...any) {
	s.notifier.Notify(Notice{Kind: kind, Message: fmt.Sprintf(format, args...), At: time.Now()})
}

// begin enters the loading state, or reports false when already loading.
func (s *Session) begin() bool {
	if !s.loading.CompareAndSwap(false, true) {
		return false
	}

	s.controls.SetEnabled(false)

	return true
}

func (s *Session) end() {
	s.loading.Store(false)
	s.controls.SetEnabled(true)
}

// Search geocodes address and shows the locations within radius of it.
func (s *Session) Search(ctx context.Context, address string, radius float64, unit spatial.Unit) error {
	if s.loading.Load() {
		return ErrBusy
	}

	address = strings.TrimSpace(address)
	if address == "" {
		s.notify(NoticeError, "Please enter an address.")

		return fmt.Errorf("%w: address is required", ErrValidation)
	}

	if !(radius > 0) {
		s.notify(NoticeError, "Please enter a radius greater than zero.")

		return fmt.Errorf("%w: radius must be positive, got %v", ErrValidation, radius)
	}

	if math.IsInf(radius, 1) {
		s.notify(NoticeError, "Please enter a finite radius.")

		return fmt.Errorf("%w: radius must be finite", ErrValidation)
	}

	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	found, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if geocode.IsNotFound(err) {
			s.notify(NoticeError, "Address not found: %s", address)
		} else {
			s.notify(NoticeError, "Could not look up the address. Please try again.")
		}

		return fmt.Errorf("geocoding %q: %w", address, err)
	}

	center := found.Point
	radiusKm := unit.ToKilometers(radius)

	records, err := s.backend.Query(ctx, center.Lat, center.Lng, radiusKm)
	if err != nil {
		s.notify(NoticeError, "Search failed. Please try again.")

		return fmt.Errorf("querying locations: %w", err)
	}

	search := locations.SearchContext{Reference: &center, Radius: radius, Unit: unit}
	results := s.apply(records, search, &mapview.Overlay{Center: center, Radius: radius, Unit: unit})

	place := found.DisplayName
	if place == "" {
		place = address
	}

	label := sidebar.RadiusLabel{Radius: radius, Unit: unit}
	if len(results) == 0 {
		s.notify(NoticeInfo, "No locations found within %s of %s.", label, place)
	} else {
		s.notify(NoticeSuccess, "Found %s within %s.", plural(len(results)), label)
	}

	return nil
}

// LoadAll shows every location known to the backend. Distances are annotated
// when a previous search set a reference point.
func (s *Session) LoadAll(ctx context.Context) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	records, err := s.backend.All(ctx)
	if err != nil {
		s.notify(NoticeError, "Could not load locations. Please try again.")

		return fmt.Errorf("loading locations: %w", err)
	}

	s.mu.RLock()
	search := s.search
	s.mu.RUnlock()

	results := s.apply(records, search, nil)
	log.Printf("✅ Loaded %s", plural(len(results)))

	return nil
}

// apply runs the records through the pipeline and refreshes both views from
// the same ranked list.
func (s *Session) apply(records []locations.RawRecord, search locations.SearchContext, overlay *mapview.Overlay) []locations.RankedResult {
	results := locations.Process(locations.NormalizeBatch(records), search)

	s.mu.Lock()
	s.search = search
	s.results = results
	s.mu.Unlock()

	s.reconciler.Reconcile(results, overlay)

	label := sidebar.RadiusLabel{Unit: search.Unit}
	if overlay != nil {
		label.Radius = search.Radius
	}

	s.presenter.Render(results, label)

	return results
}

// TriggerUpdate asks the backend to refresh its data and, once accepted,
// reloads every location after the refresh delay.
func (s *Session) TriggerUpdate(ctx context.Context) error {
	if !s.begin() {
		return ErrBusy
	}

	err := s.backend.TriggerUpdate(ctx)
	s.end()

	if err != nil {
		s.notify(NoticeError, "Update failed. Please try again.")

		return fmt.Errorf("triggering update: %w", err)
	}

	s.notify(NoticeSuccess, "Update started, refreshing the map shortly.")
	s.scheduleRefresh()

	return nil
}

func (s *Session) scheduleRefresh() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.closed {
		return
	}

	r := &pendingRefresh{done: make(chan struct{})}

	if prev := s.refresh; prev != nil {
		if prev.timer.Stop() {
			go prev.finish()
		}

		if !prev.finished() {
			r.prev = prev
		}
	}

	r.timer = time.AfterFunc(s.refreshDelay, func() {
		defer r.finish()

		if err := s.LoadAll(context.Background()); err != nil && !errors.Is(err, ErrBusy) {
			log.Printf("Refresh after update failed - %v", err)
		}
	})
	s.refresh = r
}

func (s *Session) lastRefresh() *pendingRefresh {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	return s.refresh
}

// Close cancels a scheduled refresh and waits for a running one.
func (s *Session) Close() {
	s.refreshMu.Lock()
	s.closed = true

	r := s.refresh
	if r != nil && r.timer.Stop() {
		go r.finish()
	}
	s.refreshMu.Unlock()

	if r != nil {
		<-r.done
	}
}

// WaitRefresh blocks until the last scheduled refresh, and any refresh still
// running before it, has finished. It returns at once when none was scheduled.
func (s *Session) WaitRefresh() {
	if r := s.lastRefresh(); r != nil {
		<-r.done
	}
}

// SubmitFeedback submits the draft of the card with the given key. It is not
// subject to the loading guard.
func (s *Session) SubmitFeedback(ctx context.Context, key string) error {
	err := s.presenter.Submit(ctx, key, s.backend)

	switch {
	case err == nil:
		s.notify(NoticeSuccess, "Thank you for your feedback!")
	case errors.Is(err, sidebar.ErrRatingRequired):
		s.notify(NoticeError, "Please select a rating before submitting.")
	case errors.Is(err, sidebar.ErrUnknownCard), errors.Is(err, sidebar.ErrNotEditing), errors.Is(err, sidebar.ErrSubmitting):
		// stale UI, the card re-renders with its current state
	default:
		s.notify(NoticeError, "Could not submit feedback. Please try again.")
	}

	return err
}

func plural(n int) string {
	if n == 1 {
		return "1 location"
	}

	return textutils.FormatInt(int64(n)) + " locations"
}

var _ Backend = (*webhook.Client)(nil)
