// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/locamap/locamap/geocode"
	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/session"
	"github.com/locamap/locamap/sidebar"
	"github.com/locamap/locamap/spatial"
	"github.com/locamap/locamap/webhook"
)

// SearchState describes the last successful search.
type SearchState struct {
	Reference *spatial.Point `json:"reference,omitempty"`
	Radius    float64        `json:"radius,omitempty"`
	Unit      spatial.Unit   `json:"unit"`
}

// State is everything the browser widget mirrors.
type State struct {
	Loading bool `json:"loading"`
	// ControlsEnabled tells the page whether search, load and update accept input.
	ControlsEnabled bool             `json:"controls_enabled"`
	Search          SearchState      `json:"search"`
	Map             mapview.View     `json:"map"`
	Panel           sidebar.Panel    `json:"panel"`
	Notices         []session.Notice `json:"notices"`
}

type searchRequest struct {
	Address string  `json:"address"`
	Radius  float64 `json:"radius"`
	Unit    string  `json:"unit"`
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) snapshot(filter string) State {
	search := s.session.SearchContext()

	return State{
		Loading:         s.session.Loading(),
		ControlsEnabled: s.controls.Enabled(),
		Search:          SearchState{Reference: search.Reference, Radius: search.Radius, Unit: search.Unit},
		Map:             s.canvas.Snapshot(),
		Panel:           s.session.Presenter().Filter(filter),
		Notices:         s.notices.Recent(),
	}
}

func (s *Server) state(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.snapshot(ctx.Query("filter")))
}

func (s *Server) visible(ctx *gin.Context) {
	markers := s.canvas.Visible()
	if markers == nil {
		markers = []mapview.Marker{}
	}

	ctx.JSON(http.StatusOK, markers)
}

// defaultClusterDistance is the grouping distance, in meters, when the
// request does not give one.
const defaultClusterDistance = 500

func (s *Server) clusters(ctx *gin.Context) {
	distance := float64(defaultClusterDistance)

	if v := ctx.Query("distance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || !(d > 0) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "distance must be a positive number of meters"})

			return
		}

		distance = d
	}

	ctx.JSON(http.StatusOK, mapview.ClusterMarkers(s.canvas.Visible(), distance))
}

func (s *Server) search(ctx *gin.Context) {
	if s.session.Loading() {
		ctx.JSON(http.StatusConflict, gin.H{"ignored": true})

		return
	}

	var req searchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})

		return
	}

	unit := s.unit
	if req.Unit != "" {
		var err error
		if unit, err = spatial.ParseUnit(req.Unit); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}
	}

	err := s.session.Search(ctx.Request.Context(), req.Address, req.Radius, unit)
	s.respond(ctx, err, http.StatusOK)
}

func (s *Server) load(ctx *gin.Context) {
	s.respond(ctx, s.session.LoadAll(ctx.Request.Context()), http.StatusOK)
}

func (s *Server) update(ctx *gin.Context) {
	s.respond(ctx, s.session.TriggerUpdate(ctx.Request.Context()), http.StatusAccepted)
}

// respond writes the state, or the error with the notice the session raised
// for it.
func (s *Server) respond(ctx *gin.Context, err error, okStatus int) {
	if errors.Is(err, session.ErrBusy) {
		ctx.JSON(http.StatusConflict, gin.H{"ignored": true})

		return
	}

	if err != nil {
		body := gin.H{"error": err.Error()}
		if n, ok := s.notices.Last(); ok {
			body["notice"] = n
		}

		ctx.JSON(statusFor(err), body)

		return
	}

	ctx.JSON(okStatus, s.snapshot(""))
}

func statusFor(err error) int {
	var hookErr *webhook.Error

	switch {
	case errors.Is(err, session.ErrValidation),
		errors.Is(err, sidebar.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, sidebar.ErrRatingRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sidebar.ErrUnknownCard), geocode.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, sidebar.ErrNotEditing),
		errors.Is(err, sidebar.ErrSubmitting):
		return http.StatusConflict
	case errors.As(err, &hookErr):
		return webhookStatus(err, hookErr)
	case geocode.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case geocode.IsTimeoutError(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// webhookStatus maps a failed call to the location webhook. The error detail
// is free text from the remote side and is not inspected.
func webhookStatus(err error, hookErr *webhook.Error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case hookErr.StatusCode == 0:
		return http.StatusServiceUnavailable
	case webhook.IsServerError(err):
		return http.StatusBadGateway
	case hookErr.StatusCode >= 400:
		// the webhook rejected a request built here
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) card(ctx *gin.Context) (*sidebar.Card, bool) {
	card, ok := s.session.Presenter().Card(ctx.Param("serial"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": sidebar.ErrUnknownCard.Error()})

		return nil, false
	}

	return card, true
}

// cardResult writes the card as it now renders.
func (s *Server) cardResult(ctx *gin.Context, card *sidebar.Card, err error) {
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error(), "state": card.State()})

		return
	}

	for _, view := range s.session.Presenter().Panel().Cards {
		if view.Key == card.Key() {
			ctx.JSON(http.StatusOK, view)

			return
		}
	}

	// The result set was replaced while the request was served.
	ctx.JSON(http.StatusGone, gin.H{"error": sidebar.ErrUnknownCard.Error()})
}

func (s *Server) openFeedback(ctx *gin.Context) {
	if card, ok := s.card(ctx); ok {
		s.cardResult(ctx, card, card.Open())
	}
}

func (s *Server) cancelFeedback(ctx *gin.Context) {
	if card, ok := s.card(ctx); ok {
		s.cardResult(ctx, card, card.Cancel())
	}
}

func (s *Server) selectRating(ctx *gin.Context) {
	card, ok := s.card(ctx)
	if !ok {
		return
	}

	var req ratingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})

		return
	}

	s.cardResult(ctx, card, card.SelectRating(req.Rating))
}

func (s *Server) setText(ctx *gin.Context) {
	card, ok := s.card(ctx)
	if !ok {
		return
	}

	var req textRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})

		return
	}

	s.cardResult(ctx, card, card.SetText(req.Text))
}

func (s *Server) submitFeedback(ctx *gin.Context) {
	card, ok := s.card(ctx)
	if !ok {
		return
	}

	s.cardResult(ctx, card, s.session.SubmitFeedback(ctx.Request.Context(), card.Key()))
}
