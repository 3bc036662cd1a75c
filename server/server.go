// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server publishes a session to the browser: the page, the map state
// as JSON and the search, load, update and feedback actions.
package server

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/session"
	"github.com/locamap/locamap/sidebar"
	"github.com/locamap/locamap/spatial"
)

//go:embed templates/*.html
var templates embed.FS

// Server serves one session. The map canvas, the notice log and the controls
// must be the ones the session was created with.
type Server struct {
	session  *session.Session
	canvas   *mapview.Canvas
	notices  *session.NoticeLog
	controls *session.ControlState
	unit     spatial.Unit
}

// New creates a server. unit is the default of the search form.
func New(sess *session.Session, canvas *mapview.Canvas, notices *session.NoticeLog, controls *session.ControlState, unit spatial.Unit) *Server {
	return &Server{
		session:  sess,
		canvas:   canvas,
		notices:  notices,
		controls: controls,
		unit:     unit,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.html")))

	r.GET("/", s.index)

	api := r.Group("/api")
	api.GET("/state", s.state)
	api.GET("/sidebar", s.sidebarHTML)
	api.GET("/visible", s.visible)
	api.GET("/clusters", s.clusters)
	api.POST("/search", s.search)
	api.POST("/load", s.load)
	api.POST("/update", s.update)

	cards := api.Group("/cards/:serial/feedback")
	cards.POST("", s.openFeedback)
	cards.PUT("/rating", s.selectRating)
	cards.PUT("/text", s.setText)
	cards.POST("/submit", s.submitFeedback)
	cards.DELETE("", s.cancelFeedback)

	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("🗺️  Serving on http://%s", addr)

	return s.Router().Run(addr)
}

type pageData struct {
	Sidebar template.HTML
	Unit    string
	Units   []spatial.Unit
	Notice  *session.Notice
}

func (s *Server) index(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := s.session.Presenter().HTML(&buf); err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())

		return
	}

	unit := s.unit
	if search := s.session.SearchContext(); search.Reference != nil {
		unit = search.Unit
	}

	var last *session.Notice
	if n, ok := s.notices.Last(); ok {
		last = &n
	}

	ctx.HTML(http.StatusOK, "index.html", pageData{
		// produced by html/template, already escaped
		Sidebar: template.HTML(buf.String()),
		Unit:    unit.String(),
		Units:   []spatial.Unit{spatial.Kilometers, spatial.Miles},
		Notice:  last,
	})
}

func (s *Server) sidebarHTML(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := sidebar.WritePanel(&buf, s.session.Presenter().Filter(ctx.Query("filter"))); err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())

		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
