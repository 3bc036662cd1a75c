// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/locamap/locamap/geocode"
	"github.com/locamap/locamap/mapview"
	"github.com/locamap/locamap/session"
	"github.com/locamap/locamap/sidebar"
	"github.com/locamap/locamap/spatial"
	"github.com/locamap/locamap/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// remote fakes the geocoder and the location webhooks on one server.
type remote struct {
	mu      sync.Mutex
	queries []map[string]float64
	reviews []webhook.Review
	records string

	// when non-zero, the query webhook answers with this status.
	queryStatus int

	// when set, geocoding blocks until release is closed.
	started chan struct{}
	release chan struct{}
}

func (r *remote) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /search", func(w http.ResponseWriter, req *http.Request) {
		if r.started != nil {
			r.started <- struct{}{}
			<-r.release
		}

		if req.URL.Query().Get("q") != "Birmingham, AL" {
			_, _ = w.Write([]byte(`[]`))

			return
		}

		_, _ = w.Write([]byte(`[{"lat":"33.5207","lon":"-86.8025","display_name":"Birmingham, Jefferson County, Alabama"}]`))
	})

	mux.HandleFunc("POST /hook/query", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]float64
		_ = json.NewDecoder(req.Body).Decode(&body)

		r.mu.Lock()
		r.queries = append(r.queries, body)
		records, status := r.records, r.queryStatus
		r.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
		}

		_, _ = w.Write([]byte(records))
	})

	mux.HandleFunc("GET /hook/data", func(w http.ResponseWriter, _ *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()

		_, _ = w.Write([]byte(r.records))
	})

	mux.HandleFunc("POST /hook/update", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /review", func(w http.ResponseWriter, req *http.Request) {
		var review webhook.Review
		_ = json.NewDecoder(req.Body).Decode(&review)

		r.mu.Lock()
		r.reviews = append(r.reviews, review)
		r.mu.Unlock()

		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	return mux
}

const birminghamRecords = `[
	{"name":"Railroad Park","lat":33.5086,"lng":-86.8115,"serial":"RP","email":"info@railroadpark.org"},
	{"name":"Vulcan Park","lat":33.4917,"lng":-86.7953,"serial":"VP"}
]`

func setupServerTest(t *testing.T) (*gin.Engine, *remote) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rem := &remote{records: birminghamRecords}
	ts := httptest.NewServer(rem.handler())
	t.Cleanup(ts.Close)

	canvas := mapview.NewCanvas()
	notices := session.NewNoticeLog(10)
	controls := &session.ControlState{}

	sess := session.New(session.Options{
		Geocoder:     geocode.NewNominatim(ts.URL+"/search", ts.Client()).WithLimit(rate.Inf, 1),
		Backend:      webhook.NewClient(ts.URL+"/hook", ts.URL+"/review", ts.Client()),
		Map:          canvas,
		Notifier:     notices,
		Controls:     controls,
		RefreshDelay: 10 * time.Millisecond,
	})
	t.Cleanup(sess.Close)

	return New(sess, canvas, notices, controls, spatial.Miles).Router(), rem
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func search(t *testing.T, router http.Handler) State {
	t.Helper()

	w := do(t, router, http.MethodPost, "/api/search", searchRequest{Address: "Birmingham, AL", Radius: 10, Unit: "miles"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decode[State](t, w)
}

func TestIndex(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Search for an address to find nearby locations")
	assert.Contains(t, body, `<option value="mi" selected>miles</option>`)
	assert.Contains(t, body, "leaflet.js")
}

func TestSearchAPI(t *testing.T) {
	router, rem := setupServerTest(t)

	state := search(t, router)

	require.Len(t, rem.queries, 1)
	assert.InDelta(t, 16.0934, rem.queries[0]["radius"], 1e-9)
	assert.InDelta(t, 33.5207, rem.queries[0]["latitude"], 1e-9)
	assert.InDelta(t, -86.8025, rem.queries[0]["longitude"], 1e-9)

	assert.False(t, state.Loading)
	assert.True(t, state.ControlsEnabled)
	assert.Equal(t, spatial.Miles, state.Search.Unit)
	require.NotNil(t, state.Search.Reference)
	assert.Equal(t, "2 locations within 10 miles", state.Panel.Header)
	require.Len(t, state.Panel.Cards, 2)
	assert.Equal(t, "RP", state.Panel.Cards[0].Serial)
	assert.Contains(t, state.Panel.Cards[0].Distance, "miles")
	require.NotNil(t, state.Map.Viewport)

	// circle, search point and two locations
	assert.Len(t, state.Map.Layers, 4)

	require.NotEmpty(t, state.Notices)
	assert.Equal(t, session.NoticeSuccess, state.Notices[len(state.Notices)-1].Kind)

	w := do(t, router, http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), "Railroad Park")
}

func TestSearchWhileLoadingIsIgnored(t *testing.T) {
	router, rem := setupServerTest(t)
	rem.started = make(chan struct{})
	rem.release = make(chan struct{})

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- do(t, router, http.MethodPost, "/api/search", searchRequest{Address: "Birmingham, AL", Radius: 10})
	}()

	<-rem.started

	state := decode[State](t, do(t, router, http.MethodGet, "/api/state", nil))
	assert.True(t, state.Loading)
	assert.False(t, state.ControlsEnabled)

	w := do(t, router, http.MethodPost, "/api/search", searchRequest{Address: "Birmingham, AL", Radius: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"ignored":true}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/load", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	close(rem.release)
	assert.Equal(t, http.StatusOK, (<-done).Code)
	assert.Len(t, rem.queries, 1)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		notice string
	}{
		{"zero radius", searchRequest{Address: "Birmingham, AL"}, http.StatusBadRequest, "Please enter a radius greater than zero."},
		{"missing address", searchRequest{Radius: 5}, http.StatusBadRequest, "Please enter an address."},
		{"unknown unit", searchRequest{Address: "Birmingham, AL", Radius: 5, Unit: "leagues"}, http.StatusBadRequest, ""},
		{"address not found", searchRequest{Address: "Atlantis", Radius: 5}, http.StatusNotFound, "Address not found: Atlantis"},
		{"malformed body", "not an object", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, rem := setupServerTest(t)

			w := do(t, router, http.MethodPost, "/api/search", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, rem.queries)

			if tt.notice != "" {
				body := decode[struct {
					Notice session.Notice `json:"notice"`
				}](t, w)
				assert.Equal(t, tt.notice, body.Notice.Message)
			}
		})
	}
}

func TestSearchBackendFailure(t *testing.T) {
	router, rem := setupServerTest(t)
	rem.records = `<html><title>Bad Gateway</title></html>`

	w := do(t, router, http.MethodPost, "/api/search", searchRequest{Address: "Birmingham, AL", Radius: 5})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Search failed. Please try again.")
}

func TestSearchWebhookStatus(t *testing.T) {
	// the error page mentions a timeout and a 429 but the status decides
	page := `<html><title>Timeout: 429 Too Many Requests</title></html>`

	tests := []struct {
		name     string
		upstream int
		status   int
	}{
		{"server error", http.StatusServiceUnavailable, http.StatusBadGateway},
		{"rejected request", http.StatusBadRequest, http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, rem := setupServerTest(t)
			rem.records = page
			rem.queryStatus = tt.upstream

			w := do(t, router, http.MethodPost, "/api/search", searchRequest{Address: "Birmingham, AL", Radius: 5})
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestLoadAndUpdate(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodPost, "/api/load", nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decode[State](t, w)
	assert.Equal(t, "2 locations", state.Panel.Header)
	assert.Empty(t, state.Panel.Cards[0].Distance)

	w = do(t, router, http.MethodPost, "/api/update", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestFeedbackFlow(t *testing.T) {
	router, rem := setupServerTest(t)
	search(t, router)

	w := do(t, router, http.MethodPost, "/api/cards/RP/feedback/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "editor is not open")

	w = do(t, router, http.MethodPost, "/api/cards/RP/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sidebar.Editing, decode[sidebar.CardView](t, w).State)

	w = do(t, router, http.MethodPost, "/api/cards/RP/feedback/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, rem.reviews)

	w = do(t, router, http.MethodPut, "/api/cards/RP/feedback/rating", ratingRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPut, "/api/cards/RP/feedback/rating", ratingRequest{Rating: 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, "/api/cards/RP/feedback/text", textRequest{Text: "Great lawn"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sidebar.Draft{Rating: 5, Text: "Great lawn"}, decode[sidebar.CardView](t, w).Draft)

	w = do(t, router, http.MethodPost, "/api/cards/RP/feedback/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	card := decode[sidebar.CardView](t, w)
	assert.Equal(t, sidebar.Idle, card.State)
	assert.Equal(t, 5, card.Rating)
	assert.Equal(t, "Great lawn", card.Feedback)
	assert.True(t, card.Thanked)

	assert.Equal(t, []webhook.Review{{Serial: "RP", Review: 5, Feedback: "Great lawn"}}, rem.reviews)
}

func TestFeedbackCancel(t *testing.T) {
	router, _ := setupServerTest(t)
	search(t, router)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/cards/VP/feedback", nil).Code)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/api/cards/VP/feedback/rating", ratingRequest{Rating: 2}).Code)

	w := do(t, router, http.MethodDelete, "/api/cards/VP/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)

	card := decode[sidebar.CardView](t, w)
	assert.Equal(t, sidebar.Idle, card.State)
	assert.Zero(t, card.Draft.Rating)
}

func TestUnknownCard(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodPost, "/api/cards/nope/feedback", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisibleAndSidebar(t *testing.T) {
	router, _ := setupServerTest(t)

	w := do(t, router, http.MethodGet, "/api/visible", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	search(t, router)

	w = do(t, router, http.MethodGet, "/api/visible", nil)
	markers := decode[[]mapview.Marker](t, w)
	assert.Len(t, markers, 3, "both locations and the search point are inside the fitted viewport")

	w = do(t, router, http.MethodGet, "/api/sidebar?filter=vulcan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "Vulcan Park")
	assert.NotContains(t, w.Body.String(), "Railroad Park")
}

func TestClusters(t *testing.T) {
	router, _ := setupServerTest(t)
	search(t, router)

	w := do(t, router, http.MethodGet, "/api/clusters?distance=5000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mapview.Cluster](t, w), 1, "both parks are within 5km of each other")

	w = do(t, router, http.MethodGet, "/api/clusters?distance=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mapview.Cluster](t, w), 2)

	w = do(t, router, http.MethodGet, "/api/clusters?distance=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("radius: %w", session.ErrValidation), http.StatusBadRequest},
		{"missing rating", sidebar.ErrRatingRequired, http.StatusUnprocessableEntity},
		{"geocoder throttled", &geocode.Error{Type: geocode.ErrorTypeRateLimit}, http.StatusTooManyRequests},
		{"geocoder timeout", &geocode.Error{Type: geocode.ErrorTypeTimeout}, http.StatusGatewayTimeout},
		{"webhook unreachable", &webhook.Error{Op: "query", Err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"webhook deadline", &webhook.Error{Op: "query", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"webhook 5xx with timeout detail", &webhook.Error{Op: "data", StatusCode: 500, Detail: "upstream timeout"}, http.StatusBadGateway},
		{"webhook 4xx with 429 detail", &webhook.Error{Op: "update", StatusCode: 404, Detail: "429 Too Many Requests"}, http.StatusInternalServerError},
		{"webhook bad body", &webhook.Error{Op: "query", StatusCode: 200, Detail: "decoding response"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(fmt.Errorf("searching: %w", tt.err)))
		})
	}
}
