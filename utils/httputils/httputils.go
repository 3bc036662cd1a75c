// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils builds the HTTP clients used for the geocoder and the
// location webhooks.
package httputils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxTracedBody bounds how much of a body is written to the trace.
const maxTracedBody = 2048

// TraceTransport writes one line per exchange to Out and, with Bodies, the
// request and response payloads.
type TraceTransport struct {
	Base   http.RoundTripper
	Out    io.Writer
	Bodies bool
}

// RoundTrip implements http.RoundTripper.
func (t *TraceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Bodies && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			t.writeBody("→", body)
			_ = body.Close()
		}
	}

	start := time.Now()

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		_, _ = fmt.Fprintf(t.Out, "%s %s failed after %v: %v\n", req.Method, req.URL.Redacted(), time.Since(start).Round(time.Millisecond), err)

		return nil, err
	}

	_, _ = fmt.Fprintf(t.Out, "%s %s %d (%v)\n", req.Method, req.URL.Redacted(), resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if t.Bodies && resp.Body != nil {
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			return nil, fmt.Errorf("reading %s response: %w", req.URL.Redacted(), err)
		}

		t.writeBody("←", bytes.NewReader(payload))
		resp.Body = io.NopCloser(bytes.NewReader(payload))
	}

	return resp, nil
}

func (t *TraceTransport) writeBody(arrow string, body io.Reader) {
	payload, _ := io.ReadAll(io.LimitReader(body, maxTracedBody+1))
	if len(payload) == 0 {
		return
	}

	suffix := ""
	if len(payload) > maxTracedBody {
		payload, suffix = payload[:maxTracedBody], "…"
	}

	_, _ = fmt.Fprintf(t.Out, "  %s %s%s\n", arrow, payload, suffix)
}

// headerTransport sets fixed headers on a copy of every request.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.header {
		req.Header[k] = v
	}

	return t.base.RoundTrip(req)
}

// ClientOptions configures the HTTP clients used to talk to remote services.
type ClientOptions struct {
	UserAgent string
	// Timeout bounds every request; zero means no timeout.
	Timeout time.Duration

	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
	// TraceOutput receives the trace. Defaults to stderr.
	TraceOutput io.Writer

	// Transport replaces the pooled default transport.
	Transport http.RoundTripper
}

// NewClient builds an http.Client that sends JSON requests with the given
// user agent and traces them when asked to.
func NewClient(options ClientOptions) *http.Client {
	transport := options.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}
	}

	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		out := options.TraceOutput
		if out == nil {
			out = os.Stderr
		}

		transport = &TraceTransport{Base: transport, Out: out, Bodies: options.EnableHTTPBodyTrace}
	}

	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = "locamap"
	}

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Accept", "application/json")

	return &http.Client{
		Timeout:   options.Timeout,
		Transport: &headerTransport{base: transport, header: header},
	}
}
