// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// spinner shows an indeterminate progress bar on stderr while the session
// controls are disabled. It does nothing when stderr is not a terminal.
type spinner struct {
	description string
	writer      io.Writer
	enabled     bool

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func newSpinner(description string) *spinner {
	return &spinner{
		description: description,
		writer:      os.Stderr,
		enabled:     isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// SetEnabled implements session.Controls.
func (s *spinner) SetEnabled(enabled bool) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !enabled {
		s.start()

		return
	}

	s.finish()
}

func (s *spinner) start() {
	if s.bar != nil {
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(s.description),
		progressbar.OptionSetWriter(s.writer),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(bar *progressbar.ProgressBar, stop, done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.stop, s.done)
}

func (s *spinner) finish() {
	if s.bar == nil {
		return
	}

	close(s.stop)
	<-s.done

	_ = s.bar.Finish()
	s.bar = nil
}
