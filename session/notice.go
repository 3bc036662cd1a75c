// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// NoticeKind is the severity of a user-visible notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown to the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Notifier receives the notices of a session.
type Notifier interface {
	Notify(n Notice)
}

// Controls are the UI inputs that trigger searches and loads.
type Controls interface {
	SetEnabled(enabled bool)
}

// NoticeLog keeps the most recent notices.
type NoticeLog struct {
	mu      sync.Mutex
	size    int
	notices []Notice
}

// NewNoticeLog creates a log keeping at most size notices.
func NewNoticeLog(size int) *NoticeLog {
	return &NoticeLog{size: max(size, 1)}
}

// Notify implements Notifier.
func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notices = append(l.notices, n)
	if len(l.notices) > l.size {
		l.notices = l.notices[len(l.notices)-l.size:]
	}
}

// Recent returns the kept notices, oldest first.
func (l *NoticeLog) Recent() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Notice(nil), l.notices...)
}

// Last returns the most recent notice.
func (l *NoticeLog) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.notices) == 0 {
		return Notice{}, false
	}

	return l.notices[len(l.notices)-1], true
}

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(n Notice) {
	prefix := "ℹ️ "

	switch n.Kind {
	case NoticeError:
		prefix = "❌"
	case NoticeSuccess:
		prefix = "✅"
	}

	log.Printf("%s %s", prefix, n.Message)
}

// MultiNotifier fans a notice out to several notifiers.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(n Notice) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

// ControlState tracks whether the search controls are enabled.
type ControlState struct {
	disabled atomic.Bool
}

// SetEnabled implements Controls.
func (c *ControlState) SetEnabled(enabled bool) {
	c.disabled.Store(!enabled)
}

// Enabled reports whether the controls accept input.
func (c *ControlState) Enabled() bool {
	return !c.disabled.Load()
}
