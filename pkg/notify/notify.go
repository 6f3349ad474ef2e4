// Package notify carries user-facing side effects of the request pipelines:
// notification messages and client-side navigation.
package notify

import (
	"sync"

	"github.com/samvad-hq/samvad-request/internal/logger"
)

const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeError   = "error"
)

// MessageOptions describes how a message is displayed.
type MessageOptions struct {
	Type     string `json:"type"`
	Closable bool   `json:"closable"`
}

// Notifier displays messages to the user. Calls are fire-and-forget.
type Notifier interface {
	Create(message string, opts MessageOptions)
	Error(message string)
}

// Navigator performs client-side navigation.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// Nop discards notifications and navigation.
type Nop struct{}

func (Nop) Create(string, MessageOptions) {}
func (Nop) Error(string)                  {}
func (Nop) Redirect(string)               {}

// Log writes notifications and navigation as structured log lines.
type Log struct {
	log logger.Logger
}

// NewLog returns a Log backed by log.
func NewLog(log logger.Logger) *Log {
	return &Log{log: logger.Ensure(log)}
}

func (l *Log) Create(message string, opts MessageOptions) {
	fields := map[string]any{"message": message, "type": opts.Type, "closable": opts.Closable}
	if opts.Type == TypeError || opts.Type == TypeWarning {
		l.log.WarnObj("user notification", "notification", fields)
		return
	}
	l.log.InfoObj("user notification", "notification", fields)
}

func (l *Log) Error(message string) {
	l.log.ErrorObj("user notification", "notification", map[string]any{
		"message": message,
		"type":    TypeError,
	})
}

func (l *Log) Redirect(path string) {
	l.log.InfoObj("navigation redirect", "navigation", map[string]any{"path": path})
}

// Multi forwards every notification to all notifiers in order.
type Multi []Notifier

func (m Multi) Create(message string, opts MessageOptions) {
	for _, n := range m {
		if n != nil {
			n.Create(message, opts)
		}
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		if n != nil {
			n.Error(message)
		}
	}
}

// Entry is a notification captured by a Recorder.
type Entry struct {
	Message string
	Options MessageOptions
}

// Recorder captures notifications and redirects in memory.
type Recorder struct {
	mu        sync.Mutex
	entries   []Entry
	redirects []string
}

func (r *Recorder) Create(message string, opts MessageOptions) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Message: message, Options: opts})
	r.mu.Unlock()
}

func (r *Recorder) Error(message string) {
	r.Create(message, MessageOptions{Type: TypeError})
}

func (r *Recorder) Redirect(path string) {
	r.mu.Lock()
	r.redirects = append(r.redirects, path)
	r.mu.Unlock()
}

// Entries returns a copy of the captured notifications.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Redirects returns a copy of the captured redirect paths.
func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}
