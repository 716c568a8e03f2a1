package catalog

import (
	"context"
	"log/slog"
)

// EventKind classifies what a catalog operation reports.
type EventKind string

const (
	EventBookCreated   EventKind = "book_created"
	EventUserAdded     EventKind = "user_added"
	EventUserExists    EventKind = "user_exists"
	EventUserNotFound  EventKind = "user_not_found"
	EventBookAdded     EventKind = "book_added"
	EventInvalidRating EventKind = "invalid_rating"
	EventISBNChanged   EventKind = "isbn_changed"
	EventEmailChanged  EventKind = "email_changed"
)

// Rejected reports whether the event describes an operation that was skipped.
func (k EventKind) Rejected() bool {
	switch k {
	case EventUserExists, EventUserNotFound, EventInvalidRating:
		return true
	default:
		return false
	}
}

// Event is an advisory message emitted by a catalog operation.
type Event struct {
	Kind    EventKind
	Message string
	Attrs   []slog.Attr
}

// Reporter receives catalog events.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	Report(e Event)
}

// SlogReporter writes events to a structured logger.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter reports to logger, or to slog.Default when logger is nil.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Report(e Event) {
	level := slog.LevelInfo
	if e.Kind.Rejected() {
		level = slog.LevelWarn
	}
	attrs := append([]slog.Attr{slog.String("event", string(e.Kind))}, e.Attrs...)
	r.logger.LogAttrs(context.Background(), level, e.Message, attrs...)
}
