package testutil

import (
	"io"
	"log/slog"

	"tomerater/internal/book"
	"tomerater/internal/catalog"
)

// TestNovel returns a fresh fiction book for testing
func TestNovel() *book.Book {
	return book.NewFiction("Dune", "Frank Herbert", "001")
}

// TestManual returns a fresh non-fiction book for testing
func TestManual() *book.Book {
	return book.NewNonFiction("Automate the Boring Stuff", "python", "beginner", "1929452")
}

// Recorder collects every catalog event it receives.
type Recorder struct {
	Events []catalog.Event
}

func (r *Recorder) Report(e catalog.Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the kinds of the recorded events, oldest first.
func (r *Recorder) Kinds() []catalog.EventKind {
	out := make([]catalog.EventKind, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Kind)
	}
	return out
}

// LastKind returns the kind of the most recent event, or "" if none.
func (r *Recorder) LastKind() catalog.EventKind {
	if len(r.Events) == 0 {
		return ""
	}
	return r.Events[len(r.Events)-1].Kind
}

// NewCatalog creates a catalog that reports into a fresh Recorder.
func NewCatalog(opts ...catalog.Option) (*catalog.Catalog, *Recorder) {
	rec := &Recorder{}
	return catalog.New(append([]catalog.Option{catalog.WithReporter(rec)}, opts...)...), rec
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
