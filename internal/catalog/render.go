package catalog

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"tomerater/internal/book"
	"tomerater/internal/rating"
)

// Format selects how PrintCatalog and PrintUsers render.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a configuration value onto a Format; empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type bookView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ISBN      string            `json:"isbn"`
	Kind      book.Kind         `json:"kind"`
	Author    string            `json:"author,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Level     string            `json:"level,omitempty"`
	ReadCount int               `json:"read_count"`
	Ratings   *rating.Aggregate `json:"ratings,omitempty"`
}

type userView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	BooksRead int      `json:"books_read"`
	Average   *float64 `json:"average_rating,omitempty"`
}

func (c *Catalog) bookView(e *entry) bookView {
	b := e.book
	v := bookView{
		ID:        b.ID.String(),
		Title:     b.Title(),
		ISBN:      b.ISBN(),
		Kind:      b.Kind(),
		ReadCount: e.readers,
	}
	switch variant := b.Variant().(type) {
	case book.Fiction:
		v.Author = variant.Author
	case book.NonFiction:
		v.Subject = variant.Subject
		v.Level = variant.Level
	}
	if _, ok := b.AverageRating(); ok {
		agg := b.RatingSummary()
		v.Ratings = &agg
	}
	return v
}

// PrintCatalog writes every registered book to w, one per line in text
// format or as a JSON array.
func (c *Catalog) PrintCatalog(w io.Writer) error {
	if c.format == FormatJSON {
		views := make([]bookView, 0, len(c.bookOrder))
		for _, e := range c.bookOrder {
			views = append(views, c.bookView(e))
		}
		return json.NewEncoder(w).Encode(views)
	}
	for _, e := range c.bookOrder {
		if _, err := fmt.Fprintln(w, e.book.String()); err != nil {
			return err
		}
	}
	return nil
}

// PrintUsers writes the email of every registered user to w.
func (c *Catalog) PrintUsers(w io.Writer) error {
	if c.format == FormatJSON {
		views := make([]userView, 0, len(c.userOrder))
		for _, email := range c.userOrder {
			u := c.users[email]
			v := userView{
				ID:        u.ID.String(),
				Name:      u.Name(),
				Email:     u.Email(),
				BooksRead: u.BookCount(),
			}
			if avg, ok := u.AverageRating(); ok {
				v.Average = &avg
			}
			views = append(views, v)
		}
		return json.NewEncoder(w).Encode(views)
	}
	for _, email := range c.userOrder {
		if _, err := fmt.Fprintln(w, email); err != nil {
			return err
		}
	}
	return nil
}
