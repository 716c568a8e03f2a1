package book

import (
	"fmt"

	"github.com/google/uuid"

	"tomerater/internal/rating"
)

// Kind names the variant a book carries.
type Kind string

const (
	KindPlain      Kind = "book"
	KindFiction    Kind = "fiction"
	KindNonFiction Kind = "non_fiction"
)

// Variant holds the fields specific to one kind of book. The set of variants
// is closed: Plain, Fiction and NonFiction.
type Variant interface {
	kind() Kind
}

type Plain struct{}

type Fiction struct {
	Author string
}

type NonFiction struct {
	Subject string
	Level   string
}

func (Plain) kind() Kind      { return KindPlain }
func (Fiction) kind() Kind    { return KindFiction }
func (NonFiction) kind() Kind { return KindNonFiction }

// Key identifies a book. Two books with the same title and ISBN are the same book.
type Key struct {
	Title string
	ISBN  string
}

func (k Key) String() string {
	return k.Title + " (" + k.ISBN + ")"
}

// Book represents a catalog item and the ratings it has received.
type Book struct {
	ID      uuid.UUID
	title   string
	isbn    string
	variant Variant
	ratings []int
}

// New creates a plain book.
func New(title, isbn string) *Book {
	return newBook(title, isbn, Plain{})
}

// NewFiction creates a novel written by author.
func NewFiction(title, author, isbn string) *Book {
	return newBook(title, isbn, Fiction{Author: author})
}

// NewNonFiction creates a non-fiction book on subject at the given level.
func NewNonFiction(title, subject, level, isbn string) *Book {
	return newBook(title, isbn, NonFiction{Subject: subject, Level: level})
}

func newBook(title, isbn string, v Variant) *Book {
	return &Book{
		ID:      uuid.New(),
		title:   title,
		isbn:    isbn,
		variant: v,
	}
}

func (b *Book) Title() string { return b.title }

func (b *Book) ISBN() string { return b.isbn }

// SetISBN changes the book's ISBN in place. Registries keyed by the book must
// be re-keyed by the caller.
func (b *Book) SetISBN(isbn string) {
	b.isbn = isbn
}

func (b *Book) Variant() Variant { return b.variant }

func (b *Book) Kind() Kind {
	if b.variant == nil {
		return KindPlain
	}
	return b.variant.kind()
}

// Author returns the author of a fiction book.
func (b *Book) Author() (string, bool) {
	if f, ok := b.variant.(Fiction); ok {
		return f.Author, true
	}
	return "", false
}

// Subject returns the subject of a non-fiction book.
func (b *Book) Subject() (string, bool) {
	if nf, ok := b.variant.(NonFiction); ok {
		return nf.Subject, true
	}
	return "", false
}

// Level returns the level of a non-fiction book.
func (b *Book) Level() (string, bool) {
	if nf, ok := b.variant.(NonFiction); ok {
		return nf.Level, true
	}
	return "", false
}

// AddRating appends star to the rating history. An out-of-range star is
// rejected and the history is left untouched.
func (b *Book) AddRating(star int) error {
	if err := rating.Validate(star); err != nil {
		return err
	}
	b.ratings = append(b.ratings, star)
	return nil
}

// ReplaceRating discards the rating history and keeps only star.
func (b *Book) ReplaceRating(star int) error {
	if err := rating.Validate(star); err != nil {
		return err
	}
	b.ratings = []int{star}
	return nil
}

// Rate records star following policy.
func (b *Book) Rate(star int, policy rating.Policy) error {
	if policy == rating.Latest {
		return b.ReplaceRating(star)
	}
	return b.AddRating(star)
}

// Absorb adds other's rating history to b following policy. Under Latest only
// other's most recent rating is kept, if it has any.
func (b *Book) Absorb(other *Book, policy rating.Policy) {
	if len(other.ratings) == 0 {
		return
	}
	if policy == rating.Latest {
		b.ratings = []int{other.ratings[len(other.ratings)-1]}
		return
	}
	b.ratings = append(b.ratings, other.ratings...)
}

// Ratings returns a copy of the rating history, oldest first.
func (b *Book) Ratings() []int {
	out := make([]int, len(b.ratings))
	copy(out, b.ratings)
	return out
}

// AverageRating returns the mean rating. The second result is false when the
// book has not been rated.
func (b *Book) AverageRating() (float64, bool) {
	return rating.Average(b.ratings)
}

func (b *Book) RatingSummary() rating.Aggregate {
	return rating.Summarize(b.ratings)
}

func (b *Book) Key() Key {
	return Key{Title: b.title, ISBN: b.isbn}
}

// Equal reports whether b and other have the same title and ISBN.
func (b *Book) Equal(other *Book) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Key() == other.Key()
}

func (b *Book) String() string {
	switch v := b.variant.(type) {
	case Fiction:
		return fmt.Sprintf("%s by %s", b.title, v.Author)
	case NonFiction:
		return fmt.Sprintf("%s, a %s manual on %s", b.title, v.Level, v.Subject)
	default:
		return b.title
	}
}
