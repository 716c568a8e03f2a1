package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"tomerater/internal/book"
	"tomerater/internal/rating"
	"tomerater/internal/user"
)

var (
	// ErrUserExists is returned when an email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user is registered under an email.
	ErrUserNotFound = errors.New("user not found")
)

type entry struct {
	book    *book.Book
	readers int
}

// Catalog owns every registered user and the read count of every book a
// user has read. It is not safe for concurrent use.
type Catalog struct {
	reporter Reporter
	policy   rating.Policy
	format   Format

	users     map[string]*user.User
	userOrder []string

	books     map[book.Key]*entry
	bookOrder []*entry
}

type Option func(*Catalog)

func WithReporter(r Reporter) Option {
	return func(c *Catalog) { c.reporter = r }
}

func WithRatingPolicy(p rating.Policy) Option {
	return func(c *Catalog) { c.policy = p }
}

func WithOutputFormat(f Format) Option {
	return func(c *Catalog) { c.format = f }
}

// New creates an empty catalog. Events go to slog.Default unless a reporter
// is supplied.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		policy: rating.Accumulate,
		format: FormatText,
		users:  make(map[string]*user.User),
		books:  make(map[book.Key]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = NewSlogReporter(nil)
	}
	return c
}

func (c *Catalog) report(kind EventKind, msg string, attrs ...slog.Attr) {
	c.reporter.Report(Event{Kind: kind, Message: msg, Attrs: attrs})
}

// CreateBook returns a new plain book. The book is registered only once a
// user reads it.
func (c *Catalog) CreateBook(title, isbn string) *book.Book {
	b := book.New(title, isbn)
	c.report(EventBookCreated, "book created",
		slog.String("title", title), slog.String("isbn", isbn))
	return b
}

func (c *Catalog) CreateNovel(title, author, isbn string) *book.Book {
	b := book.NewFiction(title, author, isbn)
	c.report(EventBookCreated, "novel created",
		slog.String("title", title), slog.String("author", author), slog.String("isbn", isbn))
	return b
}

func (c *Catalog) CreateNonFiction(title, subject, level, isbn string) *book.Book {
	b := book.NewNonFiction(title, subject, level, isbn)
	c.report(EventBookCreated, "non-fiction created",
		slog.String("title", title), slog.String("subject", subject), slog.String("level", level), slog.String("isbn", isbn))
	return b
}

// AddUser registers a new user and records every book in books as read
// without a rating. Registering an email twice fails with ErrUserExists and
// leaves the existing user untouched.
func (c *Catalog) AddUser(name, email string, books ...*book.Book) error {
	if _, ok := c.users[email]; ok {
		c.report(EventUserExists, "user already exists", slog.String("email", email))
		return fmt.Errorf("add user %s: %w", email, ErrUserExists)
	}

	u := user.New(name, email)
	c.users[email] = u
	c.userOrder = append(c.userOrder, email)

	for _, b := range books {
		if err := c.AddBookToUser(b, email, nil); err != nil {
			return err
		}
	}

	c.report(EventUserAdded, "user added",
		slog.String("name", name), slog.String("email", email), slog.String("user_id", u.ID.String()))
	return nil
}

// AddBookToUser records that the user registered under email read b, with an
// optional rating. The rating is also added to the book. Nothing changes when
// the email is unknown or the rating is out of range.
func (c *Catalog) AddBookToUser(b *book.Book, email string, star *int) error {
	u, ok := c.users[email]
	if !ok {
		c.report(EventUserNotFound, "no user with this email", slog.String("email", email))
		return fmt.Errorf("add book to user %s: %w", email, ErrUserNotFound)
	}

	if star != nil {
		if err := rating.Validate(*star); err != nil {
			c.report(EventInvalidRating, "invalid rating",
				slog.String("email", email), slog.String("title", b.Title()), slog.Int("rating", *star))
			return fmt.Errorf("add book to user %s: %w", email, err)
		}
	}

	// Ratings go to the registered book so equal books share one history.
	e := c.lookup(b)
	rated := b
	if e != nil {
		rated = e.book
	}
	firstRead := u.ReadBook(b, star)
	if star != nil {
		if err := rated.Rate(*star, c.policy); err != nil {
			return fmt.Errorf("rate %s: %w", b.Key(), err)
		}
	}

	if e == nil {
		e = &entry{book: b}
		c.books[b.Key()] = e
		c.bookOrder = append(c.bookOrder, e)
	}
	if firstRead {
		e.readers++
	}

	attrs := []slog.Attr{
		slog.String("title", b.Title()),
		slog.String("isbn", b.ISBN()),
		slog.String("email", email),
		slog.Int("read_count", e.readers),
	}
	if star != nil {
		attrs = append(attrs, slog.Int("rating", *star))
	}
	c.report(EventBookAdded, "book added to user", attrs...)
	return nil
}

// lookup finds the entry for b, re-keying it if b's ISBN was changed
// without going through SetISBN.
func (c *Catalog) lookup(b *book.Book) *entry {
	if e, ok := c.books[b.Key()]; ok {
		return e
	}
	for key, e := range c.books {
		if e.book == b {
			c.rekey(key, b)
			return c.books[b.Key()]
		}
	}
	return nil
}

// SetISBN changes the ISBN of b and re-keys the catalog and every user that
// has read it.
func (c *Catalog) SetISBN(b *book.Book, isbn string) {
	old := b.Key()
	b.SetISBN(isbn)
	c.rekey(old, b)

	c.report(EventISBNChanged, "isbn updated",
		slog.String("title", b.Title()), slog.String("old_isbn", old.ISBN), slog.String("isbn", isbn))
}

// rekey moves everything stored under old to b's current key. When another
// book already holds that key the two entries are merged and the moved
// book's ratings are added to the surviving one.
func (c *Catalog) rekey(old book.Key, b *book.Book) {
	next := b.Key()
	if old == next {
		return
	}
	for _, email := range c.userOrder {
		c.users[email].Rekey(old, b)
	}

	e, ok := c.books[old]
	if !ok {
		return
	}
	delete(c.books, old)
	if existing, ok := c.books[next]; ok && existing != e {
		if existing.book != e.book {
			existing.book.Absorb(e.book, c.policy)
		}
		existing.readers = c.readersOf(b)
		c.bookOrder = removeEntry(c.bookOrder, e)
		return
	}
	c.books[next] = e
}

func (c *Catalog) readersOf(b *book.Book) int {
	n := 0
	for _, email := range c.userOrder {
		if c.users[email].HasRead(b) {
			n++
		}
	}
	return n
}

// ChangeEmail moves the user registered under old to next.
func (c *Catalog) ChangeEmail(old, next string) error {
	u, ok := c.users[old]
	if !ok {
		c.report(EventUserNotFound, "no user with this email", slog.String("email", old))
		return fmt.Errorf("change email %s: %w", old, ErrUserNotFound)
	}
	if old == next {
		return nil
	}
	if _, taken := c.users[next]; taken {
		c.report(EventUserExists, "user already exists", slog.String("email", next))
		return fmt.Errorf("change email %s: %w", old, ErrUserExists)
	}

	u.ChangeEmail(next)
	delete(c.users, old)
	c.users[next] = u
	for i, email := range c.userOrder {
		if email == old {
			c.userOrder[i] = next
			break
		}
	}

	c.report(EventEmailChanged, "email updated",
		slog.String("name", u.Name()), slog.String("old_email", old), slog.String("email", next))
	return nil
}

// User returns the user registered under email.
func (c *Catalog) User(email string) (*user.User, bool) {
	u, ok := c.users[email]
	return u, ok
}

// Users returns registered users in registration order.
func (c *Catalog) Users() []*user.User {
	out := make([]*user.User, 0, len(c.userOrder))
	for _, email := range c.userOrder {
		out = append(out, c.users[email])
	}
	return out
}

// Books returns every book a user has read, in the order each was first read.
func (c *Catalog) Books() []*book.Book {
	out := make([]*book.Book, 0, len(c.bookOrder))
	for _, e := range c.bookOrder {
		out = append(out, e.book)
	}
	return out
}

// ReadCount returns how many users have read b.
func (c *Catalog) ReadCount(b *book.Book) int {
	if e, ok := c.books[b.Key()]; ok {
		return e.readers
	}
	return 0
}

// MostReadBook returns the book with the highest read count. Ties go to the
// book that was read first.
func (c *Catalog) MostReadBook() (*book.Book, bool) {
	var best *entry
	for _, e := range c.bookOrder {
		if best == nil || e.readers > best.readers {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best.book, true
}

// HighestRatedBook returns the book with the highest average rating. Books
// without ratings are not candidates.
func (c *Catalog) HighestRatedBook() (*book.Book, bool) {
	var (
		best    *book.Book
		bestAvg float64
	)
	for _, e := range c.bookOrder {
		avg, ok := e.book.AverageRating()
		if !ok {
			continue
		}
		if best == nil || avg > bestAvg {
			best, bestAvg = e.book, avg
		}
	}
	return best, best != nil
}

// MostPositiveUser returns the name of the user with the highest average
// rating. Users who have read nothing are not candidates.
func (c *Catalog) MostPositiveUser() (string, bool) {
	var (
		best    *user.User
		bestAvg float64
	)
	for _, email := range c.userOrder {
		u := c.users[email]
		avg, ok := u.AverageRating()
		if !ok {
			continue
		}
		if best == nil || avg > bestAvg {
			best, bestAvg = u, avg
		}
	}
	if best == nil {
		return "", false
	}
	return best.Name(), true
}

func removeEntry(entries []*entry, target *entry) []*entry {
	out := entries[:0]
	for _, e := range entries {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}
