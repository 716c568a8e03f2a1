package user

import (
	"fmt"

	"github.com/google/uuid"

	"tomerater/internal/book"
)

// Reading is one book a user has read, with the rating they gave, if any.
type Reading struct {
	Book   *book.Book
	Rating *int
}

// User represents a reader.
type User struct {
	ID    uuid.UUID
	name  string
	email string

	readings map[book.Key]*Reading
	order    []book.Key
}

func New(name, email string) *User {
	return &User{
		ID:       uuid.New(),
		name:     name,
		email:    email,
		readings: make(map[book.Key]*Reading),
	}
}

func (u *User) Name() string { return u.name }

func (u *User) Email() string { return u.email }

// ChangeEmail updates the user's email. A catalog holding the user must be
// re-keyed by the caller.
func (u *User) ChangeEmail(email string) {
	u.email = email
}

// ReadBook records b with the given rating, overwriting any earlier rating for
// the same book. It reports whether b is new to this user.
func (u *User) ReadBook(b *book.Book, star *int) bool {
	key := b.Key()
	if r, ok := u.readings[key]; ok {
		r.Book = b
		r.Rating = copyRating(star)
		return false
	}
	u.readings[key] = &Reading{Book: b, Rating: copyRating(star)}
	u.order = append(u.order, key)
	return true
}

func (u *User) HasRead(b *book.Book) bool {
	_, ok := u.readings[b.Key()]
	return ok
}

// Rating returns the rating the user gave b. The second result is false when
// the user has not read b; a read but unrated book yields (nil, true).
func (u *User) Rating(b *book.Book) (*int, bool) {
	r, ok := u.readings[b.Key()]
	if !ok {
		return nil, false
	}
	return copyRating(r.Rating), true
}

// Books returns the user's readings in the order they were first recorded.
func (u *User) Books() []Reading {
	out := make([]Reading, 0, len(u.order))
	for _, key := range u.order {
		r := u.readings[key]
		out = append(out, Reading{Book: r.Book, Rating: copyRating(r.Rating)})
	}
	return out
}

func (u *User) BookCount() int { return len(u.order) }

// AverageRating sums the ratings the user gave and divides by the number of
// books read, rated or not. The second result is false when the user has read
// nothing.
func (u *User) AverageRating() (float64, bool) {
	if len(u.order) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range u.readings {
		if r.Rating != nil {
			sum += *r.Rating
		}
	}
	return float64(sum) / float64(len(u.order)), true
}

// Rekey moves the reading stored under old to b's current key. It is a no-op
// when the user has no reading under old. If the user already has a reading
// under the new key the two collapse into one: the moved reading's rating
// wins when it has one, otherwise the existing rating is kept.
func (u *User) Rekey(old book.Key, b *book.Book) {
	next := b.Key()
	if old == next {
		return
	}
	r, ok := u.readings[old]
	if !ok {
		return
	}
	delete(u.readings, old)
	r.Book = b
	if existing, ok := u.readings[next]; ok {
		// Both keys now name the same book; keep the position of the first.
		existing.Book = b
		if r.Rating != nil {
			existing.Rating = r.Rating
		}
		u.order = removeKey(u.order, old)
		return
	}
	u.readings[next] = r
	for i, key := range u.order {
		if key == old {
			u.order[i] = next
			break
		}
	}
}

// Equal reports whether u and other share name and email.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.name == other.name && u.email == other.email
}

func (u *User) String() string {
	return fmt.Sprintf("User: %s, Email: %s, Books Read: %d", u.name, u.email, len(u.order))
}

func copyRating(star *int) *int {
	if star == nil {
		return nil
	}
	v := *star
	return &v
}

func removeKey(keys []book.Key, k book.Key) []book.Key {
	out := keys[:0]
	for _, key := range keys {
		if key != k {
			out = append(out, key)
		}
	}
	return out
}
