package rating

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	Min = 0
	Max = 4
)

// ErrInvalid is returned when a rating falls outside [Min, Max].
var ErrInvalid = errors.New("rating must be between 0 and 4")

var validate = validator.New()

// Validate checks that star is within the accepted range.
func Validate(star int) error {
	if err := validate.Var(star, fmt.Sprintf("gte=%d,lte=%d", Min, Max)); err != nil {
		return fmt.Errorf("%w: got %d", ErrInvalid, star)
	}
	return nil
}

// Ptr returns a pointer to star, for call sites that take an optional rating.
func Ptr(star int) *int {
	return &star
}

// Average returns the arithmetic mean of stars. The second result is false
// when there is nothing to average.
func Average(stars []int) (float64, bool) {
	if len(stars) == 0 {
		return 0, false
	}
	sum := 0
	for _, s := range stars {
		sum += s
	}
	return float64(sum) / float64(len(stars)), true
}

// Aggregate provides average and count for a set of ratings.
type Aggregate struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Summarize returns the average and count of stars.
func Summarize(stars []int) Aggregate {
	avg, _ := Average(stars)
	return Aggregate{Average: avg, Count: len(stars)}
}

// Policy decides what a new rating does to a book's rating history.
type Policy int

const (
	// Accumulate appends every valid rating.
	Accumulate Policy = iota
	// Latest keeps only the most recent valid rating.
	Latest
)

func (p Policy) String() string {
	switch p {
	case Accumulate:
		return "accumulate"
	case Latest:
		return "latest"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accumulate":
		return Accumulate, nil
	case "latest":
		return Latest, nil
	default:
		return Accumulate, fmt.Errorf("unknown rating policy %q", s)
	}
}
