package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"tomerater/internal/catalog"
	"tomerater/internal/config"
	"tomerater/internal/logger"
	"tomerater/internal/rating"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, err := logger.New(os.Stderr, lvl, cfg.LogFormat, logger.RootPath(cfg.LogRoot))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(l)

	c, err := newCatalog(cfg, l)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	populate(c)

	if err := summarize(os.Stdout, c); err != nil {
		log.Fatalf("write summary: %v", err)
	}
}

func newCatalog(cfg config.Config, l *slog.Logger) (*catalog.Catalog, error) {
	policy, err := rating.ParsePolicy(cfg.RatingPolicy)
	if err != nil {
		return nil, err
	}
	format, err := catalog.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return catalog.New(
		catalog.WithReporter(catalog.NewSlogReporter(l)),
		catalog.WithRatingPolicy(policy),
		catalog.WithOutputFormat(format),
	), nil
}

// populate fills c with a small fixed library. Rejected operations are left
// in on purpose; they show up as warnings in the log.
func populate(c *catalog.Catalog) {
	book1 := c.CreateBook("Society of Mind", "12345678")
	novel1 := c.CreateNovel("Alice In Wonderland", "Lewis Carroll", "12345")
	c.SetISBN(novel1, "9781536831139")
	nonfiction1 := c.CreateNonFiction("Automate the Boring Stuff", "Python", "beginner", "1929452")
	nonfiction2 := c.CreateNonFiction("Computing Machinery and Intelligence", "AI", "advanced", "11111938")
	novel2 := c.CreateNovel("The Diamond Age", "Neal Stephenson", "10101010")
	novel3 := c.CreateNovel("There Will Come Soft Rains", "Ray Bradbury", "10001000")

	_ = c.AddUser("Alan Turing", "alan@turing.com")
	_ = c.AddUser("David Marr", "david@computation.org")
	_ = c.AddUser("Marvin Minsky", "marvin@mit.edu", book1, novel1, nonfiction1)

	_ = c.AddBookToUser(book1, "alan@turing.com", rating.Ptr(1))
	_ = c.AddBookToUser(novel1, "alan@turing.com", rating.Ptr(3))
	_ = c.AddBookToUser(nonfiction1, "alan@turing.com", rating.Ptr(3))
	_ = c.AddBookToUser(nonfiction2, "alan@turing.com", rating.Ptr(4))
	_ = c.AddBookToUser(novel3, "alan@turing.com", rating.Ptr(1))

	_ = c.AddBookToUser(novel2, "marvin@mit.edu", rating.Ptr(2))
	_ = c.AddBookToUser(novel3, "marvin@mit.edu", rating.Ptr(2))
	_ = c.AddBookToUser(novel3, "david@computation.org", rating.Ptr(4))

	_ = c.AddUser("Alan Turing", "alan@turing.com")
	_ = c.AddBookToUser(novel2, "nobody@nowhere.com", nil)
	_ = c.AddBookToUser(novel2, "david@computation.org", rating.Ptr(7))

	_ = c.ChangeEmail("david@computation.org", "david@marr.org")
}

func summarize(w io.Writer, c *catalog.Catalog) error {
	fmt.Fprintln(w, "Catalog:")
	if err := c.PrintCatalog(w); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nUsers:")
	if err := c.PrintUsers(w); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if b, ok := c.MostReadBook(); ok {
		fmt.Fprintf(w, "Most read book: %s (%d readers)\n", b, c.ReadCount(b))
	} else {
		fmt.Fprintln(w, "Most read book: none")
	}
	if b, ok := c.HighestRatedBook(); ok {
		avg, _ := b.AverageRating()
		fmt.Fprintf(w, "Highest rated book: %s (%.2f)\n", b, avg)
	} else {
		fmt.Fprintln(w, "Highest rated book: none")
	}
	if name, ok := c.MostPositiveUser(); ok {
		fmt.Fprintf(w, "Most positive user: %s\n", name)
	} else {
		fmt.Fprintln(w, "Most positive user: none")
	}
	return nil
}
