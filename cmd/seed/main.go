package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"tomerater/internal/book"
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
	root := logger.RootPath(cfg.LogRoot)
	l, err := logger.New(os.Stderr, lvl, cfg.LogFormat, root)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(l)

	policy, err := rating.ParsePolicy(cfg.RatingPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	format, err := catalog.ParseFormat(cfg.Output)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Per-operation confirmations are noise at this volume; keep warnings.
	events, err := logger.New(os.Stderr, max(lvl, slog.LevelWarn), cfg.LogFormat, root)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	c := catalog.New(
		catalog.WithReporter(catalog.NewSlogReporter(events.With("component", "seed"))),
		catalog.WithRatingPolicy(policy),
		catalog.WithOutputFormat(format),
	)

	rng := rand.New(rand.NewSource(rand.Int63()))
	l.Info("generating catalog", "books", cfg.SeedBooks, "users", cfg.SeedUsers)
	seed(c, rng, cfg.SeedBooks, cfg.SeedUsers)
	l.Info("catalog generated", "books_read", len(c.Books()), "users", len(c.Users()))

	if err := report(os.Stdout, c); err != nil {
		log.Fatalf("write report: %v", err)
	}
}

var (
	subjects = []string{"History", "Science", "Technology", "Philosophy", "Art", "Mathematics"}
	levels   = []string{"beginner", "intermediate", "advanced"}
	authors  = []string{"Ursula K. Le Guin", "Isaac Asimov", "Octavia Butler", "Stanislaw Lem", "Iain M. Banks"}
)

// seed creates bookCount books of mixed kinds and userCount users, then has
// every user read a random handful of books, rating most of them.
func seed(c *catalog.Catalog, rng *rand.Rand, bookCount, userCount int) {
	books := make([]*book.Book, 0, bookCount)
	for i := 0; i < bookCount; i++ {
		title := fmt.Sprintf("Book Title %d - %s", i+1, randomWord(rng))
		isbn := fmt.Sprintf("978-%08d", i+1)
		switch rng.Intn(3) {
		case 0:
			books = append(books, c.CreateBook(title, isbn))
		case 1:
			books = append(books, c.CreateNovel(title, authors[rng.Intn(len(authors))], isbn))
		default:
			books = append(books, c.CreateNonFiction(title,
				subjects[rng.Intn(len(subjects))], levels[rng.Intn(len(levels))], isbn))
		}
	}

	if len(books) == 0 {
		return
	}

	for i := 0; i < userCount; i++ {
		email := fmt.Sprintf("reader%d@example.com", i+1)
		name := fmt.Sprintf("%s Reader %d", randomWord(rng), i+1)
		if err := c.AddUser(name, email); err != nil {
			continue
		}

		reads := 1 + rng.Intn(min(10, len(books)))
		for _, idx := range rng.Perm(len(books))[:reads] {
			var star *int
			if rng.Intn(4) > 0 {
				star = rating.Ptr(rng.Intn(rating.Max + 1))
			}
			_ = c.AddBookToUser(books[idx], email, star)
		}
	}
}

func report(w io.Writer, c *catalog.Catalog) error {
	if b, ok := c.MostReadBook(); ok {
		if _, err := fmt.Fprintf(w, "Most read book: %s (%d readers)\n", b, c.ReadCount(b)); err != nil {
			return err
		}
	}
	if b, ok := c.HighestRatedBook(); ok {
		summary := b.RatingSummary()
		if _, err := fmt.Fprintf(w, "Highest rated book: %s (%.2f over %d ratings)\n", b, summary.Average, summary.Count); err != nil {
			return err
		}
	}
	if name, ok := c.MostPositiveUser(); ok {
		if _, err := fmt.Fprintf(w, "Most positive user: %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}
