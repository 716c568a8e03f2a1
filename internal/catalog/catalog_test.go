package catalog_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomerater/internal/book"
	"tomerater/internal/catalog"
	"tomerater/internal/catalog/mocks"
	"tomerater/internal/rating"
	"tomerater/internal/testutil"
)

type eventKind catalog.EventKind

func (k eventKind) Matches(x interface{}) bool {
	e, ok := x.(catalog.Event)
	return ok && e.Kind == catalog.EventKind(k)
}

func (k eventKind) String() string {
	return "event of kind " + string(k)
}

func TestCatalog_CreateBooks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockReporter := mocks.NewMockReporter(ctrl)
	c := catalog.New(catalog.WithReporter(mockReporter))

	mockReporter.EXPECT().Report(eventKind(catalog.EventBookCreated)).Times(3)

	plain := c.CreateBook("Society of Mind", "12345678")
	novel := c.CreateNovel("Alice In Wonderland", "Lewis Carroll", "12345")
	nonFiction := c.CreateNonFiction("Automate the Boring Stuff", "python", "beginner", "1929452")

	assert.Equal(t, book.KindPlain, plain.Kind())
	assert.Equal(t, book.KindFiction, novel.Kind())
	assert.Equal(t, book.KindNonFiction, nonFiction.Kind())

	t.Run("factories do not register books", func(t *testing.T) {
		assert.Empty(t, c.Books())
		_, ok := c.MostReadBook()
		assert.False(t, ok)
	})
}

func TestCatalog_AddUser(t *testing.T) {
	t.Run("success - with books", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockReporter := mocks.NewMockReporter(ctrl)
		c := catalog.New(catalog.WithReporter(mockReporter))

		a := book.New("A", "1")
		b := book.New("B", "2")

		gomock.InOrder(
			mockReporter.EXPECT().Report(eventKind(catalog.EventBookAdded)),
			mockReporter.EXPECT().Report(eventKind(catalog.EventBookAdded)),
			mockReporter.EXPECT().Report(eventKind(catalog.EventUserAdded)),
		)

		require.NoError(t, c.AddUser("Alice", "a@x.com", a, b))

		u, ok := c.User("a@x.com")
		require.True(t, ok)
		assert.Equal(t, "Alice", u.Name())
		assert.Equal(t, 2, u.BookCount())
		for _, r := range u.Books() {
			assert.Nil(t, r.Rating)
		}
		assert.Equal(t, 1, c.ReadCount(a))
		assert.Equal(t, 1, c.ReadCount(b))
		assert.Empty(t, a.Ratings())
	})

	t.Run("error - duplicate email keeps first user", func(t *testing.T) {
		c, rec := testutil.NewCatalog()
		dune := book.New("Dune", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com", dune))

		err := c.AddUser("Mallory", "a@x.com", book.New("Other", "999"))

		assert.True(t, errors.Is(err, catalog.ErrUserExists))
		u, _ := c.User("a@x.com")
		assert.Equal(t, "Alice", u.Name())
		assert.Equal(t, 1, u.BookCount())
		assert.Len(t, c.Users(), 1)
		assert.Len(t, c.Books(), 1)
		assert.Equal(t, []catalog.EventKind{
			catalog.EventBookAdded,
			catalog.EventUserAdded,
			catalog.EventUserExists,
		}, rec.Kinds())
	})
}

func TestCatalog_AddBookToUser(t *testing.T) {
	t.Run("error - unknown email mutates nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockReporter := mocks.NewMockReporter(ctrl)
		c := catalog.New(catalog.WithReporter(mockReporter))
		dune := book.New("Dune", "001")

		mockReporter.EXPECT().Report(eventKind(catalog.EventUserNotFound))

		err := c.AddBookToUser(dune, "nobody@x.com", rating.Ptr(3))

		assert.True(t, errors.Is(err, catalog.ErrUserNotFound))
		assert.Empty(t, c.Users())
		assert.Empty(t, c.Books())
		assert.Empty(t, dune.Ratings())
	})

	t.Run("error - invalid rating mutates nothing", func(t *testing.T) {
		c, rec := testutil.NewCatalog()
		dune := book.New("Dune", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))

		err := c.AddBookToUser(dune, "a@x.com", rating.Ptr(5))

		assert.True(t, errors.Is(err, rating.ErrInvalid))
		u, _ := c.User("a@x.com")
		assert.False(t, u.HasRead(dune))
		assert.Empty(t, c.Books())
		assert.Empty(t, dune.Ratings())
		assert.Equal(t, catalog.EventInvalidRating, rec.LastKind())
	})

	t.Run("success - single rated read", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		dune := c.CreateNovel("Dune", "Herbert", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))

		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(4)))

		assert.Equal(t, 1, c.ReadCount(dune))
		avg, ok := dune.AverageRating()
		assert.True(t, ok)
		assert.Equal(t, 4.0, avg)
		u, _ := c.User("a@x.com")
		avg, ok = u.AverageRating()
		assert.True(t, ok)
		assert.Equal(t, 4.0, avg)
	})

	t.Run("success - two readers accumulate ratings", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		dune := c.CreateNovel("Dune", "Herbert", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(4)))
		require.NoError(t, c.AddBookToUser(dune, "b@x.com", rating.Ptr(2)))

		assert.Equal(t, 2, c.ReadCount(dune))
		assert.Equal(t, []int{4, 2}, dune.Ratings())
		avg, _ := dune.AverageRating()
		assert.Equal(t, 3.0, avg)
	})

	t.Run("success - latest policy keeps only the newest rating", func(t *testing.T) {
		c, _ := testutil.NewCatalog(catalog.WithRatingPolicy(rating.Latest))
		dune := c.CreateNovel("Dune", "Herbert", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(4)))
		require.NoError(t, c.AddBookToUser(dune, "b@x.com", rating.Ptr(2)))

		assert.Equal(t, 2, c.ReadCount(dune))
		assert.Equal(t, []int{2}, dune.Ratings())
	})

	t.Run("success - re-reading does not raise the read count", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		dune := book.New("Dune", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))

		require.NoError(t, c.AddBookToUser(dune, "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(3)))

		assert.Equal(t, 1, c.ReadCount(dune))
		u, _ := c.User("a@x.com")
		got, ok := u.Rating(dune)
		require.True(t, ok)
		assert.Equal(t, 3, *got)
	})

	t.Run("success - equal books share a read count", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		require.NoError(t, c.AddBookToUser(book.New("Dune", "001"), "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(book.NewFiction("Dune", "Herbert", "001"), "b@x.com", nil))

		assert.Len(t, c.Books(), 1)
		assert.Equal(t, 2, c.ReadCount(book.New("Dune", "001")))
	})

	t.Run("success - rating an equal book rates the registered one", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		registered := book.New("Dune", "001")
		require.NoError(t, c.AddBookToUser(registered, "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(book.New("Dune", "001"), "b@x.com", rating.Ptr(4)))

		assert.Equal(t, 2, c.ReadCount(registered))
		got, ok := c.HighestRatedBook()
		require.True(t, ok)
		assert.Same(t, registered, got)
		avg, ok := registered.AverageRating()
		require.True(t, ok)
		assert.Equal(t, 4.0, avg)
	})
}

func TestCatalog_SetISBN(t *testing.T) {
	t.Run("re-keys catalog and readers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockReporter := mocks.NewMockReporter(ctrl)
		mockReporter.EXPECT().Report(gomock.Not(eventKind(catalog.EventISBNChanged))).AnyTimes()
		mockReporter.EXPECT().Report(eventKind(catalog.EventISBNChanged)).Times(1)
		c := catalog.New(catalog.WithReporter(mockReporter))

		dune := book.New("Dune", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(4)))

		c.SetISBN(dune, "002")

		assert.Equal(t, "002", dune.ISBN())
		assert.Equal(t, 1, c.ReadCount(dune))
		assert.Equal(t, 0, c.ReadCount(book.New("Dune", "001")))
		u, _ := c.User("a@x.com")
		assert.True(t, u.HasRead(dune))

		require.NoError(t, c.AddBookToUser(dune, "a@x.com", rating.Ptr(2)))
		assert.Equal(t, 1, c.ReadCount(dune))
		assert.Len(t, c.Books(), 1)
	})

	t.Run("book changed directly is found again", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		dune := book.New("Dune", "001")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))
		require.NoError(t, c.AddBookToUser(dune, "a@x.com", nil))

		dune.SetISBN("002")
		require.NoError(t, c.AddBookToUser(dune, "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(dune, "b@x.com", nil))

		assert.Len(t, c.Books(), 1)
		assert.Equal(t, 2, c.ReadCount(dune))
	})

	t.Run("merges onto an equal book", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		first := book.New("Dune", "001")
		second := book.New("Dune", "002")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))
		require.NoError(t, c.AddBookToUser(first, "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(second, "a@x.com", nil))
		require.NoError(t, c.AddBookToUser(second, "b@x.com", rating.Ptr(4)))

		c.SetISBN(second, "001")

		assert.Len(t, c.Books(), 1)
		assert.Equal(t, 2, c.ReadCount(first))
		u, _ := c.User("a@x.com")
		assert.Equal(t, 1, u.BookCount())

		got, ok := c.HighestRatedBook()
		require.True(t, ok)
		assert.Same(t, first, got)
		assert.Equal(t, []int{4}, first.Ratings())
	})

	t.Run("merge keeps the latest rating under the latest policy", func(t *testing.T) {
		c, _ := testutil.NewCatalog(catalog.WithRatingPolicy(rating.Latest))
		first := book.New("Dune", "001")
		second := book.New("Dune", "002")
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddBookToUser(first, "a@x.com", rating.Ptr(1)))
		require.NoError(t, c.AddBookToUser(second, "a@x.com", rating.Ptr(3)))

		c.SetISBN(second, "001")

		assert.Equal(t, []int{3}, first.Ratings())
	})
}

func TestCatalog_ChangeEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, rec := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		require.NoError(t, c.ChangeEmail("a@x.com", "alice@x.com"))

		_, ok := c.User("a@x.com")
		assert.False(t, ok)
		u, ok := c.User("alice@x.com")
		require.True(t, ok)
		assert.Equal(t, "alice@x.com", u.Email())
		assert.Equal(t, "Alice", c.Users()[0].Name())
		assert.Equal(t, catalog.EventEmailChanged, rec.LastKind())
	})

	t.Run("error - unknown user", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		err := c.ChangeEmail("a@x.com", "alice@x.com")
		assert.True(t, errors.Is(err, catalog.ErrUserNotFound))
	})

	t.Run("error - email taken", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))

		err := c.ChangeEmail("a@x.com", "b@x.com")

		assert.True(t, errors.Is(err, catalog.ErrUserExists))
		u, _ := c.User("b@x.com")
		assert.Equal(t, "Bob", u.Name())
		u, _ = c.User("a@x.com")
		assert.Equal(t, "Alice", u.Name())
	})
}

func TestCatalog_Queries_Empty(t *testing.T) {
	c, _ := testutil.NewCatalog()

	_, ok := c.MostReadBook()
	assert.False(t, ok)
	_, ok = c.HighestRatedBook()
	assert.False(t, ok)
	_, ok = c.MostPositiveUser()
	assert.False(t, ok)
}

func TestCatalog_MostReadBook(t *testing.T) {
	c, _ := testutil.NewCatalog()
	a := book.New("A", "1")
	b := book.New("B", "2")
	require.NoError(t, c.AddUser("Alice", "a@x.com", a, b))
	require.NoError(t, c.AddUser("Bob", "b@x.com", b))

	got, ok := c.MostReadBook()
	require.True(t, ok)
	assert.Equal(t, "B", got.Title())

	t.Run("tie goes to first read", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		a := book.New("A", "1")
		b := book.New("B", "2")
		require.NoError(t, c.AddUser("Alice", "a@x.com", a, b))

		got, ok := c.MostReadBook()
		require.True(t, ok)
		assert.Equal(t, "A", got.Title())
	})
}

func TestCatalog_HighestRatedBook(t *testing.T) {
	t.Run("unrated books are skipped", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		unrated := book.New("Unrated", "0")
		low := book.New("Low", "1")
		high := book.New("High", "2")
		require.NoError(t, c.AddUser("Alice", "a@x.com", unrated))
		require.NoError(t, c.AddBookToUser(low, "a@x.com", rating.Ptr(1)))
		require.NoError(t, c.AddBookToUser(high, "a@x.com", rating.Ptr(3)))

		got, ok := c.HighestRatedBook()
		require.True(t, ok)
		assert.Equal(t, "High", got.Title())
	})

	t.Run("only unrated books", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com", book.New("A", "1")))

		_, ok := c.HighestRatedBook()
		assert.False(t, ok)
	})

	t.Run("zero average still beats unrated", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		zero := book.New("Zero", "1")
		require.NoError(t, c.AddUser("Alice", "a@x.com", book.New("A", "0")))
		require.NoError(t, c.AddBookToUser(zero, "a@x.com", rating.Ptr(0)))

		got, ok := c.HighestRatedBook()
		require.True(t, ok)
		assert.Equal(t, "Zero", got.Title())
	})

	t.Run("tie goes to first read", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddBookToUser(book.New("First", "1"), "a@x.com", rating.Ptr(4)))
		require.NoError(t, c.AddBookToUser(book.New("Second", "2"), "a@x.com", rating.Ptr(4)))

		got, _ := c.HighestRatedBook()
		assert.Equal(t, "First", got.Title())
	})
}

func TestCatalog_MostPositiveUser(t *testing.T) {
	t.Run("returns the name", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))
		require.NoError(t, c.AddBookToUser(book.New("A", "1"), "a@x.com", rating.Ptr(2)))
		require.NoError(t, c.AddBookToUser(book.New("B", "2"), "b@x.com", rating.Ptr(3)))

		name, ok := c.MostPositiveUser()
		require.True(t, ok)
		assert.Equal(t, "Bob", name)
	})

	t.Run("unrated books lower the average", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com", book.New("X", "9")))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))
		require.NoError(t, c.AddBookToUser(book.New("A", "1"), "a@x.com", rating.Ptr(4)))
		require.NoError(t, c.AddBookToUser(book.New("B", "2"), "b@x.com", rating.Ptr(3)))

		name, _ := c.MostPositiveUser()
		assert.Equal(t, "Bob", name)
	})

	t.Run("users without books are skipped", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Idle", "i@x.com"))
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddBookToUser(book.New("A", "1"), "a@x.com", rating.Ptr(0)))

		name, ok := c.MostPositiveUser()
		require.True(t, ok)
		assert.Equal(t, "Alice", name)
	})

	t.Run("no reader has read anything", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Idle", "i@x.com"))

		_, ok := c.MostPositiveUser()
		assert.False(t, ok)
	})

	t.Run("tie goes to first registered", func(t *testing.T) {
		c, _ := testutil.NewCatalog()
		require.NoError(t, c.AddUser("Alice", "a@x.com"))
		require.NoError(t, c.AddUser("Bob", "b@x.com"))
		require.NoError(t, c.AddBookToUser(book.New("A", "1"), "a@x.com", rating.Ptr(3)))
		require.NoError(t, c.AddBookToUser(book.New("A", "1"), "b@x.com", rating.Ptr(3)))

		name, _ := c.MostPositiveUser()
		assert.Equal(t, "Alice", name)
	})
}
