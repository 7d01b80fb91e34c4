// Package store contains the core logic for the in-memory book store.
// It is designed to be thread-safe for concurrent access.
package store

import (
	"fmt"
	"sync"
	"time"
)

// Book is an immutable record value. Changing a field means building a new
// Book and replacing the stored one; the store never mutates a Book in place.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// withTitle returns a copy of b with the title replaced.
func (b Book) withTitle(title string) Book {
	b.Title = title
	return b
}

// Option configures a Store.
type Option func(*Store) error

// WithClock overrides the time source used to stamp new books.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		s.now = now
		return nil
	}
}

// WithAllowBlank disables the empty/whitespace check on title and author.
func WithAllowBlank() Option {
	return func(s *Store) error {
		s.allowBlank = true
		return nil
	}
}

// WithSeed preloads the store. Seed books keep their ids, which must be
// positive and strictly increasing; the id counter continues after the last.
func WithSeed(books ...Book) Option {
	return func(s *Store) error {
		if err := checkIDs(books, s.nextID); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		for _, b := range books {
			s.insert(b)
		}
		return nil
	}
}

// Store is a thread-safe in-memory book store.
// Books are kept in insertion order and indexed by id.
type Store struct {
	mu     sync.RWMutex
	books  []Book
	index  map[int64]int // id -> position in books
	nextID int64         // last id handed out; never decreases

	now        func() time.Time
	allowBlank bool
}

// NewStore initializes and returns a new Store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		index: make(map[int64]int),
		now:   time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultSeed returns the two sample books a fresh node starts with.
func DefaultSeed(createdAt time.Time) []Book {
	return []Book{
		{ID: 1, Title: "GraphQL für Einsteiger", Author: "Max Mustermann", CreatedAt: createdAt},
		{ID: 2, Title: "GraphQL in der Praxis", Author: "Lisa Musterfrau", CreatedAt: createdAt},
	}
}

// checkIDs verifies that books carry strictly increasing ids above floor.
func checkIDs(books []Book, floor int64) error {
	last := floor
	for i, b := range books {
		if b.ID <= last {
			return fmt.Errorf("%w: book %d at position %d must be greater than %d", ErrIDOrder, b.ID, i, last)
		}
		last = b.ID
	}
	return nil
}

// insert appends b at the end and moves the counter to its id. The id must
// already be checked with checkIDs. Caller holds the lock (or owns s
// exclusively, as during construction).
func (s *Store) insert(b Book) {
	s.index[b.ID] = len(s.books)
	s.books = append(s.books, b)
	s.nextID = b.ID
}

// ListAll returns a point-in-time copy of all books in insertion order.
func (s *Store) ListAll() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// Len returns the number of books currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Add creates a new book stamped with the store clock.
func (s *Store) Add(title, author string) (Book, error) {
	return s.AddAt(title, author, s.now())
}

// AddAt creates a new book with the given creation time. The id is taken
// from the counter under the write lock, so concurrent adds never collide.
// A rejected add does not consume an id.
func (s *Store) AddAt(title, author string, createdAt time.Time) (Book, error) {
	if err := s.checkText("title", title); err != nil {
		return Book{}, err
	}
	if err := s.checkText("author", author); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := Book{
		ID:        s.nextID + 1,
		Title:     title,
		Author:    author,
		CreatedAt: createdAt,
	}
	s.insert(b)
	return b, nil
}

// UpdateTitle replaces the book with the given id by a copy carrying the new
// title. ok is false when no such book exists; nothing is changed then.
func (s *Store) UpdateTitle(id int64, title string) (b Book, ok bool, err error) {
	if err := s.checkText("title", title); err != nil {
		return Book{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return Book{}, false, nil
	}
	b = s.books[pos].withTitle(title)
	s.books[pos] = b
	return b, true, nil
}

// State returns a copy of the books together with the id counter.
func (s *Store) State() ([]Book, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out, s.nextID
}

// Restore replaces the whole content of the store. nextID is clamped so it
// never falls below the highest restored id. On error the store is left
// untouched.
func (s *Store) Restore(books []Book, nextID int64) error {
	if err := checkIDs(books, 0); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = make([]Book, 0, len(books))
	s.index = make(map[int64]int, len(books))
	s.nextID = 0
	for _, b := range books {
		s.insert(b)
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return nil
}
