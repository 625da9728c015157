package domain

import "time"

// Memo represents a single excerpted passage from a book.
// Identity and display metadata are immutable after creation; only the
// like state changes over a memo's lifetime, and the authoritative copy
// of that state lives on the server.
type Memo struct {
	ID           string    // Stable unique identifier
	Content      string    // Excerpt body, display-only
	CreatedAt    time.Time // Server-side creation time
	BookID       string    // Parent book ID
	BookTitle    string    // Denormalized book title
	BookAuthor   string    // Denormalized book author
	LikeCount    int       // Like counter, never negative
	LikedByOwner bool      // Owner's like flag, meaningful in owner mode only
}

// Book represents a source book owned by the authenticated administrator.
type Book struct {
	ID        string
	Title     string
	Author    string
	CreatedAt time.Time
}

// OwnerLikeState is the authoritative result of an owner like toggle.
type OwnerLikeState struct {
	LikedByOwner bool
	LikeCount    int
}

// InsertResult reports the outcome of a bulk memo insert.
// Count is zero whenever any row failed; the backend does not expose
// per-row success, so partial acceptance is not observable.
type InsertResult struct {
	Count int
	Errs  []error
}

// Failed reports whether the insert was rejected.
func (r InsertResult) Failed() bool {
	return len(r.Errs) > 0
}
