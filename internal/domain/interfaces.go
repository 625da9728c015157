package domain

import "context"

// MemoGateway is the remote backend boundary. Random sampling and like
// accounting happen server-side; callers treat every method as an opaque
// network call with its own latency and failure profile.
type MemoGateway interface {
	// FetchRandomMemos returns up to limit pseudo-randomly sampled memos
	// with their current like state. Order is not meaningful beyond the
	// random draw, and the same memo may appear across successive calls.
	FetchRandomMemos(ctx context.Context, limit int) ([]Memo, error)

	// AdjustLike atomically applies delta (+1 or -1) to a memo's like
	// counter and returns the new authoritative count. The counter never
	// goes negative server-side.
	AdjustLike(ctx context.Context, memoID string, delta int) (int, error)

	// ToggleOwnerLike flips the owner's like flag for a memo and returns
	// the resulting state.
	ToggleOwnerLike(ctx context.Context, memoID string) (OwnerLikeState, error)

	// CreateBookIfNeeded upserts a book keyed by (owner, title, author)
	// and returns its ID.
	CreateBookIfNeeded(ctx context.Context, title, author, ownerID string) (string, error)

	// InsertMemos bulk-inserts excerpt rows for a book. Any failure is
	// reported through InsertResult with Count 0.
	InsertMemos(ctx context.Context, bookID string, contents []string, ownerID string) (InsertResult, error)
}

// LikeLedger is the device-local record of which memos an anonymous
// visitor has liked. Absence of an entry means not liked; unliking
// removes the entry rather than storing false.
type LikeLedger interface {
	IsLiked(memoID string) bool
	SetLiked(memoID string, liked bool) error
}
