package supabase

import (
	"time"

	"shuzhai/internal/domain"
)

// Wire types for PostgREST responses. Column names are snake_case.

type memoRow struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	BookID       string    `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	BookAuthor   string    `json:"book_author"`
	LikeCount    int       `json:"like_count"`
	LikedByOwner bool      `json:"liked_by_owner"`
}

func (r memoRow) toDomain() domain.Memo {
	return domain.Memo{
		ID:           r.ID,
		Content:      r.Content,
		CreatedAt:    r.CreatedAt,
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		BookAuthor:   r.BookAuthor,
		LikeCount:    r.LikeCount,
		LikedByOwner: r.LikedByOwner,
	}
}

func mapMemos(rows []memoRow) []domain.Memo {
	memos := make([]domain.Memo, 0, len(rows))
	for _, row := range rows {
		memos = append(memos, row.toDomain())
	}
	return memos
}

type likeCountRow struct {
	LikeCount int `json:"like_count"`
}

type ownerLikeRow struct {
	LikedByOwner bool `json:"liked_by_owner"`
	LikeCount    int  `json:"like_count"`
}

type bookRow struct {
	ID string `json:"id"`
}

type bookInsert struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	OwnerID string `json:"owner_id"`
}

type memoInsert struct {
	BookID  string `json:"book_id"`
	Content string `json:"content"`
	OwnerID string `json:"owner_id"`
}

// apiError is PostgREST's error envelope.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}
