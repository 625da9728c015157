package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shuzhai/internal/domain"
)

// Validation errors. These block submission locally and never reach the
// network.
var (
	ErrMissingBook    = errors.New("book title and author are required")
	ErrNoEntries      = errors.New("at least one excerpt is required")
	ErrNotSignedIn    = errors.New("sign in before saving excerpts")
	ErrInsertRejected = errors.New("insert was rejected")
)

// Service saves pasted excerpt blocks under the owner's account.
type Service struct {
	gateway domain.MemoGateway
	logger  *slog.Logger
}

// NewService creates an ingestion service.
func NewService(gateway domain.MemoGateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gateway, logger: logger}
}

// Submit validates the form input, upserts the book and bulk-inserts the
// parsed excerpts. It returns the number of saved excerpts.
func (s *Service) Submit(ctx context.Context, title, author, block, ownerID string) (int, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" || author == "" {
		return 0, ErrMissingBook
	}
	entries := ParseBlock(block)
	if len(entries) == 0 {
		return 0, ErrNoEntries
	}
	if ownerID == "" {
		return 0, ErrNotSignedIn
	}

	bookID, err := s.gateway.CreateBookIfNeeded(ctx, title, author, ownerID)
	if err != nil {
		s.logger.Error("book upsert failed", "title", title, "error", err)
		return 0, err
	}

	result, err := s.gateway.InsertMemos(ctx, bookID, entries, ownerID)
	if err != nil {
		s.logger.Error("memo insert failed", "book", bookID, "error", err)
		return 0, err
	}
	if result.Failed() {
		// The backend reports count 0 whenever any row fails; per-row
		// success is not observable, so the whole batch is treated as
		// rejected.
		s.logger.Error("memo insert rejected", "book", bookID, "error", result.Errs[0])
		return 0, fmt.Errorf("%w: %v", ErrInsertRejected, result.Errs[0])
	}

	s.logger.Info("excerpts saved", "book", bookID, "count", result.Count)
	return result.Count, nil
}
