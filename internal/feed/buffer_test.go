package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"shuzhai/internal/domain"
)

func makeMemos(n int, prefix string) []domain.Memo {
	memos := make([]domain.Memo, n)
	for i := range memos {
		memos[i] = domain.Memo{
			ID:         fmt.Sprintf("%s-%d", prefix, i),
			Content:    fmt.Sprintf("excerpt %d", i),
			BookTitle:  "The Book",
			BookAuthor: "The Author",
			LikeCount:  3,
		}
	}
	return memos
}

func TestBufferEmpty(t *testing.T) {
	var b Buffer

	_, ok := b.Current()
	assert.False(t, ok)
	assert.False(t, b.Advance())
	assert.False(t, b.Retreat())
	assert.Equal(t, 0, b.RemainingAfterCursor())
}

func TestBufferAppendPreservesOrder(t *testing.T) {
	var b Buffer
	b.Append(makeMemos(3, "a"))
	b.Append(makeMemos(2, "b"))

	assert.Equal(t, 5, b.Len())
	assert.Equal(t, "a-0", b.Records()[0].ID)
	assert.Equal(t, "b-1", b.Records()[4].ID)
}

func TestBufferAcceptsDuplicateIDs(t *testing.T) {
	// Random draws may repeat; duplicates are tolerated, not rejected.
	var b Buffer
	b.Append(makeMemos(2, "m"))
	b.Append(makeMemos(2, "m"))

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, b.Records()[0].ID, b.Records()[2].ID)
}

func TestBufferReplaceResetsCursor(t *testing.T) {
	var b Buffer
	b.Append(makeMemos(5, "a"))
	b.Advance()
	b.Advance()

	b.Replace(makeMemos(2, "b"))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 0, b.Cursor())
	cur, ok := b.Current()
	assert.True(t, ok)
	assert.Equal(t, "b-0", cur.ID)
}

func TestBufferAdvanceRetreatBounds(t *testing.T) {
	var b Buffer
	b.Append(makeMemos(3, "m"))

	assert.True(t, b.Advance())
	assert.True(t, b.Advance())
	assert.False(t, b.Advance())
	assert.Equal(t, 2, b.Cursor())

	assert.True(t, b.Retreat())
	assert.True(t, b.Retreat())
	assert.False(t, b.Retreat())
	assert.False(t, b.Retreat())
	assert.Equal(t, 0, b.Cursor())
}

func TestBufferRemainingAfterCursor(t *testing.T) {
	var b Buffer
	b.Append(makeMemos(10, "m"))

	assert.Equal(t, 9, b.RemainingAfterCursor())
	for i := 0; i < 7; i++ {
		b.Advance()
	}
	assert.Equal(t, 2, b.RemainingAfterCursor())
}

func TestBufferUpdateAt(t *testing.T) {
	var b Buffer
	b.Append(makeMemos(2, "m"))

	b.UpdateAt(1, func(m domain.Memo) domain.Memo {
		m.LikeCount = 42
		return m
	})
	assert.Equal(t, 42, b.Records()[1].LikeCount)

	// Out of range is a no-op.
	b.UpdateAt(5, func(m domain.Memo) domain.Memo {
		m.LikeCount = 99
		return m
	})
	b.UpdateAt(-1, func(m domain.Memo) domain.Memo {
		m.LikeCount = 99
		return m
	})
	assert.Equal(t, 3, b.Records()[0].LikeCount)
	assert.Equal(t, 42, b.Records()[1].LikeCount)
}
