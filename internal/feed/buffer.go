package feed

import "shuzhai/internal/domain"

// Buffer is the ordered sequence of fetched memos plus a cursor.
// Batches are appended at the tail in arrival order; no identity
// deduplication is performed, so a memo id may appear more than once
// across batches. The Controller is the sole owner and mutator.
type Buffer struct {
	records []domain.Memo
	cursor  int
}

// Append adds a batch to the tail, preserving arrival order.
func (b *Buffer) Append(batch []domain.Memo) {
	b.records = append(b.records, batch...)
}

// Replace discards all records and the cursor and installs batch.
func (b *Buffer) Replace(batch []domain.Memo) {
	b.records = append([]domain.Memo(nil), batch...)
	b.cursor = 0
}

// Current returns the record at the cursor, or false if the buffer is empty.
func (b *Buffer) Current() (domain.Memo, bool) {
	if len(b.records) == 0 {
		return domain.Memo{}, false
	}
	return b.records[b.cursor], true
}

// Advance moves the cursor forward one record. It returns false and
// leaves state unchanged when the cursor is already at the tail.
func (b *Buffer) Advance() bool {
	if b.cursor+1 >= len(b.records) {
		return false
	}
	b.cursor++
	return true
}

// Retreat moves the cursor back one record, returning false at index 0.
func (b *Buffer) Retreat() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

// Seek moves the cursor to index, returning false when out of range.
func (b *Buffer) Seek(index int) bool {
	if index < 0 || index >= len(b.records) {
		return false
	}
	b.cursor = index
	return true
}

// RemainingAfterCursor returns how many records lie past the cursor.
func (b *Buffer) RemainingAfterCursor() int {
	if len(b.records) == 0 {
		return 0
	}
	return len(b.records) - 1 - b.cursor
}

// UpdateAt replaces the record at index with mutate's result.
// Out-of-range indexes are a no-op.
func (b *Buffer) UpdateAt(index int, mutate func(domain.Memo) domain.Memo) {
	if index < 0 || index >= len(b.records) {
		return
	}
	b.records[index] = mutate(b.records[index])
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	return len(b.records)
}

// Cursor returns the current cursor index.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Records returns the buffered records in order. Callers must not mutate
// the returned slice.
func (b *Buffer) Records() []domain.Memo {
	return b.records
}
