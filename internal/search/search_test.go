package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuzhai/internal/domain"
)

func sampleMemos() []domain.Memo {
	return []domain.Memo{
		{ID: "m0", BookTitle: "Fortress Besieged", BookAuthor: "Qian Zhongshu", Content: "Marriage is like a fortress besieged."},
		{ID: "m1", BookTitle: "To Live", BookAuthor: "Yu Hua", Content: "No road is long with good company."},
		{ID: "m2", BookTitle: "Border Town", BookAuthor: "Shen Congwen", Content: "The ferry crossed in silence."},
	}
}

func TestFilterEmptyQueryReturnsAll(t *testing.T) {
	results := Filter(sampleMemos(), "   ")
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 2, results[2].Index)
}

func TestFilterMatchesTitleAndAuthor(t *testing.T) {
	results := Filter(sampleMemos(), "fortress")
	require.NotEmpty(t, results)
	assert.Equal(t, "m0", results[0].Memo.ID)

	results = Filter(sampleMemos(), "congwen")
	require.NotEmpty(t, results)
	assert.Equal(t, "m2", results[0].Memo.ID)
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	results := Filter(sampleMemos(), "BORDER town")
	require.NotEmpty(t, results)
	assert.Equal(t, "m2", results[0].Memo.ID)
}

func TestFilterNoMatch(t *testing.T) {
	results := Filter(sampleMemos(), "zzzzqqqq")
	assert.Empty(t, results)
}

func TestFilterKeepsBufferIndexes(t *testing.T) {
	results := Filter(sampleMemos(), "yu hua")
	require.NotEmpty(t, results)
	assert.Equal(t, 1, results[0].Index, "result points back into the buffer")
}
