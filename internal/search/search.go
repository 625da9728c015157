package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"shuzhai/internal/domain"
)

// contentPreviewLen bounds how much of the excerpt body participates in
// matching, so very long passages don't dominate the rank distance.
const contentPreviewLen = 120

// Result is a buffered memo that matched the filter query.
type Result struct {
	Index int // Position in the buffer
	Memo  domain.Memo
	Rank  int // Levenshtein-ish distance, lower is better
}

// Filter ranks the buffered memos against a fuzzy query over book
// title, author and the start of the excerpt body. An empty query
// returns every memo in buffer order.
func Filter(memos []domain.Memo, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]Result, len(memos))
		for i, m := range memos {
			results[i] = Result{Index: i, Memo: m}
		}
		return results
	}

	targets := make([]string, len(memos))
	for i, m := range memos {
		targets[i] = searchTarget(m)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	results := make([]Result, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, Result{
			Index: r.OriginalIndex,
			Memo:  memos[r.OriginalIndex],
			Rank:  r.Distance,
		})
	}
	return results
}

func searchTarget(m domain.Memo) string {
	preview := m.Content
	if runes := []rune(preview); len(runes) > contentPreviewLen {
		preview = string(runes[:contentPreviewLen])
	}
	return m.BookTitle + " " + m.BookAuthor + " " + preview
}
