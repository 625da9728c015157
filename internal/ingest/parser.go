package ingest

import (
	"regexp"
	"strings"
)

// Excerpts are pasted as one text block with blank lines between entries.
var blockSeparator = regexp.MustCompile(`\r?\n{2,}`)

// ParseBlock splits a pasted text block into individual excerpts.
// Entries are separated by one or more blank lines; surrounding
// whitespace is trimmed and empty entries are dropped.
func ParseBlock(block string) []string {
	var entries []string
	for _, part := range blockSeparator.Split(block, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			entries = append(entries, part)
		}
	}
	return entries
}
