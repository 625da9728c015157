package ingest

import (
	"reflect"
	"testing"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  []string
	}{
		{
			name:  "empty input",
			block: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			block: "   \n\n  \n\n ",
			want:  nil,
		},
		{
			name:  "single entry",
			block: "一句话。",
			want:  []string{"一句话。"},
		},
		{
			name:  "entries split on blank lines",
			block: "first excerpt\n\nsecond excerpt\n\n\nthird excerpt",
			want:  []string{"first excerpt", "second excerpt", "third excerpt"},
		},
		{
			name:  "single newlines stay inside one entry",
			block: "line one\nline two\n\nnext entry",
			want:  []string{"line one\nline two", "next entry"},
		},
		{
			name:  "surrounding whitespace trimmed",
			block: "  padded entry  \n\n\tanother one\t",
			want:  []string{"padded entry", "another one"},
		},
		{
			name:  "blank-looking separators with spaces are kept together",
			block: "a\n \nb",
			want:  []string{"a\n \nb"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBlock(tc.block)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseBlock(%q) = %#v, want %#v", tc.block, got, tc.want)
			}
		})
	}
}
