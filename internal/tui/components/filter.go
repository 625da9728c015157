package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"shuzhai/internal/domain"
	"shuzhai/internal/search"
	"shuzhai/internal/tui/styles"
)

const maxFilterRows = 12

// Filter is the buffered-memo filter overlay: a query input plus a
// ranked result list. Matching runs over the whole memo (title, author,
// content prefix); the rendered label highlights the characters the
// query hit.
type Filter struct {
	input    textinput.Model
	source   []domain.Memo
	results  []search.Result
	selected int
	theme    styles.Theme
}

// NewFilter creates the overlay for the given buffer snapshot.
func NewFilter(theme styles.Theme, memos []domain.Memo) Filter {
	input := textinput.New()
	input.Placeholder = "filter buffered excerpts"
	input.Focus()

	f := Filter{input: input, theme: theme}
	f.SetSource(memos)
	return f
}

// SetTheme swaps the palette.
func (f *Filter) SetTheme(theme styles.Theme) {
	f.theme = theme
}

// SetSource installs the memos to filter and re-runs the query.
func (f *Filter) SetSource(memos []domain.Memo) {
	f.source = memos
	f.refresh()
}

// Update routes input to the query field and recomputes results.
func (f Filter) Update(msg tea.Msg) (Filter, tea.Cmd) {
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		f.refresh()
	}
	return f, cmd
}

func (f *Filter) refresh() {
	f.results = search.Filter(f.source, f.input.Value())
	if f.selected >= len(f.results) {
		f.selected = 0
	}
}

// MoveSelection moves the highlighted row by delta, clamped.
func (f *Filter) MoveSelection(delta int) {
	if len(f.results) == 0 {
		return
	}
	f.selected += delta
	if f.selected < 0 {
		f.selected = 0
	}
	if f.selected >= len(f.results) {
		f.selected = len(f.results) - 1
	}
}

// SelectedIndex returns the buffer index of the highlighted result,
// or -1 when there is none.
func (f *Filter) SelectedIndex() int {
	if len(f.results) == 0 {
		return -1
	}
	return f.results[f.selected].Index
}

// View renders the overlay.
func (f *Filter) View() string {
	var b strings.Builder
	b.WriteString(f.input.View())
	b.WriteString("\n\n")

	if len(f.results) == 0 {
		b.WriteString(f.theme.Dim.Render("没有匹配的句子"))
	} else {
		rows := f.results
		if len(rows) > maxFilterRows {
			rows = rows[:maxFilterRows]
		}
		for i, res := range rows {
			label := filterLabel(res.Memo)
			line := f.highlight(label)
			if i == f.selected {
				line = f.theme.Selected.Render(label)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if extra := len(f.results) - len(rows); extra > 0 {
			b.WriteString(f.theme.Dim.Render(fmt.Sprintf("… and %d more", extra)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(f.theme.Dim.Render("↑/↓ 选择 · enter 跳转 · esc 关闭"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Render(b.String())
}

// highlight re-runs the query against the display label and styles the
// matched characters.
func (f *Filter) highlight(label string) string {
	query := strings.TrimSpace(f.input.Value())
	if query == "" {
		return label
	}
	matches := fuzzy.Find(query, []string{label})
	if len(matches) == 0 {
		return label
	}

	matched := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, idx := range matches[0].MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder
	for i, r := range label {
		if matched[i] {
			b.WriteString(f.theme.MatchChar.Render(string(r)))
		} else {
			b.WriteString(string(r))
		}
	}
	return b.String()
}

func filterLabel(m domain.Memo) string {
	preview := strings.Join(strings.Fields(m.Content), " ")
	if runes := []rune(preview); len(runes) > 40 {
		preview = string(runes[:40]) + "…"
	}
	return fmt.Sprintf("%s · %s — %s", m.BookTitle, m.BookAuthor, preview)
}
