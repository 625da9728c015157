package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shuzhai/internal/ingest"
	"shuzhai/internal/tui/styles"
)

// AdminForm is the owner's excerpt-ingestion form: book title, author,
// and a free-text block that is split into individual excerpts on blank
// lines. The parsed entry count is previewed live.
type AdminForm struct {
	title  textinput.Model
	author textinput.Model
	block  textarea.Model
	focus  int
	theme  styles.Theme
	width  int
}

const adminFieldCount = 3

// NewAdminForm creates the form with the title field focused.
func NewAdminForm(theme styles.Theme) AdminForm {
	title := textinput.New()
	title.Placeholder = "书名"
	title.CharLimit = 200
	title.Focus()

	author := textinput.New()
	author.Placeholder = "作者"
	author.CharLimit = 200

	block := textarea.New()
	block.Placeholder = "每条句子之间请留一个空行"
	block.SetHeight(8)

	return AdminForm{title: title, author: author, block: block, theme: theme}
}

// SetTheme swaps the palette.
func (f *AdminForm) SetTheme(theme styles.Theme) {
	f.theme = theme
}

// SetWidth resizes the form fields.
func (f *AdminForm) SetWidth(width int) {
	f.width = width
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	f.title.Width = inner
	f.author.Width = inner
	f.block.SetWidth(inner)
}

// CycleFocus moves focus to the next (or previous) field.
func (f *AdminForm) CycleFocus(backward bool) {
	if backward {
		f.focus = (f.focus + adminFieldCount - 1) % adminFieldCount
	} else {
		f.focus = (f.focus + 1) % adminFieldCount
	}
	f.title.Blur()
	f.author.Blur()
	f.block.Blur()
	switch f.focus {
	case 0:
		f.title.Focus()
	case 1:
		f.author.Focus()
	case 2:
		f.block.Focus()
	}
}

// Update routes input to the focused field.
func (f AdminForm) Update(msg tea.Msg) (AdminForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.title, cmd = f.title.Update(msg)
	case 1:
		f.author, cmd = f.author.Update(msg)
	case 2:
		f.block, cmd = f.block.Update(msg)
	}
	return f, cmd
}

// Values returns the current form input.
func (f *AdminForm) Values() (title, author, block string) {
	return f.title.Value(), f.author.Value(), f.block.Value()
}

// ParsedCount returns how many excerpts the block splits into.
func (f *AdminForm) ParsedCount() int {
	return len(ingest.ParseBlock(f.block.Value()))
}

// Reset clears all fields and refocuses the title.
func (f *AdminForm) Reset() {
	f.title.SetValue("")
	f.author.SetValue("")
	f.block.SetValue("")
	f.focus = 0
	f.title.Focus()
	f.author.Blur()
	f.block.Blur()
}

// View renders the form.
func (f *AdminForm) View() string {
	var b strings.Builder
	label := f.theme.InputLabel

	b.WriteString(f.theme.BookTitle.Render("添加新的摘抄"))
	b.WriteString("\n\n")
	b.WriteString(label.Render("书名") + "\n" + f.title.View() + "\n\n")
	b.WriteString(label.Render("作者") + "\n" + f.author.View() + "\n\n")
	b.WriteString(label.Render("摘抄内容") + "\n" + f.block.View() + "\n\n")

	if n := f.ParsedCount(); n > 0 {
		b.WriteString(f.theme.Accent.Render(fmt.Sprintf("已解析 %d 条句子。", n)))
	} else {
		b.WriteString(f.theme.Dim.Render("输入内容后，将按空行自动拆分。"))
	}
	b.WriteString("\n\n")
	b.WriteString(f.theme.Dim.Render("tab 切换字段 · ctrl+s 保存 · esc 关闭"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Render(b.String())
}
