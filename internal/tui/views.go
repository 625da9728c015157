package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shuzhai/internal/feed"
	"shuzhai/internal/tui/styles"
)

const maxCardWidth = 64

// View renders the active surface centered in the terminal.
func (m Model) View() string {
	var body string
	switch m.mode {
	case modeFilter:
		body = m.filter.View()
	case modeAdmin:
		body = m.adminForm.View()
	case modeSignIn:
		body = m.signinForm.View()
	default:
		body = m.viewFeed()
	}

	content := body
	if footer := m.viewFooter(); footer != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, body, "", footer)
	}

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewFeed() string {
	switch m.ctrl.State() {
	case feed.StateIdle, feed.StateLoading:
		return m.spinner.View() + " " + m.theme.Dim.Render("正在加载…")

	case feed.StateEmpty:
		return m.theme.Dim.Render("还没有摘抄。登录后按 a 添加。")

	case feed.StateError:
		if _, ok := m.ctrl.Current(); ok {
			// Soft failure: the last good card stays up under the banner.
			return lipgloss.JoinVertical(lipgloss.Center,
				m.viewErrorBanner(), "", m.viewCard())
		}
		return lipgloss.JoinVertical(lipgloss.Center,
			m.viewErrorBanner(), "",
			m.theme.Dim.Render("按 r 重试"))

	default:
		return m.viewCard()
	}
}

func (m Model) viewCard() string {
	memo, ok := m.ctrl.Current()
	if !ok {
		return ""
	}

	width := maxCardWidth
	if m.width > 0 && m.width-8 < width {
		width = m.width - 8
	}
	if width < 24 {
		width = 24
	}

	var b strings.Builder
	b.WriteString(m.theme.Content.Render(memo.Content))
	b.WriteString("\n\n")
	b.WriteString(m.theme.BookTitle.Render("《" + memo.BookTitle + "》"))
	if memo.BookAuthor != "" {
		b.WriteString(m.theme.BookAuthor.Render("  " + memo.BookAuthor))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewLikeLine(memo.LikeCount))

	card := m.theme.Card.Width(width).Render(b.String())

	position := m.theme.Dim.Render(
		fmt.Sprintf("%d / %d", m.ctrl.Buffer().Cursor()+1, m.ctrl.Buffer().Len()))
	if m.ctrl.State() == feed.StatePrefetching {
		position += " " + m.spinner.View()
	}

	return lipgloss.JoinVertical(lipgloss.Center, card, position)
}

func (m Model) viewLikeLine(count int) string {
	memo, _ := m.ctrl.Current()

	heart := m.theme.Unliked.Render(styles.HeartOutline)
	if m.ctrl.IsLiked(memo) {
		heart = m.theme.Liked.Render(styles.HeartFilled)
	}
	line := heart + " " + m.theme.Accent.Render(fmt.Sprintf("%d", count))
	if m.ctrl.LikeBusy() {
		line += " " + m.spinner.View()
	}
	return line
}

func (m Model) viewErrorBanner() string {
	err := m.ctrl.Err()
	if err == nil {
		return ""
	}
	return m.theme.ErrorBanner.Render("⚠ " + err.Error() + "  (esc 关闭)")
}

func (m Model) viewFooter() string {
	if m.status != "" {
		if m.statusErr {
			return m.theme.ErrorBanner.Render(m.status)
		}
		return m.theme.Success.Render(m.status)
	}
	if m.mode != modeViewing {
		return ""
	}

	help := "←/→ 翻页 · enter 喜欢 · r 换一批 · / 筛选 · t 主题"
	if _, ok := m.gateway.CurrentSession(); ok {
		help += " · a 添加 · S 退出登录"
	} else {
		help += " · s 登录"
	}
	help += " · q 退出"
	return m.theme.Dim.Render(help)
}
