package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shuzhai/internal/tui/styles"
)

// SignInForm collects the owner's email and password.
type SignInForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	theme    styles.Theme
	busy     bool
}

// NewSignInForm creates the form with the email field focused. A
// pre-filled email (from config) skips straight to the password.
func NewSignInForm(theme styles.Theme, email string) SignInForm {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.CharLimit = 254
	emailInput.SetValue(email)

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := SignInForm{email: emailInput, password: password, theme: theme}
	if email != "" {
		f.focus = 1
		f.password.Focus()
	} else {
		f.email.Focus()
	}
	return f
}

// SetTheme swaps the palette.
func (f *SignInForm) SetTheme(theme styles.Theme) {
	f.theme = theme
}

// SetBusy marks a sign-in attempt as in flight.
func (f *SignInForm) SetBusy(busy bool) {
	f.busy = busy
}

// Busy reports whether a sign-in attempt is in flight.
func (f *SignInForm) Busy() bool {
	return f.busy
}

// CycleFocus toggles between the two fields.
func (f *SignInForm) CycleFocus() {
	f.focus = 1 - f.focus
	if f.focus == 0 {
		f.email.Focus()
		f.password.Blur()
	} else {
		f.email.Blur()
		f.password.Focus()
	}
}

// Update routes input to the focused field.
func (f SignInForm) Update(msg tea.Msg) (SignInForm, tea.Cmd) {
	if f.busy {
		return f, nil
	}
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

// Values returns the entered credentials.
func (f *SignInForm) Values() (email, password string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

// ClearPassword wipes the password field after an attempt.
func (f *SignInForm) ClearPassword() {
	f.password.SetValue("")
}

// View renders the form.
func (f *SignInForm) View() string {
	var b strings.Builder
	label := f.theme.InputLabel

	b.WriteString(f.theme.BookTitle.Render("登录"))
	b.WriteString("\n\n")
	b.WriteString(label.Render("邮箱") + "\n" + f.email.View() + "\n\n")
	b.WriteString(label.Render("密码") + "\n" + f.password.View() + "\n\n")
	if f.busy {
		b.WriteString(f.theme.Dim.Render("正在登录…"))
	} else {
		b.WriteString(f.theme.Dim.Render("tab 切换字段 · enter 登录 · esc 关闭"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Render(b.String())
}
