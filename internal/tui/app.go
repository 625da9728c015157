package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"shuzhai/internal/config"
	"shuzhai/internal/feed"
	"shuzhai/internal/gateway/supabase"
	"shuzhai/internal/ingest"
	"shuzhai/internal/store"
	"shuzhai/internal/tui/components"
	"shuzhai/internal/tui/styles"
)

// viewMode selects which surface owns the keyboard.
type viewMode int

const (
	modeViewing viewMode = iota
	modeFilter
	modeAdmin
	modeSignIn
)

// Model is the root bubbletea model: one excerpt card at a time, with
// filter, sign-in, and admin overlays layered on top.
type Model struct {
	cfg     *config.Config
	gateway *supabase.Client
	store   *store.Store
	ingest  *ingest.Service
	ctrl    *feed.Controller
	logger  *slog.Logger

	keys    KeyMap
	theme   styles.Theme
	spinner spinner.Model

	mode       viewMode
	adminForm  components.AdminForm
	signinForm components.SignInForm
	filter     components.Filter

	width  int
	height int

	status    string
	statusErr bool
	saving    bool
}

// NewModel wires the application model. The like mode follows the auth
// state: a restored owner session uses owner toggles, otherwise likes
// are accounted anonymously against the local ledger.
func NewModel(cfg *config.Config, gateway *supabase.Client, st *store.Store, logger *slog.Logger) Model {
	themeName := st.Theme()
	if themeName == "" {
		themeName = cfg.UI.Theme
	}
	theme := styles.ByName(themeName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Accent

	return Model{
		cfg:        cfg,
		gateway:    gateway,
		store:      st,
		ingest:     ingest.NewService(gateway, logger),
		ctrl:       feed.NewController(st, likeModeFor(gateway), logger),
		logger:     logger,
		keys:       Keys,
		theme:      theme,
		spinner:    sp,
		adminForm:  components.NewAdminForm(theme),
		signinForm: components.NewSignInForm(theme, cfg.Supabase.Email),
		filter:     components.NewFilter(theme, nil),
	}
}

func likeModeFor(gateway *supabase.Client) feed.LikeMode {
	if _, ok := gateway.CurrentSession(); ok {
		return feed.LikeOwner
	}
	return feed.LikeAnonymous
}

// Init kicks off the initial feed load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.execFetch(m.ctrl.Reload()), m.spinner.Tick)
}

// execFetch turns a controller fetch request into a command, tolerating
// nil requests so call sites can pass controller returns through directly.
func (m Model) execFetch(req *feed.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	return FetchCmd(m.gateway, req)
}

// Update routes messages by kind, then by the active surface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adminForm.SetWidth(min(msg.Width-8, 72))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FetchResultMsg:
		next := m.ctrl.ApplyFetch(msg.Req, msg.Memos, msg.Err)
		if m.mode == modeFilter {
			m.filter.SetSource(m.ctrl.Buffer().Records())
		}
		return m, m.execFetch(next)

	case LikeResultMsg:
		m.ctrl.ApplyLike(msg.Req, msg.Count, msg.Err)
		return m, nil

	case OwnerLikeResultMsg:
		m.ctrl.ApplyOwnerLike(msg.Req, msg.State, msg.Err)
		return m, nil

	case SignInResultMsg:
		return m.handleSignInResult(msg)

	case SignOutResultMsg:
		return m.handleSignOutResult(msg)

	case IngestResultMsg:
		return m.handleIngestResult(msg)

	case StatusMsg:
		m.status = msg.Message
		m.statusErr = msg.IsError
		return m, ClearStatusCmd()

	case ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeAdmin:
			return m.updateAdmin(msg)
		case modeSignIn:
			return m.updateSignIn(msg)
		default:
			return m.updateViewing(msg)
		}
	}

	return m, nil
}

func (m Model) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		return m, m.execFetch(m.ctrl.NavigateNext())

	case key.Matches(msg, keys.Prev):
		m.ctrl.NavigatePrev()
		return m, nil

	case key.Matches(msg, keys.Reload):
		return m, m.execFetch(m.ctrl.Reload())

	case key.Matches(msg, keys.Like):
		return m, m.execLike(m.ctrl.ToggleLike())

	case key.Matches(msg, keys.Filter):
		if m.ctrl.Buffer().Len() == 0 {
			return m, nil
		}
		m.mode = modeFilter
		m.filter = components.NewFilter(m.theme, m.ctrl.Buffer().Records())
		return m, nil

	case key.Matches(msg, keys.Admin):
		if _, ok := m.gateway.CurrentSession(); !ok {
			return m, statusCmd("请先登录 (s)", true)
		}
		m.mode = modeAdmin
		m.adminForm = components.NewAdminForm(m.theme)
		m.adminForm.SetWidth(min(m.width-8, 72))
		return m, nil

	case key.Matches(msg, keys.SignIn):
		if _, ok := m.gateway.CurrentSession(); ok {
			return m, statusCmd("已登录", false)
		}
		m.mode = modeSignIn
		m.signinForm = components.NewSignInForm(m.theme, m.cfg.Supabase.Email)
		return m, nil

	case key.Matches(msg, keys.SignOut):
		if _, ok := m.gateway.CurrentSession(); !ok {
			return m, nil
		}
		return m, SignOutCmd(m.gateway)

	case key.Matches(msg, keys.Theme):
		return m.toggleTheme()

	case key.Matches(msg, keys.Escape):
		m.ctrl.Dismiss()
		return m, nil
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeViewing
		return m, nil

	case msg.Type == tea.KeyUp:
		m.filter.MoveSelection(-1)
		return m, nil

	case msg.Type == tea.KeyDown:
		m.filter.MoveSelection(1)
		return m, nil

	case msg.Type == tea.KeyEnter:
		idx := m.filter.SelectedIndex()
		m.mode = modeViewing
		if idx < 0 {
			return m, nil
		}
		return m, m.execFetch(m.ctrl.Seek(idx))
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m Model) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.saving {
			return m, nil
		}
		m.mode = modeViewing
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.adminForm.CycleFocus(msg.String() == "shift+tab")
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.saving {
			return m, nil
		}
		session, ok := m.gateway.CurrentSession()
		if !ok {
			m.mode = modeViewing
			return m, statusCmd("登录已过期，请重新登录", true)
		}
		title, author, block := m.adminForm.Values()
		m.saving = true
		return m, IngestCmd(m.ingest, title, author, block, session.UserID)
	}

	var cmd tea.Cmd
	m.adminForm, cmd = m.adminForm.Update(msg)
	return m, cmd
}

func (m Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.signinForm.Busy() {
			return m, nil
		}
		m.mode = modeViewing
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.signinForm.CycleFocus()
		return m, nil

	case msg.Type == tea.KeyEnter:
		if m.signinForm.Busy() {
			return m, nil
		}
		email, password := m.signinForm.Values()
		if email == "" || password == "" {
			return m, nil
		}
		m.signinForm.SetBusy(true)
		return m, SignInCmd(m.gateway, email, password)
	}

	var cmd tea.Cmd
	m.signinForm, cmd = m.signinForm.Update(msg)
	return m, cmd
}

func (m Model) handleSignInResult(msg SignInResultMsg) (tea.Model, tea.Cmd) {
	m.signinForm.SetBusy(false)
	if msg.Err != nil {
		m.signinForm.ClearPassword()
		return m, statusCmd("登录失败: "+msg.Err.Error(), true)
	}

	m.mode = modeViewing
	m.cfg.Supabase.Email = msg.Session.Email
	if err := config.SaveConfig(m.cfg); err != nil {
		m.logger.Warn("failed to persist config", "error", err)
	}

	// Owner sessions render the owner's own like flags. Switching the
	// mode in place keeps the generation monotonic, so any fetch or like
	// result from the anonymous session is discarded on arrival.
	m.ctrl.SetMode(feed.LikeOwner)
	return m, tea.Batch(
		m.execFetch(m.ctrl.Reload()),
		statusCmd("已登录 "+msg.Session.Email, false),
	)
}

func (m Model) handleSignOutResult(msg SignOutResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("sign-out revocation failed", "error", msg.Err)
	}
	m.ctrl.SetMode(feed.LikeAnonymous)
	return m, tea.Batch(
		m.execFetch(m.ctrl.Reload()),
		statusCmd("已退出登录", false),
	)
}

func (m Model) handleIngestResult(msg IngestResultMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.Err != nil {
		return m, statusCmd("保存失败: "+msg.Err.Error(), true)
	}
	m.adminForm.Reset()
	m.mode = modeViewing
	return m, tea.Batch(
		m.execFetch(m.ctrl.Reload()),
		statusCmd(fmt.Sprintf("已保存 %d 条句子", msg.Count), false),
	)
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	if m.theme.Name == "dark" {
		m.theme = styles.Light()
	} else {
		m.theme = styles.Dark()
	}
	m.spinner.Style = m.theme.Accent
	m.adminForm.SetTheme(m.theme)
	m.signinForm.SetTheme(m.theme)
	m.filter.SetTheme(m.theme)
	if err := m.store.SaveTheme(m.theme.Name); err != nil {
		m.logger.Warn("failed to persist theme", "error", err)
	}
	return m, nil
}

// execLike dispatches a like request by mode.
func (m Model) execLike(req *feed.LikeRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	if req.Mode == feed.LikeOwner {
		return OwnerLikeCmd(m.gateway, req)
	}
	return LikeCmd(m.gateway, req)
}

func statusCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: message, IsError: isError}
	}
}
