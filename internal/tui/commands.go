package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shuzhai/internal/domain"
	"shuzhai/internal/feed"
	"shuzhai/internal/gateway/supabase"
	"shuzhai/internal/ingest"
)

// Command factories for async gateway operations

const (
	fetchTimeout = 30 * time.Second
	likeTimeout  = 10 * time.Second
	authTimeout  = 15 * time.Second
	saveTimeout  = 30 * time.Second

	statusLinger = 4 * time.Second
)

// FetchCmd executes a batch fetch described by the controller.
func FetchCmd(gateway domain.MemoGateway, req *feed.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		memos, err := gateway.FetchRandomMemos(ctx, req.Limit)
		return FetchResultMsg{Req: req, Memos: memos, Err: err}
	}
}

// LikeCmd executes an anonymous like adjustment.
func LikeCmd(gateway domain.MemoGateway, req *feed.LikeRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), likeTimeout)
		defer cancel()

		count, err := gateway.AdjustLike(ctx, req.MemoID, req.Delta)
		return LikeResultMsg{Req: req, Count: count, Err: err}
	}
}

// OwnerLikeCmd executes an owner like toggle.
func OwnerLikeCmd(gateway domain.MemoGateway, req *feed.LikeRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), likeTimeout)
		defer cancel()

		state, err := gateway.ToggleOwnerLike(ctx, req.MemoID)
		return OwnerLikeResultMsg{Req: req, State: state, Err: err}
	}
}

// SignInCmd exchanges credentials for an owner session.
func SignInCmd(gateway *supabase.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		session, err := gateway.SignIn(ctx, email, password)
		return SignInResultMsg{Session: session, Err: err}
	}
}

// SignOutCmd revokes the owner session.
func SignOutCmd(gateway *supabase.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		return SignOutResultMsg{Err: gateway.SignOut(ctx)}
	}
}

// IngestCmd submits the admin form's excerpts.
func IngestCmd(svc *ingest.Service, title, author, block, ownerID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		count, err := svc.Submit(ctx, title, author, block, ownerID)
		return IngestResultMsg{Count: count, Err: err}
	}
}

// ClearStatusCmd clears the status line after a short linger.
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(statusLinger, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
