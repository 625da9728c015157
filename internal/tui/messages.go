package tui

import (
	"shuzhai/internal/domain"
	"shuzhai/internal/feed"
	"shuzhai/internal/gateway/supabase"
)

// Message types for the TUI

// FetchResultMsg carries the result of a batch fetch back to the
// controller that requested it.
type FetchResultMsg struct {
	Req   *feed.FetchRequest
	Memos []domain.Memo
	Err   error
}

// LikeResultMsg carries the result of an anonymous like adjustment.
type LikeResultMsg struct {
	Req   *feed.LikeRequest
	Count int
	Err   error
}

// OwnerLikeResultMsg carries the result of an owner like toggle.
type OwnerLikeResultMsg struct {
	Req   *feed.LikeRequest
	State domain.OwnerLikeState
	Err   error
}

// SignInResultMsg signals a completed sign-in attempt.
type SignInResultMsg struct {
	Session supabase.Session
	Err     error
}

// SignOutResultMsg signals a completed sign-out.
type SignOutResultMsg struct {
	Err error
}

// IngestResultMsg signals a completed excerpt submission.
type IngestResultMsg struct {
	Count int
	Err   error
}

// StatusMsg sets a transient status line message.
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}
