package domain

import "errors"

// Sentinel errors for gateway operations
var (
	// ErrServerOffline indicates the backend is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the request was rejected as unauthenticated
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotConfigured indicates no backend URL or key has been set up
	ErrNotConfigured = errors.New("backend is not configured")
)
