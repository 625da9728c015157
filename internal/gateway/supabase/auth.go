package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"shuzhai/internal/domain"
)

// Session describes the signed-in owner, if any.
type Session struct {
	UserID string
	Email  string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type authError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// SignIn exchanges the owner's email and password for an access token
// via GoTrue's password grant. Subsequent requests are made with the
// user's JWT instead of the anon key.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return Session{}, domain.ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return Session{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("sign-in request failed", "error", err)
		return Session{}, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var authErr authError
		if json.Unmarshal(body, &authErr) == nil {
			if msg := authErr.firstMessage(); msg != "" {
				c.logger.Warn("sign-in rejected", "status", resp.StatusCode, "msg", msg)
				return Session{}, fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
			}
		}
		return Session{}, domain.ErrAuthFailed
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return Session{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if token.AccessToken == "" {
		return Session{}, domain.ErrAuthFailed
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	c.userID = token.User.ID
	c.email = token.User.Email
	c.mu.Unlock()

	c.logger.Info("signed in", "email", token.User.Email)
	return Session{UserID: token.User.ID, Email: token.User.Email}, nil
}

func (e authError) firstMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorDescription
}

// SignOut revokes the current session and drops back to anonymous
// access. The local token is cleared even if the revocation call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.accessToken
	c.accessToken = ""
	c.userID = ""
	c.email = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("sign-out request failed", "error", err)
		return domain.ErrServerOffline
	}
	resp.Body.Close()

	c.logger.Info("signed out")
	return nil
}

// CurrentSession returns the signed-in session, or false when the
// client is anonymous.
func (c *Client) CurrentSession() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken == "" {
		return Session{}, false
	}
	return Session{UserID: c.userID, Email: c.email}, true
}
