package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"shuzhai/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "shuzhai/1.0"
)

// Client implements domain.MemoGateway against a hosted Supabase
// project: database RPCs and table writes go through PostgREST under
// /rest/v1, authentication through GoTrue under /auth/v1.
type Client struct {
	baseURL    string
	anonKey    string
	clientID   string // Per-run id attached to requests for log correlation
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.RWMutex
	accessToken string
	userID      string
	email       string
}

// NewClient creates a new Supabase API client.
func NewClient(baseURL, anonKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		anonKey:  anonKey,
		clientID: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// bearer returns the token for the Authorization header: the user's JWT
// when signed in, the project anon key otherwise.
func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.anonKey
}

// doRequest performs an authenticated HTTP request and returns the body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}, prefer string) ([]byte, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return nil, domain.ErrNotConfigured
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Client-Info", c.clientID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	c.logger.Debug("supabase request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase request failed", "path", path, "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrAuthFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("supabase request error", "path", path, "status", resp.StatusCode, "body", string(respBody))
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("request failed (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return respBody, nil
}

// rpc calls a PostgREST database function and decodes the row set.
func (c *Client) rpc(ctx context.Context, fn string, args interface{}, dest interface{}) error {
	body, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/rpc/"+fn, nil, args, "")
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "fn", fn, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchRandomMemos returns up to limit randomly sampled memos.
func (c *Client) FetchRandomMemos(ctx context.Context, limit int) ([]domain.Memo, error) {
	var rows []memoRow
	err := c.rpc(ctx, "random_memos_with_count", map[string]interface{}{
		"p_limit": limit,
	}, &rows)
	if err != nil {
		return nil, err
	}
	return mapMemos(rows), nil
}

// AdjustLike applies delta to a memo's like counter server-side and
// returns the new authoritative count.
func (c *Client) AdjustLike(ctx context.Context, memoID string, delta int) (int, error) {
	var rows []likeCountRow
	err := c.rpc(ctx, "adjust_memo_like", map[string]interface{}{
		"p_memo_id": memoID,
		"p_delta":   delta,
	}, &rows)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].LikeCount, nil
}

// ToggleOwnerLike flips the owner's like flag for a memo.
func (c *Client) ToggleOwnerLike(ctx context.Context, memoID string) (domain.OwnerLikeState, error) {
	var rows []ownerLikeRow
	err := c.rpc(ctx, "owner_toggle_memo_like", map[string]interface{}{
		"p_memo_id": memoID,
	}, &rows)
	if err != nil {
		return domain.OwnerLikeState{}, err
	}
	if len(rows) == 0 {
		return domain.OwnerLikeState{}, nil
	}
	return domain.OwnerLikeState{
		LikedByOwner: rows[0].LikedByOwner,
		LikeCount:    rows[0].LikeCount,
	}, nil
}

// CreateBookIfNeeded upserts a book keyed by (owner, title, author) and
// returns its id.
func (c *Client) CreateBookIfNeeded(ctx context.Context, title, author, ownerID string) (string, error) {
	query := url.Values{}
	query.Set("on_conflict", "owner_id,title,author")
	query.Set("select", "id")

	payload := []bookInsert{{Title: title, Author: author, OwnerID: ownerID}}
	body, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/books", query, payload,
		"resolution=merge-duplicates,return=representation")
	if err != nil {
		return "", err
	}

	var rows []bookRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("book upsert returned no id")
	}
	return rows[0].ID, nil
}

// InsertMemos bulk-inserts excerpt rows. The backend reports Count 0
// whenever any row fails; per-row success is not observable from the
// response shape, so partial acceptance is never reported.
func (c *Client) InsertMemos(ctx context.Context, bookID string, contents []string, ownerID string) (domain.InsertResult, error) {
	if len(contents) == 0 {
		return domain.InsertResult{}, nil
	}

	rows := make([]memoInsert, len(contents))
	for i, content := range contents {
		rows[i] = memoInsert{BookID: bookID, Content: content, OwnerID: ownerID}
	}

	_, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/memos", nil, rows, "return=minimal")
	if err != nil {
		return domain.InsertResult{Count: 0, Errs: []error{err}}, nil
	}
	return domain.InsertResult{Count: len(rows)}, nil
}
