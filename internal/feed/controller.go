package feed

import (
	"log/slog"

	"shuzhai/internal/domain"
)

const (
	// BatchSize is the number of memos requested per random draw.
	BatchSize = 10

	// PrefetchThreshold is the remaining-after-cursor count at or below
	// which a background batch fetch is issued.
	PrefetchThreshold = 2
)

// State describes the controller's observable fetch state.
type State int

const (
	StateIdle        State = iota // No load attempted yet
	StateLoading                  // Initial or reload fetch in flight
	StateReady                    // Current record available, nothing in flight
	StatePrefetching              // Current record available, background fetch in flight
	StateEmpty                    // Fetch completed with zero records
	StateError                    // Last fetch or like failed; soft when a record is still visible
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePrefetching:
		return "prefetching"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// LikeMode selects how like toggles are accounted.
type LikeMode int

const (
	LikeDisabled  LikeMode = iota // Toggles are ignored
	LikeAnonymous                 // Optimistic local ledger + delta RPC
	LikeOwner                     // Non-optimistic owner toggle RPC
)

// FetchRequest describes a batch fetch the caller must execute against
// the gateway, feeding the result back through ApplyFetch. Gen stamps the
// buffer generation the request belongs to; stale results are discarded.
type FetchRequest struct {
	Gen                int
	Limit              int
	Replace            bool // Reload: result replaces the buffer outright
	AdvanceAfterAppend bool // Satisfy a pending "next" as soon as data exists
}

// LikeRequest describes a like toggle the caller must execute, feeding
// the result back through ApplyLike or ApplyOwnerLike.
type LikeRequest struct {
	Gen         int
	MemoID      string
	Index       int
	Mode        LikeMode
	TargetLiked bool // Anonymous mode: desired ledger state
	Delta       int  // Anonymous mode: +1 or -1
	prevCount   int  // Pre-toggle count for rollback
}

// Controller orchestrates the feed buffer against the remote gateway and
// the local like ledger. It performs no I/O itself: navigation and apply
// methods return request descriptors for the caller to execute, which
// keeps the state machine single-threaded and deterministic. All methods
// must be called from one goroutine.
type Controller struct {
	buf    Buffer
	ledger domain.LikeLedger
	mode   LikeMode
	logger *slog.Logger

	gen         int
	started     bool
	loading     bool
	prefetching bool
	lastErr     error
	likeBusy    map[string]bool
}

// NewController creates a controller in the given like mode. The ledger
// may be nil when mode is not LikeAnonymous.
func NewController(ledger domain.LikeLedger, mode LikeMode, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		ledger:   ledger,
		mode:     mode,
		logger:   logger,
		likeBusy: make(map[string]bool),
	}
}

// State returns the controller's current observable state.
func (c *Controller) State() State {
	switch {
	case c.loading:
		return StateLoading
	case c.lastErr != nil:
		return StateError
	case !c.started:
		return StateIdle
	case c.buf.Len() == 0:
		return StateEmpty
	case c.prefetching:
		return StatePrefetching
	default:
		return StateReady
	}
}

// Err returns the last surfaced error, or nil.
func (c *Controller) Err() error {
	return c.lastErr
}

// Dismiss clears the surfaced error without touching the buffer.
func (c *Controller) Dismiss() {
	c.lastErr = nil
}

// Current returns the record at the cursor. During a soft error the
// last-known-good record remains available.
func (c *Controller) Current() (domain.Memo, bool) {
	return c.buf.Current()
}

// Buffer exposes the underlying buffer for read-only inspection.
func (c *Controller) Buffer() *Buffer {
	return &c.buf
}

// Mode returns the controller's like mode.
func (c *Controller) Mode() LikeMode {
	return c.mode
}

// IsLiked reports the liked state of a memo as rendered: the owner flag
// in owner mode, the local ledger in anonymous mode.
func (c *Controller) IsLiked(m domain.Memo) bool {
	switch c.mode {
	case LikeOwner:
		return m.LikedByOwner
	case LikeAnonymous:
		return c.ledger != nil && c.ledger.IsLiked(m.ID)
	default:
		return false
	}
}

// SetMode switches the like accounting mode, as on sign-in or sign-out.
// The generation is bumped so results stamped before the switch are
// discarded, and in-flight toggle gates from the old session are
// released. Callers follow with Reload to repopulate under the new mode.
func (c *Controller) SetMode(mode LikeMode) {
	c.mode = mode
	c.gen++
	c.likeBusy = make(map[string]bool)
}

// LikeBusy reports whether a toggle is in flight for the current record.
func (c *Controller) LikeBusy() bool {
	cur, ok := c.buf.Current()
	return ok && c.likeBusy[cur.ID]
}

// Reload begins a full reload. The previous generation is invalidated,
// so in-flight fetch results will be discarded on arrival.
func (c *Controller) Reload() *FetchRequest {
	c.gen++
	c.loading = true
	c.prefetching = false
	c.lastErr = nil
	return &FetchRequest{Gen: c.gen, Limit: BatchSize, Replace: true}
}

// NavigateNext advances the cursor. At the tail it issues a fetch that
// advances as soon as new data is appended, unless one is already in
// flight. Returns the fetch to execute, or nil.
func (c *Controller) NavigateNext() *FetchRequest {
	if c.loading {
		return nil
	}
	if c.buf.Advance() {
		return c.maybePrefetch()
	}
	if c.prefetching || c.buf.Len() == 0 {
		return nil
	}
	c.prefetching = true
	return &FetchRequest{Gen: c.gen, Limit: BatchSize, AdvanceAfterAppend: true}
}

// Seek jumps the cursor to a buffered record, prefetching when the
// target lands near the tail.
func (c *Controller) Seek(index int) *FetchRequest {
	if c.loading || !c.buf.Seek(index) {
		return nil
	}
	return c.maybePrefetch()
}

// NavigatePrev retreats the cursor; a no-op at index 0.
func (c *Controller) NavigatePrev() {
	if c.loading {
		return
	}
	c.buf.Retreat()
}

// ApplyFetch installs a fetch result. Stale results (from before the
// most recent Reload) are discarded so a superseded fetch can never
// resurrect a replaced buffer. A follow-up prefetch request is returned
// when the cursor is close enough to the tail.
func (c *Controller) ApplyFetch(req *FetchRequest, batch []domain.Memo, err error) *FetchRequest {
	if req == nil {
		return nil
	}
	if req.Gen != c.gen {
		c.logger.Debug("discarding stale fetch result", "gen", req.Gen, "current", c.gen)
		return nil
	}

	if req.Replace {
		c.loading = false
		c.started = true
		if err != nil {
			c.buf.Replace(nil)
			c.lastErr = err
			c.logger.Warn("reload failed", "error", err)
			return nil
		}
		c.buf.Replace(batch)
		c.lastErr = nil
		c.logger.Info("feed reloaded", "count", len(batch))
		return c.maybePrefetch()
	}

	c.prefetching = false
	if err != nil {
		// Soft failure: keep the buffer and cursor, surface a banner.
		c.lastErr = err
		c.logger.Warn("prefetch failed", "error", err)
		return nil
	}
	c.lastErr = nil
	c.buf.Append(batch)
	if req.AdvanceAfterAppend && len(batch) > 0 {
		c.buf.Advance()
	}
	c.logger.Debug("batch appended", "count", len(batch), "buffered", c.buf.Len())
	if len(batch) == 0 {
		return nil
	}
	return c.maybePrefetch()
}

// maybePrefetch issues a background fetch when the cursor is within
// PrefetchThreshold of the tail and no fetch is already in flight.
func (c *Controller) maybePrefetch() *FetchRequest {
	if c.loading || c.prefetching || c.buf.Len() == 0 {
		return nil
	}
	if c.buf.RemainingAfterCursor() > PrefetchThreshold {
		return nil
	}
	c.prefetching = true
	return &FetchRequest{Gen: c.gen, Limit: BatchSize}
}

// ToggleLike begins a like toggle for the current record. In anonymous
// mode the ledger and the buffered count are mutated optimistically
// before the returned request is executed; in owner mode nothing changes
// until the result is applied. Returns nil when there is no current
// record, likes are disabled, or a toggle for this record is in flight.
func (c *Controller) ToggleLike() *LikeRequest {
	cur, ok := c.buf.Current()
	if !ok || c.mode == LikeDisabled || c.likeBusy[cur.ID] {
		return nil
	}
	c.likeBusy[cur.ID] = true
	c.lastErr = nil

	req := &LikeRequest{
		Gen:       c.gen,
		MemoID:    cur.ID,
		Index:     c.buf.Cursor(),
		Mode:      c.mode,
		prevCount: cur.LikeCount,
	}
	if c.mode == LikeOwner {
		return req
	}

	req.TargetLiked = !c.ledger.IsLiked(cur.ID)
	req.Delta = -1
	if req.TargetLiked {
		req.Delta = 1
	}
	if err := c.ledger.SetLiked(cur.ID, req.TargetLiked); err != nil {
		c.logger.Warn("like ledger write failed", "memo", cur.ID, "error", err)
	}
	c.buf.UpdateAt(req.Index, func(m domain.Memo) domain.Memo {
		m.LikeCount = max(0, m.LikeCount+req.Delta)
		return m
	})
	return req
}

// ApplyLike finishes an anonymous like toggle. On success the buffered
// count is overwritten with the authoritative value; on failure both the
// ledger entry and the count are reverted to their pre-toggle values.
func (c *Controller) ApplyLike(req *LikeRequest, count int, err error) {
	if req == nil {
		return
	}
	delete(c.likeBusy, req.MemoID)

	if err != nil {
		if err := c.ledger.SetLiked(req.MemoID, !req.TargetLiked); err != nil {
			c.logger.Warn("like ledger rollback failed", "memo", req.MemoID, "error", err)
		}
		if req.Gen == c.gen {
			c.buf.UpdateAt(req.Index, func(m domain.Memo) domain.Memo {
				m.LikeCount = req.prevCount
				return m
			})
		}
		c.lastErr = err
		c.logger.Warn("like adjust failed, rolled back", "memo", req.MemoID, "error", err)
		return
	}
	if req.Gen != c.gen {
		return
	}
	c.buf.UpdateAt(req.Index, func(m domain.Memo) domain.Memo {
		m.LikeCount = count
		return m
	})
}

// ApplyOwnerLike finishes an owner like toggle with the authoritative
// state. There is no optimistic write to undo on failure.
func (c *Controller) ApplyOwnerLike(req *LikeRequest, state domain.OwnerLikeState, err error) {
	if req == nil {
		return
	}
	delete(c.likeBusy, req.MemoID)

	if err != nil {
		c.lastErr = err
		c.logger.Warn("owner like toggle failed", "memo", req.MemoID, "error", err)
		return
	}
	if req.Gen != c.gen {
		return
	}
	c.buf.UpdateAt(req.Index, func(m domain.Memo) domain.Memo {
		m.LikeCount = state.LikeCount
		m.LikedByOwner = state.LikedByOwner
		return m
	})
}
