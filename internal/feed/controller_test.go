package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuzhai/internal/domain"
	"shuzhai/internal/log"
)

// memLedger is an in-memory LikeLedger for tests.
type memLedger struct {
	likes map[string]bool
	fail  bool
}

func newMemLedger() *memLedger {
	return &memLedger{likes: make(map[string]bool)}
}

func (l *memLedger) IsLiked(memoID string) bool {
	return l.likes[memoID]
}

func (l *memLedger) SetLiked(memoID string, liked bool) error {
	if l.fail {
		return errors.New("ledger write failed")
	}
	if liked {
		l.likes[memoID] = true
	} else {
		delete(l.likes, memoID)
	}
	return nil
}

func newTestController(mode LikeMode) (*Controller, *memLedger) {
	ledger := newMemLedger()
	return NewController(ledger, mode, log.NullLogger()), ledger
}

// loadFeed reloads the controller with a fixed batch and returns any
// chained prefetch request.
func loadFeed(t *testing.T, c *Controller, batch []domain.Memo) *FetchRequest {
	t.Helper()
	req := c.Reload()
	require.NotNil(t, req)
	require.True(t, req.Replace)
	require.Equal(t, BatchSize, req.Limit)
	return c.ApplyFetch(req, batch, nil)
}

func TestReloadInstallsBatch(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)

	assert.Equal(t, StateIdle, c.State())
	next := loadFeed(t, c, makeMemos(10, "m"))
	assert.Nil(t, next)

	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 10, c.Buffer().Len())
	assert.Equal(t, 0, c.Buffer().Cursor())
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "m-0", cur.ID)
}

func TestReloadWithZeroRecordsIsEmpty(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)

	next := loadFeed(t, c, nil)
	assert.Nil(t, next)
	assert.Equal(t, StateEmpty, c.State())
	_, ok := c.Current()
	assert.False(t, ok)

	// Navigation is inert; reload is the only exit.
	assert.Nil(t, c.NavigateNext())
	c.NavigatePrev()
	assert.Equal(t, StateEmpty, c.State())
}

func TestReloadFailureClearsBuffer(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.Reload()
	assert.Equal(t, StateLoading, c.State())
	c.ApplyFetch(req, nil, domain.ErrServerOffline)

	assert.Equal(t, StateError, c.State())
	assert.ErrorIs(t, c.Err(), domain.ErrServerOffline)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestNavigatePrevIdempotentAtZero(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	for i := 0; i < 5; i++ {
		c.NavigatePrev()
	}
	assert.Equal(t, 0, c.Buffer().Cursor())
	assert.Equal(t, StateReady, c.State())
}

func TestPrefetchTriggersAtThreshold(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	// Cursor 1..6: remaining > 2, no prefetch.
	for i := 0; i < 6; i++ {
		assert.Nil(t, c.NavigateNext(), "unexpected prefetch at cursor %d", i+1)
	}

	// Cursor 7: remaining = 2, exactly one prefetch.
	req := c.NavigateNext()
	require.NotNil(t, req)
	assert.False(t, req.Replace)
	assert.False(t, req.AdvanceAfterAppend)
	assert.Equal(t, StatePrefetching, c.State())

	// Further navigation while in flight issues nothing new.
	assert.Nil(t, c.NavigateNext())
	assert.Nil(t, c.NavigateNext())
	assert.Equal(t, 9, c.Buffer().Cursor())
}

func TestNavigateScenarioWithPrefetch(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	var prefetch *FetchRequest
	for i := 0; i < 9; i++ {
		if req := c.NavigateNext(); req != nil {
			require.Nil(t, prefetch, "expected a single prefetch")
			prefetch = req
		}
	}
	require.NotNil(t, prefetch)
	assert.Equal(t, 9, c.Buffer().Cursor())

	// Prefetch returns 5 more records.
	next := c.ApplyFetch(prefetch, makeMemos(5, "p"), nil)
	assert.Nil(t, next)
	assert.Equal(t, 15, c.Buffer().Len())
	assert.Equal(t, 9, c.Buffer().Cursor())

	// The next navigation succeeds without another fetch.
	assert.Nil(t, c.NavigateNext())
	assert.Equal(t, 10, c.Buffer().Cursor())
}

func TestNavigateNextAtTailAdvancesAfterAppend(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	next := loadFeed(t, c, makeMemos(2, "m"))
	// A two-record buffer is already inside the threshold; drain the
	// triggered prefetches with empty results so nothing is in flight.
	require.NotNil(t, next)
	c.ApplyFetch(next, nil, nil)

	next = c.NavigateNext()
	require.NotNil(t, next, "moving to the tail re-triggers a prefetch")
	assert.Equal(t, 1, c.Buffer().Cursor())
	c.ApplyFetch(next, nil, nil)

	// At the tail with nothing in flight, "next" fetches and advances
	// as soon as the append lands.
	req := c.NavigateNext()
	require.NotNil(t, req)
	assert.True(t, req.AdvanceAfterAppend)
	assert.Equal(t, 1, c.Buffer().Cursor(), "cursor holds until data exists")

	c.ApplyFetch(req, makeMemos(3, "p"), nil)
	assert.Equal(t, 2, c.Buffer().Cursor(), "pending next is satisfied by the append")
	assert.Equal(t, 5, c.Buffer().Len())
}

func TestPrefetchFailureKeepsBuffer(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	for i := 0; i < 7; i++ {
		c.NavigateNext()
	}
	req := c.NavigateNext()
	require.NotNil(t, req)

	c.ApplyFetch(req, nil, domain.ErrServerOffline)

	assert.Equal(t, StateError, c.State())
	cur, ok := c.Current()
	require.True(t, ok, "current record stays visible on soft error")
	assert.Equal(t, "m-8", cur.ID)
	assert.Equal(t, 10, c.Buffer().Len())

	c.Dismiss()
	assert.Equal(t, StateReady, c.State())
}

func TestStaleFetchDiscardedAfterReload(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	for i := 0; i < 7; i++ {
		c.NavigateNext()
	}
	stale := c.NavigateNext()
	require.NotNil(t, stale)

	// A reload supersedes the in-flight prefetch.
	reload := c.Reload()
	c.ApplyFetch(reload, makeMemos(4, "r"), nil)
	assert.Equal(t, 4, c.Buffer().Len())

	// The stale prefetch result must not resurrect discarded data.
	c.ApplyFetch(stale, makeMemos(10, "zombie"), nil)
	assert.Equal(t, 4, c.Buffer().Len())
	assert.Equal(t, 0, c.Buffer().Cursor())
}

func TestStaleFetchDiscardedAfterModeSwitch(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	for i := 0; i < 7; i++ {
		c.NavigateNext()
	}
	stale := c.NavigateNext()
	require.NotNil(t, stale)

	// Sign-in: the mode switches and the feed reloads while the
	// anonymous prefetch is still in flight.
	c.SetMode(LikeOwner)
	reload := c.Reload()
	c.ApplyFetch(reload, makeMemos(4, "owner"), nil)
	assert.Equal(t, 4, c.Buffer().Len())

	// The pre-sign-in batch must not land in the owner buffer.
	c.ApplyFetch(stale, makeMemos(10, "zombie"), nil)
	assert.Equal(t, 4, c.Buffer().Len())
	cur, _ := c.Current()
	assert.Equal(t, "owner-0", cur.ID)
	assert.Equal(t, StateReady, c.State())
}

func TestStaleLikeResultAfterModeSwitch(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)

	c.SetMode(LikeOwner)
	reload := c.Reload()
	c.ApplyFetch(reload, makeMemos(4, "owner"), nil)

	// The anonymous result resolves after sign-in: the ledger still
	// reconciles, but the count at the reused index stays untouched.
	c.ApplyLike(req, 99, nil)
	cur, _ := c.Current()
	assert.Equal(t, "owner-0", cur.ID)
	assert.Equal(t, 3, cur.LikeCount)
	assert.True(t, ledger.IsLiked("m-0"))

	// The mode switch also releases the old toggle gate.
	assert.False(t, c.LikeBusy())
}

func TestEmptyPrefetchDoesNotLoop(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	next := loadFeed(t, c, makeMemos(3, "m"))
	require.NotNil(t, next, "3-record buffer is inside the threshold")

	// An exhausted backend returns nothing; no immediate re-issue.
	chained := c.ApplyFetch(next, nil, nil)
	assert.Nil(t, chained)
	assert.Equal(t, StateReady, c.State())
}

func TestAnonymousLikeRoundTrip(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	// Like: optimistic +1 and ledger entry appear before the RPC runs.
	req := c.ToggleLike()
	require.NotNil(t, req)
	assert.Equal(t, 1, req.Delta)
	assert.True(t, req.TargetLiked)
	cur, _ := c.Current()
	assert.Equal(t, 4, cur.LikeCount)
	assert.True(t, ledger.IsLiked("m-0"))

	c.ApplyLike(req, 4, nil)
	cur, _ = c.Current()
	assert.Equal(t, 4, cur.LikeCount)

	// Unlike: back to the original count, ledger entry removed.
	req = c.ToggleLike()
	require.NotNil(t, req)
	assert.Equal(t, -1, req.Delta)
	c.ApplyLike(req, 3, nil)

	cur, _ = c.Current()
	assert.Equal(t, 3, cur.LikeCount)
	assert.False(t, ledger.IsLiked("m-0"))
	_, present := ledger.likes["m-0"]
	assert.False(t, present, "unlike removes the entry instead of storing false")
}

func TestAnonymousLikeReconcilesServerCount(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)

	// Concurrent visitors pushed the count past the optimistic value.
	c.ApplyLike(req, 17, nil)
	cur, _ := c.Current()
	assert.Equal(t, 17, cur.LikeCount)
}

func TestAnonymousLikeRollbackOnFailure(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)
	assert.True(t, ledger.IsLiked("m-0"))

	c.ApplyLike(req, 0, domain.ErrServerOffline)

	cur, _ := c.Current()
	assert.Equal(t, 3, cur.LikeCount, "count reverts to the pre-toggle value")
	assert.False(t, ledger.IsLiked("m-0"), "optimistic ledger entry is removed")
	assert.ErrorIs(t, c.Err(), domain.ErrServerOffline)
	assert.Equal(t, StateError, c.State())
	_, ok := c.Current()
	assert.True(t, ok, "record stays visible alongside the error")
}

func TestAnonymousUnlikeClampsAtZero(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	batch := makeMemos(1, "m")
	batch[0].LikeCount = 0
	req := c.Reload()
	c.ApplyFetch(req, batch, nil)

	// Pre-existing ledger entry with a zero server count.
	ledger.SetLiked("m-0", true)

	like := c.ToggleLike()
	require.NotNil(t, like)
	assert.Equal(t, -1, like.Delta)
	cur, _ := c.Current()
	assert.Equal(t, 0, cur.LikeCount, "optimistic decrement clamps at zero")
}

func TestLikeBusyBlocksDoubleSubmission(t *testing.T) {
	c, _ := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)
	assert.True(t, c.LikeBusy())
	assert.Nil(t, c.ToggleLike(), "second toggle is blocked while in flight")

	// Toggles on a different record are independent.
	c.NavigateNext()
	other := c.ToggleLike()
	require.NotNil(t, other)
	assert.Equal(t, "m-1", other.MemoID)

	c.ApplyLike(req, 4, nil)
	c.ApplyLike(other, 4, nil)
	assert.False(t, c.LikeBusy())
	assert.NotNil(t, c.ToggleLike())
}

func TestOwnerLikeIsNotOptimistic(t *testing.T) {
	c, _ := newTestController(LikeOwner)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)
	assert.Equal(t, LikeOwner, req.Mode)

	// No observable mutation before the remote call resolves.
	cur, _ := c.Current()
	assert.Equal(t, 3, cur.LikeCount)
	assert.False(t, cur.LikedByOwner)

	c.ApplyOwnerLike(req, domain.OwnerLikeState{LikedByOwner: true, LikeCount: 4}, nil)
	cur, _ = c.Current()
	assert.Equal(t, 4, cur.LikeCount)
	assert.True(t, cur.LikedByOwner)
	assert.True(t, c.IsLiked(cur))
}

func TestOwnerLikeFailureLeavesRecordUntouched(t *testing.T) {
	c, _ := newTestController(LikeOwner)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)
	c.ApplyOwnerLike(req, domain.OwnerLikeState{}, domain.ErrAuthFailed)

	cur, _ := c.Current()
	assert.Equal(t, 3, cur.LikeCount)
	assert.False(t, cur.LikedByOwner)
	assert.ErrorIs(t, c.Err(), domain.ErrAuthFailed)
}

func TestLikeDisabledModeIgnoresToggle(t *testing.T) {
	c, _ := newTestController(LikeDisabled)
	loadFeed(t, c, makeMemos(10, "m"))

	assert.Nil(t, c.ToggleLike())
	cur, _ := c.Current()
	assert.False(t, c.IsLiked(cur))
}

func TestStaleLikeResultAfterReload(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(10, "m"))

	req := c.ToggleLike()
	require.NotNil(t, req)

	// The buffer is replaced while the like RPC is in flight.
	reload := c.Reload()
	c.ApplyFetch(reload, makeMemos(4, "r"), nil)

	// A failed like still reverts the ledger, which outlives reloads,
	// but must not touch the new buffer.
	c.ApplyLike(req, 0, domain.ErrServerOffline)
	assert.False(t, ledger.IsLiked("m-0"))
	cur, _ := c.Current()
	assert.Equal(t, "r-0", cur.ID)
	assert.Equal(t, 3, cur.LikeCount)
}

func TestIsLikedReflectsLedgerInAnonymousMode(t *testing.T) {
	c, ledger := newTestController(LikeAnonymous)
	loadFeed(t, c, makeMemos(2, "m"))

	cur, _ := c.Current()
	assert.False(t, c.IsLiked(cur))
	ledger.SetLiked(cur.ID, true)
	assert.True(t, c.IsLiked(cur))
}
