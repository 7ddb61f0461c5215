// Package tracker owns the single lookup slot a presentation layer observes:
// a status, the latest results and the matched position. Submissions are
// fire-and-forget; completions overwrite the slot whole.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/rank"
)

// Policy decides which completion is shown when lookups overlap.
type Policy int

const (
	// ArrivalOrder applies every completion as it arrives, so the lookup that
	// finishes last wins even if it was submitted first.
	ArrivalOrder Policy = iota

	// IssueOrder tags each submission with a monotonically increasing
	// sequence and discards completions that are not the latest submission.
	IssueOrder
)

// ParsePolicy maps "arrival" and "issue" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "arrival", "":
		return ArrivalOrder, nil
	case "issue":
		return IssueOrder, nil
	}
	return ArrivalOrder, fmt.Errorf("tracker: unknown ordering policy %q", s)
}

func (p Policy) String() string {
	if p == IssueOrder {
		return "issue"
	}
	return "arrival"
}

// Looker runs a single rank lookup. rank.Engine implements it.
type Looker interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*models.RankLookupResult, error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy sets the ordering policy. Default: ArrivalOrder.
func WithPolicy(p Policy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithTimeout bounds each lookup. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.timeout = d }
}

// WithCompletionHook registers fn to receive every state a completion
// writes into the slot. Discarded completions are not reported.
func WithCompletionHook(fn func(models.LookupState)) Option {
	return func(t *Tracker) { t.onComplete = fn }
}

// Tracker is safe for concurrent use.
type Tracker struct {
	looker     Looker
	policy     Policy
	timeout    time.Duration
	onComplete func(models.LookupState)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	seq    uint64
	state  models.LookupState
	closed bool
}

// New creates an idle Tracker.
func New(looker Looker, opts ...Option) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		looker:  looker,
		policy:  ArrivalOrder,
		timeout: 60 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
		state: models.LookupState{
			Status:    models.StatusIdle,
			Results:   []models.OrganicResult{},
			UpdatedAt: time.Now(),
		},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// ErrClosed is returned by Submit once Close has been called.
var ErrClosed = models.NewLookupError(models.ErrCodeNotFound, "session closed", nil)

// Submit starts a lookup and returns its sequence number without waiting for
// it. The slot enters Loading immediately. Input errors (MISSING_INPUT,
// MALFORMED_WEBSITE) are detected before any request: the slot moves straight
// to Failed and the error is also returned. After Close, Submit returns
// ErrClosed and leaves the slot untouched.
func (t *Tracker) Submit(req models.LookupRequest) (uint64, error) {
	t.mu.Lock()
	if t.closed {
		seq := t.seq
		t.mu.Unlock()
		return seq, ErrClosed
	}
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	if _, err := rank.Validate(req); err != nil {
		metrics.RecordLookup(rank.Outcome(err), nil)
		t.complete(seq, req, nil, err)
		return seq, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return seq, ErrClosed
	}
	// A later submission may already own the slot.
	if t.seq == seq {
		t.state = models.LookupState{
			Status:      models.StatusLoading,
			Sequence:    seq,
			Query:       req.Query,
			CountryCode: req.CountryCode,
			Results:     []models.OrganicResult{},
			UpdatedAt:   time.Now(),
		}
	}
	// Add under mu so Close never starts Wait ahead of a launch it allowed.
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
		defer cancel()

		res, err := t.looker.Lookup(ctx, req)
		t.complete(seq, req, res, err)
	}()
	return seq, nil
}

// complete writes a finished lookup into the slot, subject to the policy.
func (t *Tracker) complete(seq uint64, req models.LookupRequest, res *models.RankLookupResult, err error) {
	t.mu.Lock()
	if t.policy == IssueOrder && seq != t.seq {
		latest := t.seq
		t.mu.Unlock()
		metrics.StaleLookups.Inc()
		slog.Debug("discarding stale lookup", "sequence", seq, "latest", latest)
		return
	}

	next := models.LookupState{
		Sequence:    seq,
		Query:       req.Query,
		CountryCode: req.CountryCode,
		Results:     []models.OrganicResult{},
		UpdatedAt:   time.Now(),
	}
	if err != nil {
		le := models.AsLookupError(err)
		next.Status = models.StatusFailed
		next.ErrorCode = le.Code
		next.ErrorMessage = le.Message
	} else {
		next.Status = models.StatusSucceeded
		next.TargetHost = res.TargetHost
		next.Results = res.Results
		next.MatchedPosition = res.MatchedPosition
	}
	t.state = next
	t.mu.Unlock()

	if t.onComplete != nil {
		t.onComplete(next)
	}
}

// Snapshot returns the current slot.
func (t *Tracker) Snapshot() models.LookupState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Policy reports the ordering policy in use.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Wait blocks until every submitted lookup has completed.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Close cancels in-flight lookups and waits for them to finish. Cancelled
// lookups still complete into the slot as Failed. Later submissions are
// rejected with ErrClosed. Close is idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancel()
	t.wg.Wait()
}
