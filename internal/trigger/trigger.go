// Package trigger watches one scheduled publication and asks the server to
// publish it once its time has come.
//
// A trigger is an untrusted observer: any number of them may watch the same
// record, in any process, with drifting clocks. None of that matters for
// correctness because the server transition is conditional and idempotent.
// The trigger only decides when to ask and how to report the answer.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/client"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/timezone"
)

const (
	DefaultTickInterval = time.Second
	DefaultCallTimeout  = 5 * time.Second
)

// Outcome is the result of the most recent publish check.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomePublished: this trigger's call transitioned the record.
	OutcomePublished
	// OutcomeSettledElsewhere: someone else published, archived, unscheduled
	// or deleted the record.
	OutcomeSettledElsewhere
	// OutcomeNotYetDue: the server clock has not reached the target yet.
	OutcomeNotYetDue
	// OutcomeUnknown: the call failed or timed out. The next tick retries.
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePublished:
		return "published"
	case OutcomeSettledElsewhere:
		return "settled_elsewhere"
	case OutcomeNotYetDue:
		return "not_yet_due"
	case OutcomeUnknown:
		return "unknown"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// API is the server surface a trigger needs. *client.Client implements it.
type API interface {
	PublishDue(ctx context.Context) ([]uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (client.Record, error)
}

// Options tune a Trigger. Callbacks run on the trigger goroutine, never
// concurrently with each other, and must not call Stop.
type Options struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	CallTimeout  time.Duration

	// OnFire runs exactly once, on the first tick at or after the target.
	OnFire func()
	// OnPublished runs once when this trigger's own call published the record.
	OnPublished func()
	// OnSettled runs once when the record was settled by someone else.
	// status is the record's current status, empty if it was deleted.
	OnSettled func(status domain.Status)
}

// Snapshot is a point-in-time view of a trigger.
type Snapshot struct {
	ID        uuid.UUID
	Target    time.Time
	Zone      string
	Display   string
	Remaining time.Duration
	Fired     bool
	InFlight  bool
	Settled   bool
	Outcome   Outcome
}

type checkResult struct {
	outcome Outcome
	status  domain.Status
	err     error
}

// Trigger watches one record. Create with New, then Start.
type Trigger struct {
	api     API
	id      uuid.UUID
	target  time.Time
	zone    string
	display string
	opts    Options
	log     *slog.Logger

	mu        sync.Mutex
	remaining time.Duration
	fired     bool
	inFlight  bool
	settled   bool
	outcome   Outcome
	started   bool

	results  chan checkResult
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a trigger for record id due at target. zone is the zone the
// author scheduled in, used for display only.
func New(api API, id uuid.UUID, target time.Time, zone string, opts Options, logger *slog.Logger) (*Trigger, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}
	if target.IsZero() {
		return nil, domain.NewValidationError("scheduled_at", "required")
	}
	display, err := timezone.FormatInZone(target, zone, true)
	if err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}

	return &Trigger{
		api:     api,
		id:      id,
		target:  target.UTC(),
		zone:    zone,
		display: display,
		opts:    opts,
		log:     logger.With("component", "trigger", "publication_id", id.String()),
		results: make(chan checkResult, 1),
		done:    make(chan struct{}),
	}, nil
}

// Start launches the tick loop. The loop ends when the record settles, when
// ctx is cancelled, or on Stop.
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return errors.New("trigger: already started")
	}
	t.started = true
	ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	ticker := t.opts.Clock.NewTicker(t.opts.TickInterval)

	t.log.Debug("trigger started", slog.Time("target", t.target), slog.String("zone", t.zone))

	go t.loop(ctx, ticker)
	return nil
}

// Stop ends the loop and waits for it. A publish call already issued keeps
// running to completion but its result is dropped. No callback runs after
// Stop returns.
func (t *Trigger) Stop() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return
	}
	t.stopOnce.Do(t.cancel)
	<-t.done
}

// Done is closed when the loop has ended.
func (t *Trigger) Done() <-chan struct{} {
	return t.done
}

// Snapshot returns the current trigger state.
func (t *Trigger) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ID:        t.id,
		Target:    t.target,
		Zone:      t.zone,
		Display:   t.display,
		Remaining: t.remaining,
		Fired:     t.fired,
		InFlight:  t.inFlight,
		Settled:   t.settled,
		Outcome:   t.outcome,
	}
}

func (t *Trigger) loop(ctx context.Context, ticker clockwork.Ticker) {
	defer close(t.done)
	defer ticker.Stop()

	if t.tick(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if t.tick(ctx) {
				return
			}
		case res := <-t.results:
			if t.settle(ctx, res) {
				return
			}
		}
	}
}

// tick recomputes the remaining time, fires once the target is reached and
// launches a publish check unless one is already in flight. It reports
// whether the loop should end.
func (t *Trigger) tick(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	now := t.opts.Clock.Now()

	t.mu.Lock()
	t.remaining = t.target.Sub(now)
	firstFire := t.remaining <= 0 && !t.fired
	if firstFire {
		t.fired = true
	}
	launch := t.fired && !t.settled && !t.inFlight
	if launch {
		t.inFlight = true
	}
	t.mu.Unlock()

	if firstFire {
		t.log.Info("trigger fired", slog.Time("target", t.target), slog.Time("now", now))
		if t.opts.OnFire != nil {
			t.opts.OnFire()
		}
	}
	if launch {
		go t.check(ctx)
	}
	return false
}

// check runs one publish-due call and, if this call did not publish the
// record, reads it back to learn why. The call is detached from ctx so that
// Stop does not abort a transition the server may already be committing.
func (t *Trigger) check(ctx context.Context) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.opts.CallTimeout)
	defer cancel()

	t.results <- t.publish(cctx)
}

func (t *Trigger) publish(ctx context.Context) checkResult {
	ids, err := t.api.PublishDue(ctx)
	if err != nil {
		return checkResult{outcome: OutcomeUnknown, err: err}
	}
	if slices.Contains(ids, t.id) {
		return checkResult{outcome: OutcomePublished, status: domain.StatusPublished}
	}

	rec, err := t.api.Get(ctx, t.id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return checkResult{outcome: OutcomeSettledElsewhere}
	case err != nil:
		return checkResult{outcome: OutcomeUnknown, err: err}
	case rec.Status == domain.StatusScheduled:
		return checkResult{outcome: OutcomeNotYetDue, status: rec.Status}
	default:
		return checkResult{outcome: OutcomeSettledElsewhere, status: rec.Status}
	}
}

// settle records a check result and runs the matching callback. It reports
// whether the record is settled.
func (t *Trigger) settle(ctx context.Context, res checkResult) bool {
	if ctx.Err() != nil {
		return true
	}

	settled := res.outcome == OutcomePublished || res.outcome == OutcomeSettledElsewhere

	t.mu.Lock()
	t.inFlight = false
	t.outcome = res.outcome
	t.settled = settled
	t.mu.Unlock()

	switch res.outcome {
	case OutcomePublished:
		t.log.Info("publication published by trigger")
		if t.opts.OnPublished != nil {
			t.opts.OnPublished()
		}
	case OutcomeSettledElsewhere:
		t.log.Info("publication settled elsewhere", slog.String("status", string(res.status)))
		if t.opts.OnSettled != nil {
			t.opts.OnSettled(res.status)
		}
	case OutcomeNotYetDue:
		t.log.Debug("server reports not yet due, retrying")
	case OutcomeUnknown:
		// A rejected request is retried too, but it will not heal on its own.
		if client.IsRetryable(res.err) {
			t.log.Warn("publish check failed, retrying", slog.String("error", res.err.Error()))
		} else {
			t.log.Error("publish check rejected, retrying", slog.String("error", res.err.Error()))
		}
	}
	return settled
}
