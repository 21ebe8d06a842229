package services

import (
	"context"
	"sync"
	"time"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/internal/events"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
	"github.com/bridgebot/gowatch/pkg/logger"
	"github.com/bridgebot/gowatch/pkg/persistence"
	"github.com/bridgebot/gowatch/pkg/sigchan"
)

// SnapshotPublisher receives the read model after every applied pass.
type SnapshotPublisher interface {
	Publish(snapshot events.SnapshotEvent)
}

// RefresherOptions configure the reconciliation loop.
type RefresherOptions struct {
	Interval time.Duration

	// Symbol labels stats volume figures.
	Symbol string

	// RelayerMode answers every Fill notification with a confirm submission,
	// when a signing session is bound.
	RelayerMode bool

	// Publisher receives applied snapshots. Optional.
	Publisher SnapshotPublisher

	// StatsStore persists the last applied stats across restarts. Optional.
	StatsStore persistence.Store
}

// Refresher owns the reconciliation loop: one goroutine runs passes one at a
// time, triggered by a timer and by push notifications. Triggers arriving
// mid-pass coalesce into a single follow-up pass. Each pass carries a
// sequence number and its result is applied only while it is the newest, and
// never after Stop.
type Refresher struct {
	session *SessionManager
	opts    RefresherOptions

	trigger *sigchan.Chan

	mu         sync.Mutex
	orders     []domain.Order
	stats      domain.Stats
	nextSeq    uint64
	appliedSeq uint64
	stopped    bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRefresher builds the loop over a session manager. The previous stats
// snapshot, if persisted, seeds the retained-on-failure fallback.
func NewRefresher(session *SessionManager, opts RefresherOptions) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}

	r := &Refresher{
		session: session,
		opts:    opts,
		trigger: sigchan.New(1),
		orders:  []domain.Order{},
		stats:   domain.Stats{Symbol: opts.Symbol},
		stopCh:  make(chan struct{}),
	}

	if opts.StatsStore != nil {
		var saved domain.Stats
		if err := opts.StatsStore.Load(&saved); err == nil {
			r.stats = saved
		} else if err != persistence.ErrNotExists {
			logger.Warnf("[Refresher] load persisted stats: %v", err)
		}
	}
	return r
}

// Start attaches push subscriptions to the current ledger handle and runs
// the loop with an immediate first pass. Handle rebinds re-attach
// subscriptions on the new handle.
func (r *Refresher) Start(ctx context.Context) error {
	if err := r.attach(r.session.Client()); err != nil {
		return err
	}
	r.session.OnRebind(func(c client.Client) {
		if err := r.attach(c); err != nil {
			logger.Errorf("[Refresher] re-subscribe after rebind: %v", err)
		}
		r.trigger.Emit()
	})

	r.wg.Add(1)
	go r.loop(ctx)
	logger.Infof("[Refresher] started, interval %s", r.opts.Interval)
	return nil
}

// Stop cancels the timer and subscriptions. An in-flight pass is left to
// finish on its own; its result is discarded.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	r.session.Client().UnsubscribeAll()
	r.wg.Wait()
	logger.Info("[Refresher] stopped")
}

// Trigger requests a reconciliation pass. Safe from any goroutine; extra
// triggers while a pass runs collapse into one.
func (r *Refresher) Trigger() {
	r.trigger.Emit()
}

// attach clears any existing subscriptions on the handle, then subscribes
// every event kind exactly once.
func (r *Refresher) attach(c client.Client) error {
	c.UnsubscribeAll()
	for _, kind := range types.AllEventKinds() {
		kind := kind
		if err := c.Subscribe(kind, func(ev types.OrderEvent) {
			r.onLedgerEvent(ev)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Refresher) onLedgerEvent(ev types.OrderEvent) {
	logger.Debugf("[Refresher] %s notification for order %s", ev.Kind, ev.OrderID.Hex())
	if r.opts.RelayerMode && ev.Kind == types.EventFill {
		go r.confirmFilled(ev)
	}
	r.trigger.Emit()
}

// confirmFilled answers a Fill notification with a confirm submission, the
// relayer role in the order lifecycle.
func (r *Refresher) confirmFilled(ev types.OrderEvent) {
	signer, err := r.session.SigningClient()
	if err != nil {
		logger.Warnf("[Refresher] cannot confirm %s: %v", ev.OrderID.Hex(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tx, err := signer.ConfirmOrder(ctx, ev.OrderID)
	if err != nil {
		logger.Errorf("[Refresher] confirm %s failed: %v", ev.OrderID.Hex(), err)
		return
	}
	if err := signer.AwaitConfirmation(ctx, tx); err != nil {
		logger.Errorf("[Refresher] confirm %s not mined: %v", ev.OrderID.Hex(), err)
		return
	}
	logger.Infof("[Refresher] confirmed order %s", ev.OrderID.Hex())
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()

	r.runPass(ctx)

	// The timer is re-armed after each pass completes, so timer-driven
	// passes never overlap.
	timer := time.NewTimer(r.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-r.trigger.C():
			r.runPass(ctx)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.opts.Interval)
		case <-timer.C:
			r.runPass(ctx)
			timer.Reset(r.opts.Interval)
		}
	}
}

// runPass executes one reconciliation pass: project orders, aggregate stats,
// refresh the session balance, then apply and publish the result if it is
// still the newest.
func (r *Refresher) runPass(ctx context.Context) {
	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	r.mu.Unlock()

	c := r.session.Client()

	orders, projectErr := NewOrderProjector(c).Project(ctx)
	stats, statsErr := NewStatsAggregator(c, r.opts.Symbol).Aggregate(ctx)

	if err := r.session.RefreshBalance(ctx); err != nil {
		logger.Warnf("[Refresher] balance refresh failed: %v", err)
	}

	r.mu.Lock()
	if r.stopped || seq <= r.appliedSeq {
		r.mu.Unlock()
		logger.Debugf("[Refresher] discard pass %d result", seq)
		return
	}
	r.appliedSeq = seq

	if projectErr != nil {
		logger.Errorf("[Refresher] projection failed, keeping previous orders: %v", projectErr)
	} else {
		r.orders = orders
	}
	if statsErr != nil {
		logger.Warnf("[Refresher] aggregation failed, keeping previous stats: %v", statsErr)
	} else {
		r.stats = stats
	}
	applied := events.SnapshotEvent{
		Sequence:  seq,
		Orders:    append([]domain.Order(nil), r.orders...),
		Stats:     r.stats,
		Timestamp: time.Now(),
	}
	r.mu.Unlock()

	applied.Session = r.session.Session()

	if r.opts.Publisher != nil {
		r.opts.Publisher.Publish(applied)
	}
	if r.opts.StatsStore != nil && statsErr == nil {
		if err := r.opts.StatsStore.Save(applied.Stats); err != nil {
			logger.Warnf("[Refresher] persist stats: %v", err)
		}
	}
}

// Orders returns a copy of the current projection.
func (r *Refresher) Orders() []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Order(nil), r.orders...)
}

// Stats returns the last applied stats snapshot.
func (r *Refresher) Stats() domain.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
