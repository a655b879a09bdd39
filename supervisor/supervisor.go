// Package supervisor drives the reconnect state machine sitting above
// package client and package monitor: it owns the Idle→Connecting→
// Connected→Faulted→(backoff)→Connecting loop, and rehydrates
// subscriptions and monitored items with their original clientHandles
// preserved after a reconnect, running as a standalone, always-on
// supervisor rather than a per-scrape retry.
package supervisor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duchuan123/opc-ua-client/client"
	"github.com/duchuan123/opc-ua-client/monitor"
)

// State is the supervisor's coarse reconnect state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateFaulted:
		return "Faulted"
	default:
		return "Idle"
	}
}

// backoff bounds, grounded on the reconnect-retry idiom in the broker and
// session-server packages of the example pack: start small, double, cap,
// and jitter so a fleet of clients reconnecting to the same server doesn't
// do so in lockstep.
const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// subscriptionSpec is everything needed to recreate one subscription and
// its monitored items after a reconnect.
type subscriptionSpec struct {
	params SubscriptionParams
	items  []itemSpec
}

type itemSpec struct {
	clientHandle uint32
	params       monitor.MonitoredItemParameters
	observer     *monitor.Observer
}

// SubscriptionParams is monitor.SubscriptionParameters re-exported under
// the supervisor's own name so callers don't need to import monitor just
// to call RegisterSubscription.
type SubscriptionParams = monitor.SubscriptionParameters

// Supervisor owns one logical OPC UA session across however many physical
// reconnects are needed to keep it alive. Register subscriptions and
// monitored items before calling Start (or while connected — registration
// itself never touches the network; only the next (re)connect applies it).
type Supervisor struct {
	endpointURL string
	clientOpts  []client.Option
	logger      *zap.Logger

	mu    sync.Mutex
	state State
	specs []*subscriptionSpec

	current *client.Client
	manager *monitor.Manager

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// OnStateChange, if set, is invoked (off the supervisor's own
	// goroutine is not guaranteed; callers should keep it fast or hop to
	// their own goroutine) whenever the coarse State changes.
	OnStateChange func(State)
}

// New builds a Supervisor bound to endpointURL. opts configures every
// (re)connect attempt identically, rebuilding the same []client.Option
// slice on every retry.
func New(endpointURL string, logger *zap.Logger, opts ...client.Option) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{endpointURL: endpointURL, clientOpts: opts, logger: logger}
}

// State returns the current coarse reconnect state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RegisterSubscription declares a subscription (and its monitored items,
// added afterward via RegisterMonitoredItem) to be created on every
// (re)connect. Returns an opaque index used by RegisterMonitoredItem.
func (s *Supervisor) RegisterSubscription(params SubscriptionParams) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, &subscriptionSpec{params: params})
	return len(s.specs) - 1
}

// RegisterMonitoredItem declares one monitored item under the subscription
// returned by RegisterSubscription, with a clientHandle that is preserved
// across reconnects so an Observer's identity survives a Faulted episode.
func (s *Supervisor) RegisterMonitoredItem(subIndex int, clientHandle uint32, params monitor.MonitoredItemParameters, observer *monitor.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subIndex < 0 || subIndex >= len(s.specs) {
		return
	}
	s.specs[subIndex].items = append(s.specs[subIndex].items, itemSpec{clientHandle: clientHandle, params: params, observer: observer})
}

// Manager returns the monitor.Manager for the currently connected session,
// or nil if not connected. Its identity changes across reconnects.
func (s *Supervisor) Manager() *monitor.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager
}

// Client returns the client.Client for the currently connected session, or
// nil if not connected. Its identity changes across reconnects.
func (s *Supervisor) Client() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Start runs the reconnect loop in the background until ctx is cancelled
// or Stop is called.
func (s *Supervisor) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(loopCtx)
}

// Stop cancels the reconnect loop, closes the current session if any, and
// waits for the loop goroutine to exit.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.OnStateChange != nil {
		s.OnStateChange(st)
	}
}

func (s *Supervisor) run(ctx context.Context) {
	defer s.wg.Done()
	backoff := minBackoff

	for {
		select {
		case <-ctx.Done():
			s.teardown(context.Background())
			return
		default:
		}

		s.setState(StateConnecting)
		c, mgr, err := s.connectAndRehydrate(ctx)
		if err != nil {
			s.logger.Warn("connect failed", zap.String("endpoint", s.endpointURL), zap.Error(err))
			s.setState(StateFaulted)
			if !s.sleepBackoff(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = minBackoff
		s.setState(StateConnected)

		select {
		case <-ctx.Done():
			s.teardown(context.Background())
			return
		case <-c.Done():
			mgr.Stop()
			s.logger.Warn("secure channel closed unexpectedly, reconnecting", zap.String("endpoint", s.endpointURL))
			s.setState(StateFaulted)
			if !s.sleepBackoff(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
		}
	}
}

func (s *Supervisor) connectAndRehydrate(ctx context.Context) (*client.Client, *monitor.Manager, error) {
	c, err := client.NewClient(s.endpointURL, s.clientOpts...)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, nil, err
	}

	mgr := monitor.NewManager(c, s.logger)
	mgr.ErrorSink = func(err error) {
		s.logger.Warn("subscription manager reported an unrecoverable error, forcing reconnect",
			zap.String("endpoint", s.endpointURL), zap.Error(err))
		_ = c.Close(context.Background())
	}
	mgr.Start(ctx)

	s.mu.Lock()
	specs := s.specs
	s.mu.Unlock()

	for i, spec := range specs {
		subID, err := mgr.CreateSubscription(ctx, spec.params)
		if err != nil {
			mgr.Stop()
			_ = c.Close(ctx)
			return nil, nil, err
		}
		for _, it := range spec.items {
			if _, _, err := mgr.AddMonitoredItemWithHandle(ctx, subID, it.clientHandle, it.params, it.observer); err != nil {
				s.logger.Warn("failed to rehydrate monitored item",
					zap.Int("subscription_index", i), zap.Uint32("client_handle", it.clientHandle), zap.Error(err))
			}
		}
	}

	s.mu.Lock()
	s.current = c
	s.manager = mgr
	s.mu.Unlock()
	return c, mgr, nil
}

func (s *Supervisor) teardown(ctx context.Context) {
	s.mu.Lock()
	c := s.current
	mgr := s.manager
	s.current = nil
	s.manager = nil
	s.mu.Unlock()

	if mgr != nil {
		mgr.Stop()
	}
	if c != nil {
		_ = c.Close(ctx)
	}
	s.setState(StateIdle)
}

func (s *Supervisor) sleepBackoff(ctx context.Context, d time.Duration) bool {
	jittered := d/2 + time.Duration(rand.Int63n(int64(d)/2+1))
	select {
	case <-ctx.Done():
		return false
	case <-time.After(jittered):
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
