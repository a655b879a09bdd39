package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/duchuan123/opc-ua-client/client"
	"github.com/duchuan123/opc-ua-client/ua"
)

// session is the narrow slice of *client.Client the manager depends on,
// letting tests drive it with a fake rather than a live session.
type session interface {
	CreateSubscription(ctx context.Context, req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error)
	DeleteSubscriptions(ctx context.Context, ids []uint32) ([]ua.StatusCode, error)
	CreateMonitoredItems(ctx context.Context, req *ua.CreateMonitoredItemsRequest) (*ua.CreateMonitoredItemsResponse, error)
	DeleteMonitoredItems(ctx context.Context, subID uint32, itemIDs []uint32) ([]ua.StatusCode, error)
	Publish(ctx context.Context, acks []*ua.SubscriptionAcknowledgement) (*ua.PublishResponse, error)
	Republish(ctx context.Context, subID uint32, seq uint32) (*ua.RepublishResponse, error)
	Write(ctx context.Context, values []*ua.WriteValue) ([]ua.StatusCode, error)
}

var _ session = (*client.Client)(nil)

// maxOutstandingPublish bounds how many Publish requests the dispatch loop
// keeps in flight at once, per Part 4 §5.13.1.1's guidance that a client
// should never let the server's queue of outstanding Publishes grow
// unbounded.
const maxOutstandingPublish = 2

type item struct {
	clientHandle    uint32
	monitoredItemID uint32
	nodeID          *ua.NodeID
	attributeID     ua.AttributeID
	observer        *Observer
}

type subscription struct {
	id          uint32
	lastSeqNum  uint32
	haveLastSeq bool
	items       map[uint32]*item // keyed by clientHandle

	// publishingInterval and lifetimeCount are the revised values returned
	// by CreateSubscription, used by the keep-alive watchdog to compute
	// the dead-subscription deadline; lastActivity is refreshed by every
	// PublishResponse carrying this subscription id, data or keep-alive
	// alike.
	publishingInterval time.Duration
	lifetimeCount       uint32
	lastActivity        time.Time
}

// Manager owns one or more subscriptions against a single connected
// client.Client, the Publish dispatch loop feeding them, and the
// clientHandle→Observer routing table. It is rebuilt (not reused) across
// reconnects; the supervisor package is responsible for recreating
// subscriptions and monitored items with their original clientHandles
// preserved after a reconnect.
type Manager struct {
	client session
	logger *zap.Logger

	mu            sync.Mutex
	subscriptions map[uint32]*subscription
	nextHandle    uint32

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	metrics *metrics

	// ErrorSink, if set, receives errors encountered by the Publish
	// dispatch loop (transport failures, server faults) that would
	// otherwise only be visible via logging. Callers that want to react
	// to loop failures (e.g. the supervisor) register here rather than
	// polling state.
	ErrorSink func(error)
}

// NewManager builds a Manager bound to c. Start must be called before any
// subscription delivers notifications.
func NewManager(c *client.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:        c,
		logger:        logger,
		subscriptions: make(map[uint32]*subscription),
		metrics:       newMetrics(),
	}
}

// CreateSubscription issues CreateSubscription and registers the result for
// Publish dispatch.
func (m *Manager) CreateSubscription(ctx context.Context, params SubscriptionParameters) (uint32, error) {
	req := &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: float64(params.PublishingInterval / time.Millisecond),
		RequestedLifetimeCount:      params.LifetimeCount,
		RequestedMaxKeepAliveCount:  params.MaxKeepAliveCount,
		MaxNotificationsPerPublish:  params.MaxNotifications,
		PublishingEnabled:           true,
		Priority:                    params.Priority,
	}
	resp, err := m.client.CreateSubscription(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("monitor: CreateSubscription: %w", err)
	}

	m.mu.Lock()
	m.subscriptions[resp.SubscriptionID] = &subscription{
		id:                  resp.SubscriptionID,
		items:               make(map[uint32]*item),
		publishingInterval:  time.Duration(resp.RevisedPublishingInterval * float64(time.Millisecond)),
		lifetimeCount:       resp.RevisedLifetimeCount,
		lastActivity:        time.Now(),
	}
	m.mu.Unlock()

	m.logger.Info("subscription created",
		zap.Uint32("subscription_id", resp.SubscriptionID),
		zap.Float64("revised_publishing_interval_ms", resp.RevisedPublishingInterval))
	return resp.SubscriptionID, nil
}

// DeleteSubscription tears down one subscription and forgets its items.
func (m *Manager) DeleteSubscription(ctx context.Context, subID uint32) error {
	_, err := m.client.DeleteSubscriptions(ctx, []uint32{subID})
	m.mu.Lock()
	delete(m.subscriptions, subID)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("monitor: DeleteSubscriptions: %w", err)
	}
	return nil
}

// AddMonitoredItem creates one monitored item under subID and routes its
// notifications to observer. The returned clientHandle is stable across
// reconnects when the caller (typically the supervisor) passes the same
// value back in via AddMonitoredItemWithHandle during rehydration.
func (m *Manager) AddMonitoredItem(ctx context.Context, subID uint32, params MonitoredItemParameters, observer *Observer) (uint32, uint32, error) {
	handle := atomic.AddUint32(&m.nextHandle, 1)
	return m.AddMonitoredItemWithHandle(ctx, subID, handle, params, observer)
}

// AddMonitoredItemWithHandle is AddMonitoredItem with an explicit
// clientHandle, used by the supervisor to rehydrate subscriptions after a
// reconnect without renumbering observers.
func (m *Manager) AddMonitoredItemWithHandle(ctx context.Context, subID, clientHandle uint32, params MonitoredItemParameters, observer *Observer) (uint32, uint32, error) {
	req := &ua.CreateMonitoredItemsRequest{
		SubscriptionID:     subID,
		TimestampsToReturn: ua.TimestampsToReturnBoth,
		ItemsToCreate: []*ua.MonitoredItemCreateRequest{
			{
				ItemToMonitor:  &ua.ReadValueID{NodeID: params.NodeID, AttributeID: params.AttributeID},
				MonitoringMode: ua.MonitoringModeReporting,
				RequestedParameters: ua.MonitoringParameters{
					ClientHandle:     clientHandle,
					SamplingInterval: float64(params.SamplingInterval / time.Millisecond),
					QueueSize:        params.QueueSize,
					DiscardOldest:    params.DiscardOldest,
				},
			},
		},
	}

	resp, err := m.client.CreateMonitoredItems(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("monitor: CreateMonitoredItems: %w", err)
	}
	if len(resp.Results) != 1 {
		return 0, 0, fmt.Errorf("monitor: CreateMonitoredItems: expected 1 result, got %d", len(resp.Results))
	}
	result := resp.Results[0]
	if result.StatusCode.IsBad() {
		return 0, 0, ua.NewStatusError(result.StatusCode, fmt.Errorf("monitor: monitored item rejected"))
	}

	m.mu.Lock()
	sub, ok := m.subscriptions[subID]
	if !ok {
		sub = &subscription{id: subID, items: make(map[uint32]*item), lastActivity: time.Now()}
		m.subscriptions[subID] = sub
	}
	sub.items[clientHandle] = &item{
		clientHandle:    clientHandle,
		monitoredItemID: result.MonitoredItemID,
		nodeID:          params.NodeID,
		attributeID:     params.AttributeID,
		observer:        observer,
	}
	m.mu.Unlock()

	return clientHandle, result.MonitoredItemID, nil
}

// RemoveMonitoredItem deletes one monitored item and its observer routing.
func (m *Manager) RemoveMonitoredItem(ctx context.Context, subID, clientHandle uint32) error {
	m.mu.Lock()
	sub, ok := m.subscriptions[subID]
	var monitoredItemID uint32
	if ok {
		if it, ok := sub.items[clientHandle]; ok {
			monitoredItemID = it.monitoredItemID
			delete(sub.items, clientHandle)
		}
	}
	m.mu.Unlock()
	if !ok || monitoredItemID == 0 {
		return nil
	}
	_, err := m.client.DeleteMonitoredItems(ctx, subID, []uint32{monitoredItemID})
	if err != nil {
		return fmt.Errorf("monitor: DeleteMonitoredItems: %w", err)
	}
	return nil
}

// SetValue implements back-write: it issues a Write of value to the node
// backing the monitored item registered under (subID, clientHandle), for an
// observer whose application-side value changed locally and needs pushing
// back to the server. Write failures are logged and returned to the caller
// but never fault the subscription.
func (m *Manager) SetValue(ctx context.Context, subID, clientHandle uint32, value *ua.Variant) error {
	m.mu.Lock()
	var nodeID *ua.NodeID
	var attrID ua.AttributeID
	if sub, ok := m.subscriptions[subID]; ok {
		if it, ok := sub.items[clientHandle]; ok {
			nodeID = it.nodeID
			attrID = it.attributeID
		}
	}
	m.mu.Unlock()
	if nodeID == nil {
		return fmt.Errorf("monitor: no monitored item for subscription %d client handle %d", subID, clientHandle)
	}

	_, err := m.client.Write(ctx, []*ua.WriteValue{{
		NodeID:      nodeID,
		AttributeID: attrID,
		Value:       &ua.DataValue{Value: value},
	}})
	if err != nil {
		m.logger.Warn("back-write failed",
			zap.Uint32("subscription_id", subID), zap.Uint32("client_handle", clientHandle), zap.Error(err))
		return fmt.Errorf("monitor: back-write: %w", err)
	}
	return nil
}

// teardownSubscription forgets local state for a subscription the server no
// longer recognizes (BadNoSubscription) or has gone silent on past its
// keep-alive deadline, and reports err to ErrorSink so a caller like the
// supervisor can force the reconnect-and-rehydrate cycle that recreates it.
func (m *Manager) teardownSubscription(subID uint32, err error) {
	m.mu.Lock()
	delete(m.subscriptions, subID)
	m.mu.Unlock()
	m.logger.Warn("tearing down local subscription state", zap.Uint32("subscription_id", subID), zap.Error(err))
	m.metrics.subscriptionsTornDown.Inc()
	if m.ErrorSink != nil {
		m.ErrorSink(err)
	}
}

// keepAliveCheckInterval bounds how often the watchdog scans for
// subscriptions that have gone silent past their lifetime deadline.
const keepAliveCheckInterval = time.Second

// keepAliveWatchdog tears down (via teardownSubscription, which reports to
// ErrorSink) any subscription for which neither a notification nor a
// keep-alive arrived within publishingInterval × lifetimeCount, per Part 4
// §5.13.1.2's dead-subscription detection. It does not recreate the
// subscription itself; recreation is left to the ErrorSink receiver.
func (m *Manager) keepAliveWatchdog(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(keepAliveCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkDeadSubscriptions()
		}
	}
}

func (m *Manager) checkDeadSubscriptions() {
	now := time.Now()
	m.mu.Lock()
	var dead []uint32
	for id, sub := range m.subscriptions {
		if sub.publishingInterval <= 0 || sub.lifetimeCount == 0 || sub.lastActivity.IsZero() {
			continue
		}
		deadline := sub.publishingInterval * time.Duration(sub.lifetimeCount)
		if now.Sub(sub.lastActivity) > deadline {
			dead = append(dead, id)
		}
	}
	m.mu.Unlock()

	for _, id := range dead {
		m.teardownSubscription(id, fmt.Errorf("monitor: subscription %d received no notification or keep-alive within its lifetime", id))
	}
}

// Start launches the Publish dispatch loop and the keep-alive watchdog in
// the background.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(2)
	go m.publishLoop(loopCtx)
	go m.keepAliveWatchdog(loopCtx)
}

// Stop cancels the Publish dispatch loop and watchdog and waits for both to
// exit.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
	})
}

// Collectors returns the Prometheus collectors this Manager updates, for a
// caller to register with its own registry.
func (m *Manager) Collectors() []prometheus.Collector {
	return m.metrics.collectors()
}
