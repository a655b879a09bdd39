package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duchuan123/opc-ua-client/ua"
)

// publishBackoff is how long the dispatch loop waits before retrying after
// a Publish call fails, bounded to avoid hammering a server that is
// temporarily rejecting requests (e.g. mid-reconnect on the server side).
const publishBackoff = time.Second

// publishLoop keeps at most maxOutstandingPublish Publish requests
// outstanding at once, feeding each response's notifications to
// dispatch and re-queuing acknowledgements for the next round, per
// Part 4 §5.13.1.1 ("the Client should always have at least one Publish
// request queued").
func (m *Manager) publishLoop(ctx context.Context) {
	defer m.wg.Done()

	sem := make(chan struct{}, maxOutstandingPublish)
	var inflight sync.WaitGroup

	var ackMu sync.Mutex
	var pendingAcks []*ua.SubscriptionAcknowledgement

	for {
		select {
		case <-ctx.Done():
			inflight.Wait()
			return
		case sem <- struct{}{}:
		}

		ackMu.Lock()
		acks := pendingAcks
		pendingAcks = nil
		ackMu.Unlock()

		inflight.Add(1)
		m.metrics.publishInFlight.Inc()
		go func(acks []*ua.SubscriptionAcknowledgement) {
			defer func() {
				<-sem
				inflight.Done()
				m.metrics.publishInFlight.Dec()
			}()

			resp, err := m.client.Publish(ctx, acks)
			if err != nil {
				m.metrics.publishErrors.Inc()
				if ctx.Err() != nil {
					return
				}
				m.logger.Warn("publish failed", zap.Error(err))
				if m.ErrorSink != nil {
					m.ErrorSink(err)
				}
				ackMu.Lock()
				pendingAcks = append(pendingAcks, acks...)
				ackMu.Unlock()
				select {
				case <-ctx.Done():
				case <-time.After(publishBackoff):
				}
				return
			}

			if ack := m.handlePublishResponse(ctx, resp); ack != nil {
				ackMu.Lock()
				pendingAcks = append(pendingAcks, ack)
				ackMu.Unlock()
			}
		}(acks)
	}
}

// handlePublishResponse dispatches one PublishResponse's notifications and
// returns the acknowledgement to send on the next Publish call, or nil when
// the response has a bad service result, names an unknown subscription, or
// carries no NotificationMessage (a keep-alive). A NotificationMessage with
// no data changes or events is still acknowledged.
func (m *Manager) handlePublishResponse(ctx context.Context, resp *ua.PublishResponse) *ua.SubscriptionAcknowledgement {
	if resp.Header.ServiceResult.IsBad() {
		if resp.Header.ServiceResult == ua.StatusBadNoSubscription {
			m.teardownSubscription(resp.SubscriptionID,
				ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("monitor: subscription no longer exists on server")))
			return nil
		}
		m.logger.Warn("publish response carried a bad service result", zap.Uint32("status", uint32(resp.Header.ServiceResult)))
		return nil
	}

	m.mu.Lock()
	sub, ok := m.subscriptions[resp.SubscriptionID]
	if ok {
		sub.lastActivity = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	msg := resp.NotificationMessage
	if msg == nil {
		return nil
	}

	m.mu.Lock()
	gapStart := sub.lastSeqNum + 1
	hasGap := sub.haveLastSeq && msg.SequenceNumber > gapStart
	sub.lastSeqNum = msg.SequenceNumber
	sub.haveLastSeq = true
	m.mu.Unlock()

	if hasGap {
		m.republishGap(ctx, resp.SubscriptionID, gapStart, msg.SequenceNumber)
	}

	m.dispatch(sub, msg)

	return &ua.SubscriptionAcknowledgement{SubscriptionID: resp.SubscriptionID, SequenceNumber: msg.SequenceNumber}
}

// republishGap issues Republish for every sequence number in [from, to),
// stopping early once the server reports BadMessageNotAvailable — at that
// point its republish cache has already discarded everything older, so
// further attempts for this gap are exhausted.
func (m *Manager) republishGap(ctx context.Context, subID, from, to uint32) {
	for seq := from; seq < to; seq++ {
		m.metrics.republishAttempts.Inc()
		resp, err := m.client.Republish(ctx, subID, seq)
		status := ua.StatusOf(err)
		if err == nil && resp != nil {
			status = resp.Header.ServiceResult
		}
		if status.IsGood() {
			continue
		}
		m.logger.Warn("republish failed",
			zap.Uint32("subscription_id", subID), zap.Uint32("sequence_number", seq), zap.Stringer("status", status))
		if status == ua.StatusBadMessageNotAvailable {
			m.logger.Warn("republish cache exhausted, abandoning remaining gap",
				zap.Uint32("subscription_id", subID), zap.Uint32("from", seq), zap.Uint32("to", to))
			return
		}
	}
}

// dispatch routes a NotificationMessage's DataChange and Event batches to
// the registered Observer for each clientHandle.
func (m *Manager) dispatch(sub *subscription, msg *ua.NotificationMessage) {
	m.mu.Lock()
	items := make(map[uint32]*item, len(sub.items))
	for h, it := range sub.items {
		items[h] = it
	}
	m.mu.Unlock()

	for _, batch := range msg.DataChanges {
		for _, n := range batch.MonitoredItems {
			it, ok := items[n.ClientHandle]
			if !ok || it.observer == nil {
				continue
			}
			it.observer.deliverDataChange(DataChangeEvent{ClientHandle: n.ClientHandle, Value: n.Value})
			m.metrics.notificationsDelivered.Inc()
		}
	}
	for _, batch := range msg.Events {
		for _, n := range batch.Events {
			it, ok := items[n.ClientHandle]
			if !ok || it.observer == nil {
				continue
			}
			it.observer.deliverEvent(Event{ClientHandle: n.ClientHandle, Fields: n.EventFields})
			m.metrics.notificationsDelivered.Inc()
		}
	}
}
