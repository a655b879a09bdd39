// Package monitor implements the subscription manager sitting above
// package client: it owns CreateSubscription/CreateMonitoredItems
// bookkeeping, runs the Publish dispatch loop, and fans delivered
// notifications out to registered Observers — continuous, push-based
// delivery rather than per-call request/response reads.
package monitor

import (
	"time"

	"github.com/duchuan123/opc-ua-client/ua"
)

// SubscriptionParameters configures one subscription's CreateSubscription
// call (Part 4 §5.13.2).
type SubscriptionParameters struct {
	PublishingInterval time.Duration
	LifetimeCount       uint32
	MaxKeepAliveCount   uint32
	MaxNotifications    uint32
	Priority            byte
}

// DefaultSubscriptionParameters mirrors commonly accepted server defaults:
// a 1s publishing interval, a keep-alive every 10 intervals, and a
// lifetime long enough to survive several missed keep-alives before the
// server itself expires the subscription.
func DefaultSubscriptionParameters() SubscriptionParameters {
	return SubscriptionParameters{
		PublishingInterval: time.Second,
		LifetimeCount:       300,
		MaxKeepAliveCount:   10,
		MaxNotifications:    0,
		Priority:            0,
	}
}

// MonitoredItemParameters configures one item's sampling/queueing
// (Part 4 §7.21).
type MonitoredItemParameters struct {
	NodeID           *ua.NodeID
	AttributeID      ua.AttributeID
	SamplingInterval time.Duration
	QueueSize        uint32
	DiscardOldest    bool
}

// DataChangeEvent is the value delivered to a Latest/Unwrapped/Queue
// observer for one monitored item.
type DataChangeEvent struct {
	ClientHandle uint32
	Value        *ua.DataValue
}

// Event is the value delivered to an EventQueue observer for one event
// notification.
type Event struct {
	ClientHandle uint32
	Fields       []*ua.Variant
}
