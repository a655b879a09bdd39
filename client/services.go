package client

import (
	"context"
	"fmt"

	"github.com/duchuan123/opc-ua-client/id"
	"github.com/duchuan123/opc-ua-client/ua"
)

// Read issues a Read service request (Part 4 §5.10.2) for the given nodes
// and attributes, returning one DataValue per ReadValueID in order.
func (c *Client) Read(ctx context.Context, nodes []*ua.ReadValueID) ([]*ua.DataValue, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}

	req := &ua.ReadRequest{
		Header:             c.requestHeader(),
		TimestampsToReturn: ua.TimestampsToReturnBoth,
		NodesToRead:        nodes,
	}
	resp, err := sendTyped(ctx, channel, id.ReadRequestEncodingDefaultBinary, id.ReadResponseEncodingDefaultBinary, req.Encode, ua.DecodeReadResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Read: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: Read failed"))
	}
	return resp.Results, nil
}

// Write issues a Write service request (Part 4 §5.10.4), returning one
// StatusCode per WriteValue in order.
func (c *Client) Write(ctx context.Context, values []*ua.WriteValue) ([]ua.StatusCode, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}

	req := &ua.WriteRequest{Header: c.requestHeader(), NodesToWrite: values}
	resp, err := sendTyped(ctx, channel, id.WriteRequestEncodingDefaultBinary, id.WriteResponseEncodingDefaultBinary, req.Encode, ua.DecodeWriteResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Write: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: Write failed"))
	}
	return resp.Results, nil
}

// Browse issues a Browse service request (Part 4 §5.8.2).
func (c *Client) Browse(ctx context.Context, nodes []*ua.BrowseDescription) ([]*ua.BrowseResult, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}

	req := &ua.BrowseRequest{
		Header:                        c.requestHeader(),
		View:                          nil,
		RequestedMaxReferencesPerNode: 0,
		NodesToBrowse:                 nodes,
	}
	resp, err := sendTyped(ctx, channel, id.BrowseRequestEncodingDefaultBinary, id.BrowseResponseEncodingDefaultBinary, req.Encode, ua.DecodeBrowseResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Browse: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: Browse failed"))
	}
	return resp.Results, nil
}

// BrowseNext continues paging through a BrowseResult whose ContinuationPoint
// was non-empty (Part 4 §5.8.3).
func (c *Client) BrowseNext(ctx context.Context, release bool, continuationPoints [][]byte) ([]*ua.BrowseResult, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}

	req := &ua.BrowseNextRequest{
		Header:                    c.requestHeader(),
		ReleaseContinuationPoints: release,
		ContinuationPoints:        continuationPoints,
	}
	resp, err := sendTyped(ctx, channel, id.BrowseNextRequestEncodingDefaultBinary, id.BrowseNextResponseEncodingDefaultBinary, req.Encode, ua.DecodeBrowseNextResponse)
	if err != nil {
		return nil, fmt.Errorf("client: BrowseNext: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: BrowseNext failed"))
	}
	return resp.Results, nil
}

// Call invokes one or more methods (Part 4 §5.11.2).
func (c *Client) Call(ctx context.Context, calls []*ua.CallMethodRequest) ([]*ua.CallMethodResult, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}

	req := &ua.CallRequest{Header: c.requestHeader(), MethodsToCall: calls}
	resp, err := sendTyped(ctx, channel, id.CallRequestEncodingDefaultBinary, id.CallResponseEncodingDefaultBinary, req.Encode, ua.DecodeCallResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Call: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: Call failed"))
	}
	return resp.Results, nil
}

// CreateSubscription issues CreateSubscription (Part 4 §5.13.2).
func (c *Client) CreateSubscription(ctx context.Context, req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req.Header = c.requestHeader()
	resp, err := sendTyped(ctx, channel, id.CreateSubscriptionRequestEncodingDefaultBinary, id.CreateSubscriptionResponseEncodingDefaultBinary, req.Encode, ua.DecodeCreateSubscriptionResponse)
	if err != nil {
		return nil, fmt.Errorf("client: CreateSubscription: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: CreateSubscription failed"))
	}
	return resp, nil
}

// ModifySubscription issues ModifySubscription (Part 4 §5.13.3).
func (c *Client) ModifySubscription(ctx context.Context, req *ua.ModifySubscriptionRequest) (*ua.ModifySubscriptionResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req.Header = c.requestHeader()
	resp, err := sendTyped(ctx, channel, id.ModifySubscriptionRequestEncodingDefaultBinary, id.ModifySubscriptionResponseEncodingDefaultBinary, req.Encode, ua.DecodeModifySubscriptionResponse)
	if err != nil {
		return nil, fmt.Errorf("client: ModifySubscription: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: ModifySubscription failed"))
	}
	return resp, nil
}

// DeleteSubscriptions issues DeleteSubscriptions (Part 4 §5.13.8).
func (c *Client) DeleteSubscriptions(ctx context.Context, ids []uint32) ([]ua.StatusCode, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.DeleteSubscriptionsRequest{Header: c.requestHeader(), SubscriptionIDs: ids}
	resp, err := sendTyped(ctx, channel, id.DeleteSubscriptionsRequestEncodingDefaultBinary, id.DeleteSubscriptionsResponseEncodingDefaultBinary, req.Encode, ua.DecodeDeleteSubscriptionsResponse)
	if err != nil {
		return nil, fmt.Errorf("client: DeleteSubscriptions: %w", err)
	}
	return resp.Results, nil
}

// SetPublishingMode issues SetPublishingMode (Part 4 §5.13.4).
func (c *Client) SetPublishingMode(ctx context.Context, enabled bool, ids []uint32) ([]ua.StatusCode, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.SetPublishingModeRequest{Header: c.requestHeader(), PublishingEnabled: enabled, SubscriptionIDs: ids}
	resp, err := sendTyped(ctx, channel, id.SetPublishingModeRequestEncodingDefaultBinary, id.SetPublishingModeResponseEncodingDefaultBinary, req.Encode, ua.DecodeSetPublishingModeResponse)
	if err != nil {
		return nil, fmt.Errorf("client: SetPublishingMode: %w", err)
	}
	return resp.Results, nil
}

// CreateMonitoredItems issues CreateMonitoredItems (Part 4 §5.12.2).
func (c *Client) CreateMonitoredItems(ctx context.Context, req *ua.CreateMonitoredItemsRequest) (*ua.CreateMonitoredItemsResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req.Header = c.requestHeader()
	resp, err := sendTyped(ctx, channel, id.CreateMonitoredItemsRequestEncodingDefaultBinary, id.CreateMonitoredItemsResponseEncodingDefaultBinary, req.Encode, ua.DecodeCreateMonitoredItemsResponse)
	if err != nil {
		return nil, fmt.Errorf("client: CreateMonitoredItems: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: CreateMonitoredItems failed"))
	}
	return resp, nil
}

// ModifyMonitoredItems issues ModifyMonitoredItems (Part 4 §5.12.3).
func (c *Client) ModifyMonitoredItems(ctx context.Context, req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req.Header = c.requestHeader()
	resp, err := sendTyped(ctx, channel, id.ModifyMonitoredItemsRequestEncodingDefaultBinary, id.ModifyMonitoredItemsResponseEncodingDefaultBinary, req.Encode, ua.DecodeModifyMonitoredItemsResponse)
	if err != nil {
		return nil, fmt.Errorf("client: ModifyMonitoredItems: %w", err)
	}
	return resp, nil
}

// SetMonitoringMode issues SetMonitoringMode (Part 4 §5.12.4).
func (c *Client) SetMonitoringMode(ctx context.Context, subID uint32, mode ua.MonitoringMode, itemIDs []uint32) ([]ua.StatusCode, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.SetMonitoringModeRequest{Header: c.requestHeader(), SubscriptionID: subID, MonitoringMode: mode, MonitoredItemIDs: itemIDs}
	resp, err := sendTyped(ctx, channel, id.SetMonitoringModeRequestEncodingDefaultBinary, id.SetMonitoringModeResponseEncodingDefaultBinary, req.Encode, ua.DecodeSetMonitoringModeResponse)
	if err != nil {
		return nil, fmt.Errorf("client: SetMonitoringMode: %w", err)
	}
	return resp.Results, nil
}

// DeleteMonitoredItems issues DeleteMonitoredItems (Part 4 §5.12.5).
func (c *Client) DeleteMonitoredItems(ctx context.Context, subID uint32, itemIDs []uint32) ([]ua.StatusCode, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.DeleteMonitoredItemsRequest{Header: c.requestHeader(), SubscriptionID: subID, MonitoredItemIDs: itemIDs}
	resp, err := sendTyped(ctx, channel, id.DeleteMonitoredItemsRequestEncodingDefaultBinary, id.DeleteMonitoredItemsResponseEncodingDefaultBinary, req.Encode, ua.DecodeDeleteMonitoredItemsResponse)
	if err != nil {
		return nil, fmt.Errorf("client: DeleteMonitoredItems: %w", err)
	}
	return resp.Results, nil
}

// Publish issues one Publish request (Part 4 §5.14.2). Callers are expected
// to keep at most a small number of these outstanding at once; the monitor
// package's Manager owns that pacing, not Client itself.
func (c *Client) Publish(ctx context.Context, acks []*ua.SubscriptionAcknowledgement) (*ua.PublishResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.PublishRequest{Header: c.requestHeader(), SubscriptionAcknowledgements: acks}
	resp, err := sendTyped(ctx, channel, id.PublishRequestEncodingDefaultBinary, id.PublishResponseEncodingDefaultBinary, req.Encode, ua.DecodePublishResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Publish: %w", err)
	}
	return resp, nil
}

// Republish requests retransmission of one missed notification message
// (Part 4 §5.14.3), used when the monitor package detects a sequence-number
// gap in delivered NotificationMessages.
func (c *Client) Republish(ctx context.Context, subID uint32, seq uint32) (*ua.RepublishResponse, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil, fmt.Errorf("client: not connected")
	}
	req := &ua.RepublishRequest{Header: c.requestHeader(), SubscriptionID: subID, RetransmitSequenceNumber: seq}
	resp, err := sendTyped(ctx, channel, id.RepublishRequestEncodingDefaultBinary, id.RepublishResponseEncodingDefaultBinary, req.Encode, ua.DecodeRepublishResponse)
	if err != nil {
		return nil, fmt.Errorf("client: Republish: %w", err)
	}
	return resp, nil
}
