package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duchuan123/opc-ua-client/ua"
)

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("opc.tcp://localhost:4840")
	require.NoError(t, err)

	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, ua.SecurityPolicyURINone, c.opts.securityPolicyURI)
	assert.Equal(t, ua.MessageSecurityModeNone, c.opts.securityMode)
	assert.Equal(t, ua.UserTokenTypeAnonymous, c.opts.userTokenType)
	assert.Equal(t, 5*time.Second, c.opts.requestTimeout)
}

func TestOptionsApply(t *testing.T) {
	c, err := NewClient("opc.tcp://localhost:4840",
		SecurityPolicy(ua.SecurityPolicyURIBasic256Sha256),
		SecurityMode(ua.MessageSecurityModeSignAndEncrypt),
		AuthUsername("alice", "hunter2"),
		RequestTimeout(2*time.Second),
		SessionTimeout(30*time.Second),
		Lifetime(time.Minute),
	)
	require.NoError(t, err)

	assert.Equal(t, ua.SecurityPolicyURIBasic256Sha256, c.opts.securityPolicyURI)
	assert.Equal(t, ua.MessageSecurityModeSignAndEncrypt, c.opts.securityMode)
	assert.Equal(t, ua.UserTokenTypeUserName, c.opts.userTokenType)
	assert.Equal(t, "alice", c.opts.username)
	assert.Equal(t, "hunter2", c.opts.password)
	assert.Equal(t, 2*time.Second, c.opts.requestTimeout)
	assert.Equal(t, 30*time.Second, c.opts.sessionTimeout)
	assert.Equal(t, time.Minute, c.opts.lifetime)
}

func TestSecurityFromEndpoint(t *testing.T) {
	ep := &ua.EndpointDescription{
		SecurityPolicyURI: ua.SecurityPolicyURIBasic256,
		SecurityMode:      ua.MessageSecurityModeSign,
		ServerCertificate: []byte{1, 2, 3},
	}
	c, err := NewClient("opc.tcp://localhost:4840", SecurityFromEndpoint(ep, ua.UserTokenTypeAnonymous))
	require.NoError(t, err)

	assert.Equal(t, ua.SecurityPolicyURIBasic256, c.opts.securityPolicyURI)
	assert.Equal(t, ua.MessageSecurityModeSign, c.opts.securityMode)
	assert.Equal(t, []byte{1, 2, 3}, c.opts.serverCertificate)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "Closed"},
		{StateConnecting, "Connecting"},
		{StateConnected, "Connected"},
		{StateDisconnected, "Disconnected"},
		{State(99), "Closed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestDoneBeforeConnectIsNil(t *testing.T) {
	c, err := NewClient("opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.Nil(t, c.Done())
}

func TestServiceMethodsRequireConnection(t *testing.T) {
	c, err := NewClient("opc.tcp://localhost:4840")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Read(ctx, nil)
	assert.Error(t, err)

	_, err = c.Write(ctx, nil)
	assert.Error(t, err)

	_, err = c.Browse(ctx, nil)
	assert.Error(t, err)

	_, err = c.BrowseNext(ctx, false, nil)
	assert.Error(t, err)

	_, err = c.Call(ctx, nil)
	assert.Error(t, err)

	_, err = c.CreateSubscription(ctx, &ua.CreateSubscriptionRequest{})
	assert.Error(t, err)

	_, err = c.Publish(ctx, nil)
	assert.Error(t, err)
}

func TestCloseWithoutConnectIsNoop(t *testing.T) {
	c, err := NewClient("opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.NoError(t, c.Close(context.Background()))
}
