// Package client implements the OPC UA client session layer (Part 4): GetEndpoints
// discovery, CreateSession/ActivateSession, and the Read/Write/Browse/Call/
// Subscription services built on top of the secure channel in package uasc.
// Its public surface is functional Options plus Connect/Close/State, driven
// by the receiver's scraper loop.
package client

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duchuan123/opc-ua-client/id"
	"github.com/duchuan123/opc-ua-client/ua"
	"github.com/duchuan123/opc-ua-client/uasc"
)

// State is the coarse connection state the receiver's scraper polls via
// client.State().
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Closed"
	}
}

// options collects everything an Option can configure before NewClient
// builds the Client; fields are unexported so the functional-options
// pattern is the only way to set them.
type options struct {
	securityPolicyURI string
	securityMode      ua.MessageSecurityMode
	serverCertificate []byte
	localCertificate  []byte
	localPrivateKey   []byte

	userTokenType ua.UserTokenType
	username      string
	password      string

	requestTimeout time.Duration
	dialTimeout    time.Duration
	sessionTimeout time.Duration
	lifetime       time.Duration

	logger *zap.Logger
}

func defaultOptions() options {
	return options{
		securityPolicyURI: ua.SecurityPolicyURINone,
		securityMode:      ua.MessageSecurityModeNone,
		userTokenType:     ua.UserTokenTypeAnonymous,
		requestTimeout:    5 * time.Second,
		dialTimeout:       5 * time.Second,
		sessionTimeout:    60 * time.Second,
		lifetime:          time.Hour,
		logger:            zap.NewNop(),
	}
}

// Option configures a Client at construction time.
type Option func(*options)

// SecurityFromEndpoint derives the security policy, mode, and server
// certificate from a discovered EndpointDescription, for callers that select
// an endpoint immediately after GetEndpoints.
func SecurityFromEndpoint(ep *ua.EndpointDescription, tokenType ua.UserTokenType) Option {
	return func(o *options) {
		o.securityPolicyURI = ep.SecurityPolicyURI
		o.securityMode = ep.SecurityMode
		o.serverCertificate = ep.ServerCertificate
		o.userTokenType = tokenType
	}
}

// SecurityPolicy sets the security policy URI directly, for callers that
// skip endpoint discovery.
func SecurityPolicy(uri string) Option {
	return func(o *options) { o.securityPolicyURI = uri }
}

// SecurityMode sets the message security mode directly.
func SecurityMode(mode ua.MessageSecurityMode) Option {
	return func(o *options) { o.securityMode = mode }
}

// AuthAnonymous selects the anonymous identity token (the default).
func AuthAnonymous() Option {
	return func(o *options) { o.userTokenType = ua.UserTokenTypeAnonymous }
}

// AuthUsername selects a username/password identity token.
func AuthUsername(username, password string) Option {
	return func(o *options) {
		o.userTokenType = ua.UserTokenTypeUserName
		o.username = username
		o.password = password
	}
}

// CertificateFile loads a DER or PEM-encoded client certificate from path.
func CertificateFile(path string) Option {
	return func(o *options) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		o.localCertificate = b
	}
}

// PrivateKeyFile loads a PEM-encoded client private key from path.
func PrivateKeyFile(path string) Option {
	return func(o *options) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		o.localPrivateKey = b
	}
}

// RequestTimeout bounds how long a single service call waits for its
// response before the context is cancelled.
func RequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// SessionTimeout sets the RequestedSessionTimeout sent in CreateSession.
func SessionTimeout(d time.Duration) Option {
	return func(o *options) { o.sessionTimeout = d }
}

// Lifetime sets the requested secure-channel token lifetime.
func Lifetime(d time.Duration) Option {
	return func(o *options) { o.lifetime = d }
}

// Logger attaches a zap logger; Connect/Close and service errors are
// logged through it.
func Logger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client is a connected (or not-yet-connected) session against one OPC UA
// server endpoint. It is safe for concurrent use by multiple goroutines
// once Connect has returned.
type Client struct {
	endpointURL string
	opts        options

	mu            sync.Mutex
	state         State
	channel       *uasc.SecureChannel
	sessionID     *ua.NodeID
	authToken     *ua.NodeID
	requestHandle uint32
	serverNonce   []byte
}

// NewClient builds a Client bound to endpointURL. Connect must be called
// before any service method is used.
func NewClient(endpointURL string, opts ...Option) (*Client, error) {
	if endpointURL == "" {
		return nil, fmt.Errorf("client: endpoint URL is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{endpointURL: endpointURL, opts: o, state: StateClosed}, nil
}

// State returns the client's current coarse connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens a secure channel, creates a session, and activates it.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()

	channel, err := uasc.Open(ctx, uasc.Config{
		EndpointURL:       c.endpointURL,
		SecurityPolicyURI: c.opts.securityPolicyURI,
		SecurityMode:      c.opts.securityMode,
		ServerCertificate: c.opts.serverCertificate,
		LocalCertificate:  c.opts.localCertificate,
		LocalPrivateKey:   c.opts.localPrivateKey,
		RequestedLifetime: c.opts.lifetime,
		DialTimeout:       c.opts.dialTimeout,
	})
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return fmt.Errorf("client: open secure channel: %w", err)
	}
	channel.SetLogger(c.opts.logger)

	c.mu.Lock()
	c.channel = channel
	c.mu.Unlock()

	if err := c.createSession(ctx); err != nil {
		_ = channel.Close(ctx)
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}
	if err := c.activateSession(ctx); err != nil {
		_ = channel.Close(ctx)
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = StateConnected
	c.mu.Unlock()
	c.opts.logger.Info("connected to OPC UA server",
		zap.String("endpoint", c.endpointURL),
		zap.String("security_policy", c.opts.securityPolicyURI),
		zap.String("security_mode", c.opts.securityMode.String()))
	return nil
}

// Close closes the active session (if any) and the secure channel.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	channel := c.channel
	sessionOpen := c.sessionID != nil
	c.state = StateClosed
	c.sessionID = nil
	c.authToken = nil
	c.channel = nil
	c.mu.Unlock()

	if channel == nil {
		return nil
	}
	if sessionOpen {
		_, _ = c.closeSession(ctx, channel)
	}
	return channel.Close(ctx)
}

// Done returns a channel that closes when the underlying secure channel
// closes, whether from a caller-initiated Close or a transport failure.
// The supervisor package watches this to detect when a reconnect is
// needed. A Client that has never connected returns a nil channel, which
// blocks forever on receive — callers should check State first.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return nil
	}
	return c.channel.Done()
}

func (c *Client) nextRequestHandle() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestHandle++
	return c.requestHandle
}

func (c *Client) requestHeader() *ua.RequestHeader {
	c.mu.Lock()
	token := c.authToken
	c.mu.Unlock()
	return &ua.RequestHeader{
		AuthenticationToken: token,
		Timestamp:           time.Now(),
		RequestHandle:       c.nextRequestHandle(),
		TimeoutHint:         uint32(c.opts.requestTimeout / time.Millisecond),
	}
}

// GetEndpoints discovers the endpoints offered at endpointURL without
// creating a session, so the receiver can select a security policy before
// dialing a full session.
func GetEndpoints(ctx context.Context, endpointURL string) ([]*ua.EndpointDescription, error) {
	channel, err := uasc.Open(ctx, uasc.Config{
		EndpointURL:       endpointURL,
		SecurityPolicyURI: ua.SecurityPolicyURINone,
		SecurityMode:      ua.MessageSecurityModeNone,
		DialTimeout:       5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("client: open discovery channel: %w", err)
	}
	defer func() { _ = channel.Close(ctx) }()

	req := &ua.GetEndpointsRequest{
		Header:      &ua.RequestHeader{Timestamp: time.Now(), RequestHandle: 1},
		EndpointURL: endpointURL,
	}
	resp, err := sendTyped(ctx, channel, id.GetEndpointsRequestEncodingDefaultBinary, id.GetEndpointsResponseEncodingDefaultBinary, req.Encode, ua.DecodeGetEndpointsResponse)
	if err != nil {
		return nil, err
	}
	if resp.Header.ServiceResult.IsBad() {
		return nil, ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: GetEndpoints failed"))
	}
	return resp.Endpoints, nil
}
