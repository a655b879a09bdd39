package client

import (
	"context"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/duchuan123/opc-ua-client/id"
	"github.com/duchuan123/opc-ua-client/securitypolicy"
	"github.com/duchuan123/opc-ua-client/ua"
	"github.com/duchuan123/opc-ua-client/uasc"
)

const clientApplicationURI = "urn:opc-ua-client:client"

func (c *Client) createSession(ctx context.Context) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	req := &ua.CreateSessionRequest{
		Header: &ua.RequestHeader{Timestamp: time.Now(), RequestHandle: c.nextRequestHandle(), TimeoutHint: uint32(c.opts.requestTimeout / time.Millisecond)},
		ClientDescription: &ua.ApplicationDescription{
			ApplicationURI:  clientApplicationURI,
			ProductURI:      clientApplicationURI,
			ApplicationName: ua.LocalizedText{Text: "opc-ua-client"},
			ApplicationType: 1, // Client
		},
		EndpointURL:             c.endpointURL,
		SessionName:             fmt.Sprintf("%s-%d", clientApplicationURI, time.Now().UnixNano()),
		ClientCertificate:       c.opts.localCertificate,
		RequestedSessionTimeout: float64(c.opts.sessionTimeout / time.Millisecond),
		MaxResponseMessageSize:  uacpMaxMessageSize,
	}

	resp, err := sendTyped(ctx, channel, id.CreateSessionRequestEncodingDefaultBinary, id.CreateSessionResponseEncodingDefaultBinary, req.Encode, ua.DecodeCreateSessionResponse)
	if err != nil {
		return fmt.Errorf("client: CreateSession: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: CreateSession rejected"))
	}

	c.mu.Lock()
	c.sessionID = resp.SessionID
	c.authToken = resp.AuthenticationToken
	c.serverNonce = resp.ServerNonce
	c.mu.Unlock()
	return nil
}

// uacpMaxMessageSize bounds the response size this client will accept;
// kept generous since log/history reads can return large batches.
const uacpMaxMessageSize = 4 * 1024 * 1024

func (c *Client) activateSession(ctx context.Context) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	token, err := c.buildIdentityToken()
	if err != nil {
		return err
	}

	req := &ua.ActivateSessionRequest{
		Header:            c.requestHeader(),
		UserIdentityToken: token,
	}
	resp, err := sendTyped(ctx, channel, id.ActivateSessionRequestEncodingDefaultBinary, id.ActivateSessionResponseEncodingDefaultBinary, req.Encode, ua.DecodeActivateSessionResponse)
	if err != nil {
		return fmt.Errorf("client: ActivateSession: %w", err)
	}
	if resp.Header.ServiceResult.IsBad() {
		return ua.NewStatusError(resp.Header.ServiceResult, fmt.Errorf("client: ActivateSession rejected"))
	}
	c.mu.Lock()
	c.serverNonce = resp.ServerNonce
	c.mu.Unlock()
	return nil
}

func (c *Client) buildIdentityToken() (*ua.ExtensionObject, error) {
	switch c.opts.userTokenType {
	case ua.UserTokenTypeUserName:
		password, algorithm, err := c.encryptPassword()
		if err != nil {
			return nil, fmt.Errorf("client: encrypt user identity token: %w", err)
		}
		tok := &ua.UserNameIdentityToken{
			PolicyID:            "username",
			UserName:            c.opts.username,
			Password:            password,
			EncryptionAlgorithm: algorithm,
		}
		return &ua.ExtensionObject{TypeID: id.UserNameIdentityTokenEncodingDefaultBinary, Encoding: 1, Value: tok}, nil
	default:
		tok := &ua.AnonymousIdentityToken{PolicyID: "anonymous"}
		return &ua.ExtensionObject{TypeID: id.AnonymousIdentityTokenEncodingDefaultBinary, Encoding: 1, Value: tok}, nil
	}
}

// encryptPassword implements Part 4 §5.6.3.2's username/password protection:
// the UTF-8 password, length-prefixed, followed by the server nonce from
// CreateSession, is RSA-OAEP-encrypted under the server certificate using
// the session's negotiated security policy. Under MessageSecurityMode None,
// or when no server certificate is configured, the password travels as-is.
func (c *Client) encryptPassword() ([]byte, string, error) {
	c.mu.Lock()
	policyURI := c.opts.securityPolicyURI
	mode := c.opts.securityMode
	serverCert := c.opts.serverCertificate
	serverNonce := c.serverNonce
	c.mu.Unlock()

	password := []byte(c.opts.password)
	if mode == ua.MessageSecurityModeNone || len(serverCert) == 0 {
		return password, "", nil
	}

	policy, err := securitypolicy.ByURI(policyURI)
	if err != nil {
		return nil, "", err
	}
	cert, err := x509.ParseCertificate(serverCert)
	if err != nil {
		return nil, "", fmt.Errorf("parse server certificate: %w", err)
	}

	plain := ua.NewBuffer(nil)
	plain.WriteBytes(password)
	if err := plain.Error(); err != nil {
		return nil, "", err
	}
	data := append(plain.Bytes(), serverNonce...)

	cipher, err := policy.AsymmetricEncrypt(cert, data)
	if err != nil {
		return nil, "", fmt.Errorf("encrypt password: %w", err)
	}
	return cipher, policy.PasswordEncryptionAlgorithmURI(), nil
}

func (c *Client) closeSession(ctx context.Context, channel *uasc.SecureChannel) (*ua.CloseSessionResponse, error) {
	req := &ua.CloseSessionRequest{
		Header:              c.requestHeader(),
		DeleteSubscriptions: true,
	}
	return sendTyped(ctx, channel, id.CloseSessionRequestEncodingDefaultBinary, id.CloseSessionResponseEncodingDefaultBinary, req.Encode, ua.DecodeCloseSessionResponse)
}
