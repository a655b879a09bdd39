package client

import (
	"context"
	"fmt"

	"github.com/duchuan123/opc-ua-client/id"
	"github.com/duchuan123/opc-ua-client/ua"
	"github.com/duchuan123/opc-ua-client/uasc"
)

// sendTyped writes a message body prefixed with its TypeId NodeId
// (requestTypeID), sends it over channel, and decodes the response body
// after checking its TypeId matches responseTypeID. A ServiceFault
// envelope is recognized and surfaced as a StatusError regardless of
// which service was called, mirroring Part 4 §7.38.
func sendTyped[Resp any](
	ctx context.Context,
	channel *uasc.SecureChannel,
	requestTypeID, responseTypeID *ua.NodeID,
	encode func(*ua.Buffer),
	decode func(*ua.Buffer) *Resp,
) (*Resp, error) {
	buf := ua.NewBuffer(nil)
	ua.EncodeNodeID(requestTypeID, buf)
	encode(buf)
	if err := buf.Error(); err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}

	respBody, err := channel.Send(ctx, buf.Bytes())
	if err != nil {
		return nil, err
	}

	rbuf := ua.NewBuffer(respBody)
	gotType := ua.DecodeNodeID(rbuf)
	if gotType.Equal(id.ServiceFaultEncodingDefaultBinary) {
		h := ua.DecodeResponseHeader(rbuf)
		return nil, ua.NewStatusError(h.ServiceResult, fmt.Errorf("client: service fault"))
	}
	if !gotType.Equal(responseTypeID) {
		return nil, fmt.Errorf("client: unexpected response type %s, want %s", gotType, responseTypeID)
	}
	resp := decode(rbuf)
	if err := rbuf.Error(); err != nil {
		return nil, fmt.Errorf("client: decode response: %w", err)
	}
	return resp, nil
}
