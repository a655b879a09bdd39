package uacp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duchuan123/opc-ua-client/ua"
)

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "host and port", url: "opc.tcp://127.0.0.1:4840", want: "127.0.0.1:4840"},
		{name: "host port and path", url: "opc.tcp://server:4840/some/path", want: "server:4840"},
		{name: "missing scheme", url: "tcp://server:4840", wantErr: true},
		{name: "missing host", url: "opc.tcp://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHostPort(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- writeFrame(client, MessageTypeHello, ChunkFinal, []byte("payload"))
	}()

	msgType, chunkType, body, err := readFrame(server)
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, MessageTypeHello, msgType)
	assert.Equal(t, byte(ChunkFinal), chunkType)
	assert.Equal(t, []byte("payload"), body)
}

func TestWriteFrameRejectsBadMessageType(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	err := writeFrame(client, "TOO_LONG", ChunkFinal, nil)
	assert.Error(t, err)
}

func TestDialHandshake(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	endpoint := "opc.tcp://" + ln.Addr().String()

	serverDone := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverDone <- err
			return
		}
		defer conn.Close()

		typ, _, _, err := readFrame(conn)
		if err != nil {
			serverDone <- err
			return
		}
		if typ != MessageTypeHello {
			serverDone <- nil
			return
		}

		buf := ua.NewBuffer(nil)
		buf.WriteUint32(0)
		buf.WriteUint32(DefaultBufferSize)
		buf.WriteUint32(DefaultBufferSize)
		buf.WriteUint32(DefaultMaxMessageSize)
		buf.WriteUint32(0)
		serverDone <- writeFrame(conn, MessageTypeAcknowledge, ChunkFinal, buf.Bytes())
	}()

	c, err := Dial(endpoint, DialOptions{Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, <-serverDone)
	assert.Equal(t, uint32(DefaultBufferSize), c.SendBufferSize())
	assert.Equal(t, uint32(DefaultBufferSize), c.RecvBufferSize())
	assert.Equal(t, uint32(DefaultMaxMessageSize), c.MaxMessageSize())
}

func TestDialRejectsNonOPCTCPEndpoint(t *testing.T) {
	_, err := Dial("http://127.0.0.1:4840", DialOptions{})
	assert.Error(t, err)
}

func TestDialSurfacesErrorResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	endpoint := "opc.tcp://" + ln.Addr().String()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, _, err := readFrame(conn); err != nil {
			return
		}
		buf := ua.NewBuffer(nil)
		buf.WriteUint32(uint32(ua.StatusBadTcpEndpointURLInvalid))
		buf.WriteString("bad endpoint")
		_ = writeFrame(conn, MessageTypeError, ChunkFinal, buf.Bytes())
	}()

	_, err = Dial(endpoint, DialOptions{Timeout: 2 * time.Second})
	assert.Error(t, err)
}
