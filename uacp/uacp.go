// Package uacp implements the OPC UA Connection Protocol (Part 6 §7): the
// raw opc.tcp transport, the Hello/Acknowledge handshake that negotiates
// buffer sizes, and framed message read/write beneath the secure-channel
// layer in package uasc.
package uacp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/duchuan123/opc-ua-client/ua"
)

// Message type codes carried in the first three bytes of every chunk header
// (Part 6 §7.1).
const (
	MessageTypeHello        = "HEL"
	MessageTypeAcknowledge  = "ACK"
	MessageTypeError        = "ERR"
	MessageTypeOpen         = "OPN"
	MessageTypeClose        = "CLO"
	MessageTypeSecureMsg    = "MSG"
)

// Chunk type bytes, the fourth byte of every header.
const (
	ChunkFinal        = 'F'
	ChunkIntermediate = 'C'
	ChunkAbort        = 'A'
)

const headerSize = 8

// DefaultBufferSize is the receive/send buffer size offered to the server
// during the Hello handshake when the caller does not override it.
const DefaultBufferSize = 64 * 1024

// DefaultMaxMessageSize bounds the largest reassembled message this client
// accepts, guarding against a malicious or buggy server driving unbounded
// memory growth via chunk count.
const DefaultMaxMessageSize = 16 * 1024 * 1024

// Conn wraps a raw TCP connection negotiated via Hello/Acknowledge, and
// performs chunk framing. It has no notion of security or sequence
// numbers; that is uasc's job.
type Conn struct {
	nc net.Conn

	sendBufferSize uint32
	recvBufferSize uint32
	maxMessageSize uint32
	maxChunkCount  uint32
}

// DialOptions configures the Hello request sent during Dial.
type DialOptions struct {
	BufferSize     uint32
	MaxMessageSize uint32
	Timeout        time.Duration
}

// Dial opens a TCP connection to endpointURL's host:port and performs the
// Hello/Acknowledge handshake.
func Dial(endpointURL string, opts DialOptions) (*Conn, error) {
	host, err := parseHostPort(endpointURL)
	if err != nil {
		return nil, err
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.MaxMessageSize == 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	nc, err := net.DialTimeout("tcp", host, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("uacp: dial %s: %w", host, err)
	}
	c := &Conn{nc: nc}
	if err := c.nc.SetDeadline(time.Now().Add(opts.Timeout)); err != nil {
		_ = nc.Close()
		return nil, err
	}
	if err := c.hello(endpointURL, opts); err != nil {
		_ = nc.Close()
		return nil, err
	}
	_ = c.nc.SetDeadline(time.Time{})
	return c, nil
}

func parseHostPort(endpointURL string) (string, error) {
	// "opc.tcp://host:port/path" -> "host:port"
	const scheme = "opc.tcp://"
	if len(endpointURL) <= len(scheme) || endpointURL[:len(scheme)] != scheme {
		return "", fmt.Errorf("uacp: endpoint URL %q missing opc.tcp scheme", endpointURL)
	}
	rest := endpointURL[len(scheme):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			rest = rest[:i]
			break
		}
	}
	if rest == "" {
		return "", fmt.Errorf("uacp: endpoint URL %q missing host", endpointURL)
	}
	return rest, nil
}

func (c *Conn) hello(endpointURL string, opts DialOptions) error {
	buf := ua.NewBuffer(nil)
	buf.WriteUint32(0) // protocol version
	buf.WriteUint32(opts.BufferSize)
	buf.WriteUint32(opts.BufferSize)
	buf.WriteUint32(opts.MaxMessageSize)
	buf.WriteUint32(0) // max chunk count, 0 = unlimited
	buf.WriteString(endpointURL)
	if err := buf.Error(); err != nil {
		return err
	}
	if err := writeFrame(c.nc, MessageTypeHello, ChunkFinal, buf.Bytes()); err != nil {
		return fmt.Errorf("uacp: send Hello: %w", err)
	}

	typ, _, body, err := readFrame(c.nc)
	if err != nil {
		return fmt.Errorf("uacp: read Acknowledge: %w", err)
	}
	switch typ {
	case MessageTypeAcknowledge:
		rbuf := ua.NewBuffer(body)
		_ = rbuf.ReadUint32() // protocol version
		c.recvBufferSize = rbuf.ReadUint32()
		c.sendBufferSize = rbuf.ReadUint32()
		c.maxMessageSize = rbuf.ReadUint32()
		c.maxChunkCount = rbuf.ReadUint32()
		return rbuf.Error()
	case MessageTypeError:
		code, reason := decodeError(body)
		return fmt.Errorf("uacp: server rejected Hello: %s (%s)", code, reason)
	default:
		return fmt.Errorf("uacp: unexpected message type %q in response to Hello", typ)
	}
}

func decodeError(body []byte) (ua.StatusCode, string) {
	buf := ua.NewBuffer(body)
	code := ua.StatusCode(buf.ReadUint32())
	reason := buf.ReadString()
	return code, reason
}

// SendBufferSize returns the negotiated maximum chunk size this side may
// send, as revised by the server's Acknowledge.
func (c *Conn) SendBufferSize() uint32 { return c.sendBufferSize }

// RecvBufferSize returns the negotiated maximum chunk size this side
// offered to receive.
func (c *Conn) RecvBufferSize() uint32 { return c.recvBufferSize }

// MaxMessageSize returns the negotiated maximum reassembled message size.
func (c *Conn) MaxMessageSize() uint32 { return c.maxMessageSize }

// WriteChunk writes one already-framed chunk body (everything after the
// 8-byte header) with the given message type and chunk type.
func (c *Conn) WriteChunk(msgType string, chunkType byte, body []byte) error {
	return writeFrame(c.nc, msgType, chunkType, body)
}

// ReadChunk reads one chunk, returning its message type, chunk type, and
// body (excluding the 8-byte header).
func (c *Conn) ReadChunk() (msgType string, chunkType byte, body []byte, err error) {
	return readFrame(c.nc)
}

// SetDeadline applies a read/write deadline to the underlying connection.
func (c *Conn) SetDeadline(t time.Time) error { return c.nc.SetDeadline(t) }

// Close closes the underlying TCP connection.
func (c *Conn) Close() error { return c.nc.Close() }

// LocalAddr and RemoteAddr expose the underlying connection's endpoints,
// used for logging.
func (c *Conn) LocalAddr() net.Addr  { return c.nc.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

func writeFrame(w io.Writer, msgType string, chunkType byte, body []byte) error {
	if len(msgType) != 3 {
		return fmt.Errorf("uacp: message type %q must be 3 bytes", msgType)
	}
	header := make([]byte, headerSize)
	copy(header[0:3], msgType)
	header[3] = chunkType
	binary.LittleEndian.PutUint32(header[4:8], uint32(headerSize+len(body)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader) (msgType string, chunkType byte, body []byte, err error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", 0, nil, err
	}
	msgType = string(header[0:3])
	chunkType = header[3]
	size := binary.LittleEndian.Uint32(header[4:8])
	if size < headerSize {
		return "", 0, nil, fmt.Errorf("uacp: chunk size %d smaller than header", size)
	}
	body = make([]byte, size-headerSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", 0, nil, err
	}
	return msgType, chunkType, body, nil
}
