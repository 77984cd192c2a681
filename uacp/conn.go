// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uacp

import (
	"context"
	"net"
	"time"

	"github.com/vwopcua/opcua/debug"
	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

// DefaultReceiveBufferSize and DefaultSendBufferSize bound a single chunk,
// matching the values gopcua and most server stacks propose by default.
const (
	DefaultReceiveBufferSize = 64 * 1024
	DefaultSendBufferSize    = 64 * 1024
	DefaultMaxMessageSize    = 16 * 1024 * 1024
	DefaultMaxChunkCount     = 512

	// minChunkSize is the smallest buffer size the wire format allows (Part
	// 6, 7.1.2.2): a Hello offering less is rejected outright.
	minChunkSize = 8192
)

// Config bounds the buffer sizes a Conn negotiates during the Hello/
// Acknowledge handshake.
type Config struct {
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
	DialTimeout       time.Duration

	// HelloTimeout bounds how long a Listener waits for a client's initial
	// Hello before giving up on the connection.
	HelloTimeout time.Duration
}

// DefaultConfig returns the buffer sizes this stack proposes when none are
// given explicitly.
func DefaultConfig() *Config {
	return &Config{
		ReceiveBufferSize: DefaultReceiveBufferSize,
		SendBufferSize:    DefaultSendBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		MaxChunkCount:     DefaultMaxChunkCount,
		DialTimeout:       5 * time.Second,
		HelloTimeout:      5 * time.Second,
	}
}

// Conn is a raw uacp connection: a TCP socket past the Hello/Acknowledge
// handshake, framing whole messages (header + body) for the uasc layer
// above. It performs no chunk reassembly of its own.
type Conn struct {
	c                 net.Conn
	endpointURL       string
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// Dial opens a TCP connection to endpointURL's host:port and performs the
// Hello/Acknowledge handshake.
func Dial(ctx context.Context, endpointURL string, cfg *Config) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	host, err := hostPort(endpointURL)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	netConn, err := d.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return nil, errors.Wrap(err, "uacp: dial")
	}

	conn := &Conn{c: netConn, endpointURL: endpointURL}
	if err := conn.handshake(cfg); err != nil {
		netConn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) handshake(cfg *Config) error {
	hello := &Hello{
		ProtocolVersion:   0,
		ReceiveBufferSize: cfg.ReceiveBufferSize,
		SendBufferSize:    cfg.SendBufferSize,
		MaxMessageSize:    cfg.MaxMessageSize,
		MaxChunkCount:     cfg.MaxChunkCount,
		EndpointURL:       ua.NewString(c.endpointURL),
	}
	msg, err := hello.Encode()
	if err != nil {
		return err
	}
	if _, err := c.c.Write(msg); err != nil {
		return errors.Wrap(err, "uacp: writing hello")
	}
	debug.Printf("uacp: sent hello to %s", c.endpointURL)

	hdr, body, err := c.readMessage()
	if err != nil {
		return err
	}
	switch hdr.MessageType {
	case MessageTypeAck:
		ack, err := DecodeAcknowledge(body)
		if err != nil {
			return err
		}
		c.ReceiveBufferSize = ack.ReceiveBufferSize
		c.SendBufferSize = ack.SendBufferSize
		c.MaxMessageSize = ack.MaxMessageSize
		c.MaxChunkCount = ack.MaxChunkCount
		return nil
	case MessageTypeError:
		em, err := DecodeErrorMessage(body)
		if err != nil {
			return err
		}
		return errors.Errorf("uacp: server rejected hello: %s (%s)", em.Error, em.Reason.Value())
	default:
		return errors.Errorf("uacp: unexpected message type %q during handshake", hdr.MessageType)
	}
}

// Write sends a single already-framed message (header + body).
func (c *Conn) Write(msg []byte) error {
	_, err := c.c.Write(msg)
	return err
}

// ReadMessage reads the next full uacp/uasc message and returns its header
// and body.
func (c *Conn) ReadMessage() (*Header, []byte, error) {
	return c.readMessage()
}

func (c *Conn) readMessage() (*Header, []byte, error) {
	hdrBuf := make([]byte, headerLen)
	if _, err := readFull(c.c, hdrBuf); err != nil {
		return nil, nil, errors.Wrap(err, "uacp: reading header")
	}
	hdr, err := DecodeHeader(hdrBuf)
	if err != nil {
		return nil, nil, err
	}
	if hdr.MessageSize < headerLen {
		return nil, nil, errors.Errorf("uacp: message size %d smaller than header", hdr.MessageSize)
	}
	body := make([]byte, hdr.MessageSize-headerLen)
	if _, err := readFull(c.c, body); err != nil {
		return nil, nil, errors.Wrap(err, "uacp: reading body")
	}
	return hdr, body, nil
}

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteError sends an ErrorMessage frame, used both to reject a handshake
// and by the uasc layer above to report a fatal protocol violation before
// closing the connection.
func (c *Conn) WriteError(status ua.StatusCode, reason string) error {
	em := &ErrorMessage{Error: status, Reason: ua.NewString(reason)}
	msg, err := em.Encode()
	if err != nil {
		return err
	}
	_, err = c.c.Write(msg)
	return err
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.c.Close() }

// LocalAddr and RemoteAddr expose the underlying socket's endpoints, used
// by the secure channel layer for diagnostics.
func (c *Conn) LocalAddr() net.Addr  { return c.c.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

func hostPort(endpointURL string) (string, error) {
	u, err := splitEndpointURL(endpointURL)
	if err != nil {
		return "", err
	}
	return u, nil
}

// splitEndpointURL extracts the host:port a TCP dial needs from an
// opc.tcp:// endpoint URL, ignoring the path component servers use to pick
// an address-space view.
func splitEndpointURL(endpointURL string) (string, error) {
	const scheme = "opc.tcp://"
	if len(endpointURL) <= len(scheme) || endpointURL[:len(scheme)] != scheme {
		return "", errors.Errorf("uacp: endpoint url %q is not an opc.tcp:// url", endpointURL)
	}
	rest := endpointURL[len(scheme):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			rest = rest[:i]
			break
		}
	}
	if rest == "" {
		return "", errors.Errorf("uacp: endpoint url %q has no host", endpointURL)
	}
	if _, _, err := net.SplitHostPort(rest); err != nil {
		return rest + ":4840", nil
	}
	return rest, nil
}
