// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uacp

import (
	"net"
	"time"

	"github.com/vwopcua/opcua/debug"
	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

// Listener accepts uacp connections and performs the server side of the
// Hello/Acknowledge handshake before handing a Conn to the caller.
type Listener struct {
	ln          net.Listener
	endpointURL string
	cfg         *Config
}

// Listen binds addr and returns a Listener that serves endpointURL.
func Listen(addr, endpointURL string, cfg *Config) (*Listener, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "uacp: listen")
	}
	return &Listener{ln: ln, endpointURL: endpointURL, cfg: cfg}, nil
}

// Accept waits for the next client and completes the handshake on its
// behalf. It returns an error for I/O failures; a malformed Hello results
// in an ErrorMessage sent to the client and a non-nil error here too, since
// there is no usable Conn to return.
func (l *Listener) Accept() (*Conn, error) {
	netConn, err := l.ln.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "uacp: accept")
	}
	conn := &Conn{c: netConn}
	if err := conn.serverHandshake(l.endpointURL, l.cfg); err != nil {
		netConn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) serverHandshake(endpointURL string, cfg *Config) error {
	if cfg.HelloTimeout > 0 {
		c.c.SetReadDeadline(time.Now().Add(cfg.HelloTimeout))
		defer c.c.SetReadDeadline(time.Time{})
	}

	hdr, body, err := c.readMessage()
	if err != nil {
		return errors.Wrap(err, "uacp: waiting for hello")
	}
	if hdr.MessageType != MessageTypeHello {
		return c.sendError(ua.StatusBadTcpInternalError, "expected hello")
	}
	hello, err := DecodeHello(body)
	if err != nil {
		return c.sendError(ua.StatusBadDecodingError, "malformed hello")
	}
	debug.Printf("uacp: received hello from %s for %s", c.c.RemoteAddr(), hello.EndpointURL.Value())

	if hello.EndpointURL.Value() != endpointURL {
		return c.sendError(ua.StatusBadTcpEndpointURLInvalid, "endpoint url does not match any configured endpoint")
	}
	if violatesMinChunkSize(hello.ReceiveBufferSize) || violatesMinChunkSize(hello.SendBufferSize) {
		return c.sendError(ua.StatusBadTcpInternalError, "buffer size below the minimum chunk size")
	}

	c.endpointURL = endpointURL
	c.ReceiveBufferSize = minUint32NonZero(hello.ReceiveBufferSize, cfg.ReceiveBufferSize)
	c.SendBufferSize = minUint32NonZero(hello.SendBufferSize, cfg.SendBufferSize)
	c.MaxMessageSize = minUint32NonZero(hello.MaxMessageSize, cfg.MaxMessageSize)
	c.MaxChunkCount = minUint32NonZero(hello.MaxChunkCount, cfg.MaxChunkCount)

	ack := &Acknowledge{
		ProtocolVersion:   0,
		ReceiveBufferSize: c.ReceiveBufferSize,
		SendBufferSize:    c.SendBufferSize,
		MaxMessageSize:    c.MaxMessageSize,
		MaxChunkCount:     c.MaxChunkCount,
	}
	msg, err := ack.Encode()
	if err != nil {
		return err
	}
	_, werr := c.c.Write(msg)
	return werr
}

func (c *Conn) sendError(status ua.StatusCode, reason string) error {
	c.WriteError(status, reason)
	return errors.Errorf("uacp: %s: %s", status, reason)
}

// violatesMinChunkSize reports whether a client-offered buffer size is
// both set and smaller than minChunkSize; 0 means "no limit" and never
// violates it.
func violatesMinChunkSize(size uint32) bool {
	return size != 0 && size < minChunkSize
}

// minUint32NonZero treats 0 as "unbounded", so the minimum is only taken
// over the operands that actually bound something.
func minUint32NonZero(a, b uint32) uint32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }
