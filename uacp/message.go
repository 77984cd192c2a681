// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package uacp implements the OPC-UA TCP transport: the Hello/Acknowledge/
// Error handshake that precedes a secure channel (Part 6, 7.1).
package uacp

import (
	"encoding/binary"

	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

// MessageType identifies one of the three uacp handshake messages.
type MessageType [3]byte

var (
	MessageTypeHello MessageType = [3]byte{'H', 'E', 'L'}
	MessageTypeAck   MessageType = [3]byte{'A', 'C', 'K'}
	MessageTypeError MessageType = [3]byte{'E', 'R', 'R'}
)

const headerLen = 8 // 3-byte message type + 1-byte chunk type + 4-byte size

// Header is the 8-byte prefix common to every uacp and uasc chunk (Part 6,
// 7.1.2.2).
type Header struct {
	MessageType MessageType
	ChunkType   byte
	MessageSize uint32
}

// Encode writes the header's wire form.
func (h *Header) Encode() []byte {
	buf := make([]byte, headerLen)
	copy(buf[0:3], h.MessageType[:])
	buf[3] = h.ChunkType
	binary.LittleEndian.PutUint32(buf[4:8], h.MessageSize)
	return buf
}

// DecodeHeader reads a Header from the first 8 bytes of buf.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < headerLen {
		return nil, errors.Errorf("uacp: short header, got %d bytes", len(buf))
	}
	return &Header{
		MessageType: MessageType{buf[0], buf[1], buf[2]},
		ChunkType:   buf[3],
		MessageSize: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// Hello is the first message a client sends after the TCP connection is
// established, proposing buffer sizes and the endpoint it wants to reach
// (Part 6, 7.1.2.3).
type Hello struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
	EndpointURL       ua.String
}

// Encode returns the full wire message, header included.
func (h *Hello) Encode() ([]byte, error) {
	body := make([]byte, 0, 20)
	body = appendUint32(body, h.ProtocolVersion)
	body = appendUint32(body, h.ReceiveBufferSize)
	body = appendUint32(body, h.SendBufferSize)
	body = appendUint32(body, h.MaxMessageSize)
	body = appendUint32(body, h.MaxChunkCount)
	eb, err := h.EndpointURL.Encode()
	if err != nil {
		return nil, err
	}
	body = append(body, eb...)

	hdr := Header{MessageType: MessageTypeHello, ChunkType: 'F', MessageSize: uint32(headerLen + len(body))}
	return append(hdr.Encode(), body...), nil
}

// DecodeHello decodes a Hello message body (the header already stripped).
func DecodeHello(body []byte) (*Hello, error) {
	if len(body) < 20 {
		return nil, errors.Errorf("uacp: short hello body, got %d bytes", len(body))
	}
	h := &Hello{
		ProtocolVersion:   binary.LittleEndian.Uint32(body[0:4]),
		ReceiveBufferSize: binary.LittleEndian.Uint32(body[4:8]),
		SendBufferSize:    binary.LittleEndian.Uint32(body[8:12]),
		MaxMessageSize:    binary.LittleEndian.Uint32(body[12:16]),
		MaxChunkCount:     binary.LittleEndian.Uint32(body[16:20]),
	}
	var url ua.String
	if _, err := url.Decode(body[20:]); err != nil {
		return nil, err
	}
	h.EndpointURL = url
	return h, nil
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// Acknowledge answers a Hello with the connection parameters the server
// actually accepts (Part 6, 7.1.2.4).
type Acknowledge struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// Encode returns the full wire message, header included.
func (a *Acknowledge) Encode() ([]byte, error) {
	body := make([]byte, 0, 20)
	body = appendUint32(body, a.ProtocolVersion)
	body = appendUint32(body, a.ReceiveBufferSize)
	body = appendUint32(body, a.SendBufferSize)
	body = appendUint32(body, a.MaxMessageSize)
	body = appendUint32(body, a.MaxChunkCount)

	hdr := Header{MessageType: MessageTypeAck, ChunkType: 'F', MessageSize: uint32(headerLen + len(body))}
	return append(hdr.Encode(), body...), nil
}

// DecodeAcknowledge decodes an Acknowledge message body.
func DecodeAcknowledge(body []byte) (*Acknowledge, error) {
	if len(body) < 20 {
		return nil, errors.Errorf("uacp: short acknowledge body, got %d bytes", len(body))
	}
	return &Acknowledge{
		ProtocolVersion:   binary.LittleEndian.Uint32(body[0:4]),
		ReceiveBufferSize: binary.LittleEndian.Uint32(body[4:8]),
		SendBufferSize:    binary.LittleEndian.Uint32(body[8:12]),
		MaxMessageSize:    binary.LittleEndian.Uint32(body[12:16]),
		MaxChunkCount:     binary.LittleEndian.Uint32(body[16:20]),
	}, nil
}

// ErrorMessage aborts the connection before a secure channel exists, e.g.
// because the proposed EndpointURL is unknown (Part 6, 7.1.2.5).
type ErrorMessage struct {
	Error  ua.StatusCode
	Reason ua.String
}

// Encode returns the full wire message, header included.
func (e *ErrorMessage) Encode() ([]byte, error) {
	body := appendUint32(nil, uint32(e.Error))
	rb, err := e.Reason.Encode()
	if err != nil {
		return nil, err
	}
	body = append(body, rb...)

	hdr := Header{MessageType: MessageTypeError, ChunkType: 'F', MessageSize: uint32(headerLen + len(body))}
	return append(hdr.Encode(), body...), nil
}

// DecodeErrorMessage decodes an ErrorMessage body.
func DecodeErrorMessage(body []byte) (*ErrorMessage, error) {
	if len(body) < 4 {
		return nil, errors.Errorf("uacp: short error body, got %d bytes", len(body))
	}
	e := &ErrorMessage{Error: ua.StatusCode(binary.LittleEndian.Uint32(body[0:4]))}
	var reason ua.String
	if len(body) > 4 {
		if _, err := reason.Decode(body[4:]); err != nil {
			return nil, err
		}
	}
	e.Reason = reason
	return e, nil
}
