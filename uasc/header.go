// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package uasc implements the OPC-UA secure channel layer: chunk framing,
// sequencing, and the Open/CloseSecureChannel state machine that sits
// between a uacp.Conn and the service-level request/response traffic.
//
// An OPN chunk's receiver certificate thumbprint must be either absent or
// exactly 20 bytes, whatever the security mode; AsymmetricSecurityHeader.Decode
// rejects any other length.
package uasc

import (
	"encoding/binary"

	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

const commonHeaderLen = 12 // 3-byte message type + chunk type + uint32 size + uint32 secure channel id

// byteStringOrNull treats an absent (nil or empty) certificate/thumbprint as
// the null byte string rather than a zero-length one, matching how
// certificates are actually encoded when MessageSecurityMode is None.
func byteStringOrNull(b []byte) ua.ByteString {
	if len(b) == 0 {
		return ua.NullByteString()
	}
	return ua.NewByteString(b)
}

// Header is the 12-byte prefix shared by every OPN/MSG/CLO chunk (Part 6,
// 7.2).
type Header struct {
	MessageType string // "OPN", "MSG" or "CLO"
	ChunkType   byte   // 'F' final, 'C' continuation, 'A' abort
	MessageSize uint32
	SecureChannelID uint32
}

// Encode writes the 12-byte common header.
func (h *Header) Encode() []byte {
	buf := make([]byte, commonHeaderLen)
	copy(buf[0:3], h.MessageType)
	buf[3] = h.ChunkType
	binary.LittleEndian.PutUint32(buf[4:8], h.MessageSize)
	binary.LittleEndian.PutUint32(buf[8:12], h.SecureChannelID)
	return buf
}

// Decode reads a Header from the first 12 bytes of buf.
func (h *Header) Decode(buf []byte) (int, error) {
	if len(buf) < commonHeaderLen {
		return 0, errors.Errorf("uasc: short header, got %d bytes", len(buf))
	}
	h.MessageType = string(buf[0:3])
	h.ChunkType = buf[3]
	h.MessageSize = binary.LittleEndian.Uint32(buf[4:8])
	h.SecureChannelID = binary.LittleEndian.Uint32(buf[8:12])
	return commonHeaderLen, nil
}

// AsymmetricSecurityHeader precedes the sequence header in every OPN chunk
// (Part 6, 7.2.2).
type AsymmetricSecurityHeader struct {
	SecurityPolicyURI              string
	SenderCertificate               []byte
	ReceiverCertificateThumbprint   []byte
}

// Encode writes the security header.
func (a *AsymmetricSecurityHeader) Encode() ([]byte, error) {
	var out []byte
	ub, err := ua.NewString(a.SecurityPolicyURI).Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, ub...)
	cb, err := byteStringOrNull(a.SenderCertificate).Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, cb...)
	tb, err := byteStringOrNull(a.ReceiverCertificateThumbprint).Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, tb...)
	return out, nil
}

// Decode reads the security header from the start of buf.
func (a *AsymmetricSecurityHeader) Decode(buf []byte) (int, error) {
	var pos int
	var uri ua.String
	n, err := uri.Decode(buf[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	var cert, thumb ua.ByteString
	n, err = cert.Decode(buf[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	n, err = thumb.Decode(buf[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	if len(thumb.Value()) != 0 && len(thumb.Value()) != 20 {
		return pos, errors.Errorf("uasc: receiver certificate thumbprint must be 0 or 20 bytes, got %d", len(thumb.Value()))
	}
	a.SecurityPolicyURI = uri.Value()
	a.SenderCertificate = cert.Value()
	a.ReceiverCertificateThumbprint = thumb.Value()
	return pos, nil
}

// SequenceHeader orders chunks within a request/response and correlates
// them by request id (Part 6, 7.2.4).
type SequenceHeader struct {
	SequenceNumber uint32
	RequestID      uint32
}

const sequenceHeaderLen = 8

// Encode writes the 8-byte sequence header.
func (s *SequenceHeader) Encode() []byte {
	buf := make([]byte, sequenceHeaderLen)
	binary.LittleEndian.PutUint32(buf[0:4], s.SequenceNumber)
	binary.LittleEndian.PutUint32(buf[4:8], s.RequestID)
	return buf
}

// Decode reads a SequenceHeader from the start of buf.
func (s *SequenceHeader) Decode(buf []byte) (int, error) {
	if len(buf) < sequenceHeaderLen {
		return 0, errors.Errorf("uasc: short sequence header, got %d bytes", len(buf))
	}
	s.SequenceNumber = binary.LittleEndian.Uint32(buf[0:4])
	s.RequestID = binary.LittleEndian.Uint32(buf[4:8])
	return sequenceHeaderLen, nil
}

// MessageChunk is one decoded OPN/MSG/CLO chunk: the common header, the
// security header appropriate to its MessageType, the sequence header, and
// the remaining service payload.
type MessageChunk struct {
	Header                   *Header
	AsymmetricSecurityHeader *AsymmetricSecurityHeader
	SecurityTokenID          uint32
	SequenceHeader           *SequenceHeader
	Data                     []byte
}

// Decode parses a full chunk (header included) received from a uacp.Conn.
func (m *MessageChunk) Decode(b []byte) (int, error) {
	h := new(Header)
	n, err := h.Decode(b)
	if err != nil {
		return 0, err
	}
	pos := n
	m.Header = h

	switch h.MessageType {
	case "OPN":
		sh := new(AsymmetricSecurityHeader)
		n, err := sh.Decode(b[pos:])
		if err != nil {
			return pos, err
		}
		pos += n
		m.AsymmetricSecurityHeader = sh
	case "MSG", "CLO":
		if len(b[pos:]) < 4 {
			return pos, errors.Errorf("uasc: short symmetric security header")
		}
		m.SecurityTokenID = binary.LittleEndian.Uint32(b[pos : pos+4])
		pos += 4
	default:
		return pos, errors.Errorf("uasc: unknown message type %q", h.MessageType)
	}

	if h.ChunkType == 'A' {
		m.Data = b[pos:]
		return len(b), nil
	}

	seq := new(SequenceHeader)
	n, err = seq.Decode(b[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	m.SequenceHeader = seq
	m.Data = b[pos:]
	return len(b), nil
}

// MessageAbort is the body of an 'A'-chunk, sent by either peer in place of
// a partial message when it must abandon reassembly (Part 6, 7.2.3).
type MessageAbort struct {
	ErrorCode uint32
	Reason    string
}

// Decode reads a MessageAbort body.
func (m *MessageAbort) Decode(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, errors.Errorf("uasc: short abort body")
	}
	m.ErrorCode = binary.LittleEndian.Uint32(b[0:4])
	var reason ua.String
	n, err := reason.Decode(b[4:])
	if err != nil {
		return 4, err
	}
	m.Reason = reason.Value()
	return 4 + n, nil
}

// Encode writes a MessageAbort body.
func (m *MessageAbort) Encode() ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, m.ErrorCode)
	rb, err := ua.NewString(m.Reason).Encode()
	if err != nil {
		return nil, err
	}
	return append(buf, rb...), nil
}
