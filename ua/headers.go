// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "time"

// RequestHeader is prepended to every service request (Part 4, 7.29).
type RequestHeader struct {
	AuthenticationToken *NodeID
	Timestamp           time.Time
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        String
	TimeoutHint         uint32
	AdditionalHeader    *ExtensionObject
}

// Encode implements the binary RequestHeader encoding.
func (h *RequestHeader) Encode() ([]byte, error) {
	var b buffer
	tok := h.AuthenticationToken
	if tok == nil {
		tok = NewTwoByteNodeID(0)
	}
	tb, err := tok.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(tb)
	b.writeInt64(EncodeDateTime(h.Timestamp))
	b.writeUint32(h.RequestHandle)
	b.writeUint32(h.ReturnDiagnostics)
	ab, err := h.AuditEntryID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ab)
	b.writeUint32(h.TimeoutHint)
	hdr := h.AdditionalHeader
	if hdr == nil {
		hdr = &ExtensionObject{}
	}
	hb, err := hdr.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary RequestHeader decoding.
func (h *RequestHeader) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var tok NodeID
	n, err := tok.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n

	ts, err := c.readInt64()
	if err != nil {
		return c.pos, err
	}
	handle, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	diag, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var audit String
	n, err = audit.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	timeout, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var add ExtensionObject
	n, err = add.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n

	*h = RequestHeader{
		AuthenticationToken: &tok,
		Timestamp:           DecodeDateTime(ts),
		RequestHandle:       handle,
		ReturnDiagnostics:   diag,
		AuditEntryID:        audit,
		TimeoutHint:         timeout,
		AdditionalHeader:    &add,
	}
	return c.pos, nil
}

// ResponseHeader is prepended to every service response (Part 4, 7.30).
type ResponseHeader struct {
	Timestamp          time.Time
	RequestHandle      uint32
	ServiceResult      StatusCode
	ServiceDiagnostics DiagnosticInfo
	StringTable        []String
	AdditionalHeader   *ExtensionObject
}

// Encode implements the binary ResponseHeader encoding.
func (h *ResponseHeader) Encode() ([]byte, error) {
	var b buffer
	b.writeInt64(EncodeDateTime(h.Timestamp))
	b.writeUint32(h.RequestHandle)
	b.writeUint32(uint32(h.ServiceResult))
	b.writeUint8(0) // DiagnosticInfo encoding mask: none present
	if len(h.StringTable) == 0 {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(h.StringTable)))
		for _, s := range h.StringTable {
			sb, err := s.Encode()
			if err != nil {
				return nil, err
			}
			b.Write(sb)
		}
	}
	hdr := h.AdditionalHeader
	if hdr == nil {
		hdr = &ExtensionObject{}
	}
	hb, err := hdr.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary ResponseHeader decoding.
func (h *ResponseHeader) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	ts, err := c.readInt64()
	if err != nil {
		return c.pos, err
	}
	handle, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	result, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	if _, err := c.readUint8(); err != nil { // DiagnosticInfo mask, unread fields ignored
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var table []String
	if !isNull {
		table = make([]String, length)
		for i := range table {
			n, err := table[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	var add ExtensionObject
	n, err := add.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n

	*h = ResponseHeader{
		Timestamp:        DecodeDateTime(ts),
		RequestHandle:    handle,
		ServiceResult:    StatusCode(result),
		StringTable:      table,
		AdditionalHeader: &add,
	}
	return c.pos, nil
}
