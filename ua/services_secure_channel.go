// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// SecurityTokenRequestType selects whether an OpenSecureChannelRequest
// issues a new token or renews the current one (Part 4, 5.5.2).
type SecurityTokenRequestType uint32

const (
	SecurityTokenRequestTypeIssue  SecurityTokenRequestType = 0
	SecurityTokenRequestTypeRenew  SecurityTokenRequestType = 1
)

// MessageSecurityMode selects which of signing and encryption are applied
// to a secure channel's MSG chunks (Part 4, 7.15).
type MessageSecurityMode uint32

const (
	MessageSecurityModeInvalid        MessageSecurityMode = 0
	MessageSecurityModeNone           MessageSecurityMode = 1
	MessageSecurityModeSign           MessageSecurityMode = 2
	MessageSecurityModeSignAndEncrypt MessageSecurityMode = 3
)

// ChannelSecurityToken describes the lifetime of a negotiated secure
// channel token (Part 4, 7.6).
type ChannelSecurityToken struct {
	ChannelID       uint32
	TokenID         uint32
	CreatedAt       int64
	RevisedLifetime uint32
}

func (t *ChannelSecurityToken) encode(b *buffer) {
	b.writeUint32(t.ChannelID)
	b.writeUint32(t.TokenID)
	b.writeInt64(t.CreatedAt)
	b.writeUint32(t.RevisedLifetime)
}

func (t *ChannelSecurityToken) decode(c *cursor) error {
	var err error
	if t.ChannelID, err = c.readUint32(); err != nil {
		return err
	}
	if t.TokenID, err = c.readUint32(); err != nil {
		return err
	}
	if t.CreatedAt, err = c.readInt64(); err != nil {
		return err
	}
	if t.RevisedLifetime, err = c.readUint32(); err != nil {
		return err
	}
	return nil
}

// OpenSecureChannelRequest requests a new or renewed secure channel token
// (Part 4, 5.5.2).
type OpenSecureChannelRequest struct {
	RequestHeader   RequestHeader
	ClientProtocolVersion uint32
	RequestType     SecurityTokenRequestType
	SecurityMode    MessageSecurityMode
	ClientNonce     ByteString
	RequestedLifetime uint32
}

func (r *OpenSecureChannelRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.ClientProtocolVersion)
	b.writeUint32(uint32(r.RequestType))
	b.writeUint32(uint32(r.SecurityMode))
	nb, err := r.ClientNonce.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	b.writeUint32(r.RequestedLifetime)
	return b.Bytes(), nil
}

func (r *OpenSecureChannelRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	ver, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	reqType, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	mode, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var nonce ByteString
	n, err = nonce.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	lifetime, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*r = OpenSecureChannelRequest{
		RequestHeader:         hdr,
		ClientProtocolVersion: ver,
		RequestType:           SecurityTokenRequestType(reqType),
		SecurityMode:          MessageSecurityMode(mode),
		ClientNonce:           nonce,
		RequestedLifetime:     lifetime,
	}
	return c.pos, nil
}

// OpenSecureChannelResponse answers an OpenSecureChannelRequest with the
// negotiated token (Part 4, 5.5.2).
type OpenSecureChannelResponse struct {
	ResponseHeader ResponseHeader
	ServerProtocolVersion uint32
	SecurityToken  ChannelSecurityToken
	ServerNonce    ByteString
}

func (r *OpenSecureChannelResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.ServerProtocolVersion)
	r.SecurityToken.encode(&b)
	nb, err := r.ServerNonce.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	return b.Bytes(), nil
}

func (r *OpenSecureChannelResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	ver, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var tok ChannelSecurityToken
	if err := tok.decode(c); err != nil {
		return c.pos, err
	}
	var nonce ByteString
	n, err = nonce.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = OpenSecureChannelResponse{
		ResponseHeader:        hdr,
		ServerProtocolVersion: ver,
		SecurityToken:         tok,
		ServerNonce:           nonce,
	}
	return c.pos, nil
}

// CloseSecureChannelRequest tears down a secure channel (Part 4, 5.5.3).
type CloseSecureChannelRequest struct {
	RequestHeader RequestHeader
}

func (r *CloseSecureChannelRequest) Encode() ([]byte, error) {
	return r.RequestHeader.Encode()
}

func (r *CloseSecureChannelRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	return r.RequestHeader.DecodeWithContext(buf, ctx)
}

// CloseSecureChannelResponse is the (normally unsent) reply to a
// CloseSecureChannelRequest (Part 4, 5.5.3).
type CloseSecureChannelResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSecureChannelResponse) Encode() ([]byte, error) {
	return r.ResponseHeader.Encode()
}

func (r *CloseSecureChannelResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	return r.ResponseHeader.DecodeWithContext(buf, ctx)
}
