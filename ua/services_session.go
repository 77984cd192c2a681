// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// GetEndpointsRequest asks a server which endpoints it exposes (Part 4,
// 5.4.4).
type GetEndpointsRequest struct {
	RequestHeader  RequestHeader
	EndpointURL    String
	LocaleIDs      []String
	ProfileURIs    []String
}

func (r *GetEndpointsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	ub, err := r.EndpointURL.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ub)
	if err := encodeStringArray(&b, r.LocaleIDs); err != nil {
		return nil, err
	}
	if err := encodeStringArray(&b, r.ProfileURIs); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (r *GetEndpointsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	url, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	locales, err := decodeStringArray(c)
	if err != nil {
		return c.pos, err
	}
	profiles, err := decodeStringArray(c)
	if err != nil {
		return c.pos, err
	}
	*r = GetEndpointsRequest{RequestHeader: hdr, EndpointURL: url, LocaleIDs: locales, ProfileURIs: profiles}
	return c.pos, nil
}

func encodeStringArray(b *buffer, arr []String) error {
	if arr == nil {
		b.writeInt32(-1)
		return nil
	}
	b.writeInt32(int32(len(arr)))
	for _, s := range arr {
		sb, err := s.Encode()
		if err != nil {
			return err
		}
		b.Write(sb)
	}
	return nil
}

func decodeStringArray(c *cursor) ([]String, error) {
	length, isNull, err := c.readLength(c.ctx.Limits.MaxArrayLength)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}
	out := make([]String, length)
	for i := range out {
		if out[i], err = decodeStringField(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetEndpointsResponse returns the endpoints a server exposes (Part 4,
// 5.4.4).
type GetEndpointsResponse struct {
	ResponseHeader ResponseHeader
	Endpoints      []EndpointDescription
}

func (r *GetEndpointsResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Endpoints == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.Endpoints)))
	for i := range r.Endpoints {
		eb, err := r.Endpoints[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(eb)
	}
	return b.Bytes(), nil
}

func (r *GetEndpointsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var endpoints []EndpointDescription
	if !isNull {
		endpoints = make([]EndpointDescription, length)
		for i := range endpoints {
			n, err := endpoints[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = GetEndpointsResponse{ResponseHeader: hdr, Endpoints: endpoints}
	return c.pos, nil
}

// CreateSessionRequest opens a new session on an already-secured channel
// (Part 4, 5.6.2).
type CreateSessionRequest struct {
	RequestHeader           RequestHeader
	ClientDescription       ApplicationDescription
	ServerURI               String
	EndpointURL             String
	SessionName             String
	ClientNonce             ByteString
	ClientCertificate       ByteString
	RequestedSessionTimeout float64
	MaxResponseMessageSize  uint32
}

func (r *CreateSessionRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if err := r.ClientDescription.encode(&b); err != nil {
		return nil, err
	}
	for _, s := range []*String{&r.ServerURI, &r.EndpointURL, &r.SessionName} {
		sb, err := s.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(sb)
	}
	nb, err := r.ClientNonce.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	cb, err := r.ClientCertificate.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(cb)
	b.writeFloat64(r.RequestedSessionTimeout)
	b.writeUint32(r.MaxResponseMessageSize)
	return b.Bytes(), nil
}

func (r *CreateSessionRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var clientDesc ApplicationDescription
	if err := clientDesc.decode(c); err != nil {
		return c.pos, err
	}
	serverURI, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	endpointURL, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	sessionName, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	var clientNonce, clientCert ByteString
	n, err = clientNonce.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	n, err = clientCert.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	timeout, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	maxSize, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*r = CreateSessionRequest{
		RequestHeader:           hdr,
		ClientDescription:       clientDesc,
		ServerURI:               serverURI,
		EndpointURL:             endpointURL,
		SessionName:             sessionName,
		ClientNonce:             clientNonce,
		ClientCertificate:       clientCert,
		RequestedSessionTimeout: timeout,
		MaxResponseMessageSize:  maxSize,
	}
	return c.pos, nil
}

// CreateSessionResponse answers a CreateSessionRequest with the new
// session's identity and the information needed to activate it (Part 4,
// 5.6.2).
type CreateSessionResponse struct {
	ResponseHeader          ResponseHeader
	SessionID               *NodeID
	AuthenticationToken      *NodeID
	RevisedSessionTimeout    float64
	ServerNonce              ByteString
	ServerCertificate        ByteString
	ServerEndpoints          []EndpointDescription
	ServerSignature          SignatureData
	MaxRequestMessageSize    uint32
}

func (r *CreateSessionResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	for _, id := range []*NodeID{r.SessionID, r.AuthenticationToken} {
		idb, err := id.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(idb)
	}
	b.writeFloat64(r.RevisedSessionTimeout)
	nb, err := r.ServerNonce.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	cb, err := r.ServerCertificate.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(cb)
	if r.ServerEndpoints == nil {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(r.ServerEndpoints)))
		for i := range r.ServerEndpoints {
			eb, err := r.ServerEndpoints[i].Encode()
			if err != nil {
				return nil, err
			}
			b.Write(eb)
		}
	}
	sb, err := r.ServerSignature.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(sb)
	b.writeUint32(r.MaxRequestMessageSize)
	return b.Bytes(), nil
}

func (r *CreateSessionResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var sessionID, authToken NodeID
	n, err = sessionID.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	n, err = authToken.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	timeout, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	var nonce, cert ByteString
	n, err = nonce.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	n, err = cert.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var endpoints []EndpointDescription
	if !isNull {
		endpoints = make([]EndpointDescription, length)
		for i := range endpoints {
			n, err := endpoints[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	var sig SignatureData
	n, err = sig.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	maxSize, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*r = CreateSessionResponse{
		ResponseHeader:        hdr,
		SessionID:             &sessionID,
		AuthenticationToken:   &authToken,
		RevisedSessionTimeout: timeout,
		ServerNonce:           nonce,
		ServerCertificate:     cert,
		ServerEndpoints:       endpoints,
		ServerSignature:       sig,
		MaxRequestMessageSize: maxSize,
	}
	return c.pos, nil
}

// ActivateSessionRequest binds an identity token to a previously created
// session (Part 4, 5.6.3).
type ActivateSessionRequest struct {
	RequestHeader      RequestHeader
	ClientSignature    SignatureData
	LocaleIDs          []String
	UserIdentityToken  *ExtensionObject
	UserTokenSignature SignatureData
}

func (r *ActivateSessionRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	sb, err := r.ClientSignature.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(sb)
	b.writeInt32(-1) // client software certificates: always empty, not supported
	if err := encodeStringArray(&b, r.LocaleIDs); err != nil {
		return nil, err
	}
	tok := r.UserIdentityToken
	if tok == nil {
		tok = &ExtensionObject{}
	}
	tb, err := tok.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(tb)
	ub, err := r.UserTokenSignature.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ub)
	return b.Bytes(), nil
}

func (r *ActivateSessionRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var clientSig SignatureData
	n, err = clientSig.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil { // skip software certificates
		return c.pos, err
	}
	locales, err := decodeStringArray(c)
	if err != nil {
		return c.pos, err
	}
	var tok ExtensionObject
	n, err = tok.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var userSig SignatureData
	n, err = userSig.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = ActivateSessionRequest{
		RequestHeader:      hdr,
		ClientSignature:    clientSig,
		LocaleIDs:          locales,
		UserIdentityToken:  &tok,
		UserTokenSignature: userSig,
	}
	return c.pos, nil
}

// ActivateSessionResponse answers an ActivateSessionRequest (Part 4,
// 5.6.3).
type ActivateSessionResponse struct {
	ResponseHeader ResponseHeader
	ServerNonce    ByteString
	Results        []StatusCode
}

func (r *ActivateSessionResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	nb, err := r.ServerNonce.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	if r.Results == nil {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(r.Results)))
		for _, s := range r.Results {
			b.writeUint32(uint32(s))
		}
	}
	b.writeInt32(-1) // diagnostic infos: not populated
	return b.Bytes(), nil
}

func (r *ActivateSessionResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var nonce ByteString
	n, err = nonce.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var results []StatusCode
	if !isNull {
		results = make([]StatusCode, length)
		for i := range results {
			v, err := c.readUint32()
			if err != nil {
				return c.pos, err
			}
			results[i] = StatusCode(v)
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil { // diagnostic infos
		return c.pos, err
	}
	*r = ActivateSessionResponse{ResponseHeader: hdr, ServerNonce: nonce, Results: results}
	return c.pos, nil
}

// CloseSessionRequest terminates a session (Part 4, 5.6.4).
type CloseSessionRequest struct {
	RequestHeader     RequestHeader
	DeleteSubscriptions bool
}

func (r *CloseSessionRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeBool(r.DeleteSubscriptions)
	return b.Bytes(), nil
}

func (r *CloseSessionRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	del, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	*r = CloseSessionRequest{RequestHeader: hdr, DeleteSubscriptions: del}
	return c.pos, nil
}

// CloseSessionResponse answers a CloseSessionRequest (Part 4, 5.6.4).
type CloseSessionResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSessionResponse) Encode() ([]byte, error) {
	return r.ResponseHeader.Encode()
}

func (r *CloseSessionResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	return r.ResponseHeader.DecodeWithContext(buf, ctx)
}
