// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// ApplicationType classifies an ApplicationDescription (Part 4, 7.1).
type ApplicationType uint32

const (
	ApplicationTypeServer       ApplicationType = 0
	ApplicationTypeClient       ApplicationType = 1
	ApplicationTypeClientAndServer ApplicationType = 2
	ApplicationTypeDiscoveryServer ApplicationType = 3
)

// ApplicationDescription identifies an OPC-UA application (Part 4, 7.1).
type ApplicationDescription struct {
	ApplicationURI      String
	ProductURI          String
	ApplicationName     LocalizedText
	ApplicationType     ApplicationType
	GatewayServerURI    String
	DiscoveryProfileURI String
	DiscoveryURLs       []String
}

func (a *ApplicationDescription) encode(b *buffer) error {
	for _, s := range []*String{&a.ApplicationURI, &a.ProductURI} {
		sb, err := s.Encode()
		if err != nil {
			return err
		}
		b.Write(sb)
	}
	nb, err := a.ApplicationName.Encode()
	if err != nil {
		return err
	}
	b.Write(nb)
	b.writeUint32(uint32(a.ApplicationType))
	for _, s := range []*String{&a.GatewayServerURI, &a.DiscoveryProfileURI} {
		sb, err := s.Encode()
		if err != nil {
			return err
		}
		b.Write(sb)
	}
	if a.DiscoveryURLs == nil {
		b.writeInt32(-1)
		return nil
	}
	b.writeInt32(int32(len(a.DiscoveryURLs)))
	for _, s := range a.DiscoveryURLs {
		sb, err := s.Encode()
		if err != nil {
			return err
		}
		b.Write(sb)
	}
	return nil
}

func (a *ApplicationDescription) decode(c *cursor) error {
	var err error
	if a.ApplicationURI, err = decodeStringField(c); err != nil {
		return err
	}
	if a.ProductURI, err = decodeStringField(c); err != nil {
		return err
	}
	n, err := a.ApplicationName.DecodeWithContext(c.b[c.pos:], c.ctx)
	if err != nil {
		return err
	}
	c.pos += n
	appType, err := c.readUint32()
	if err != nil {
		return err
	}
	a.ApplicationType = ApplicationType(appType)
	if a.GatewayServerURI, err = decodeStringField(c); err != nil {
		return err
	}
	if a.DiscoveryProfileURI, err = decodeStringField(c); err != nil {
		return err
	}
	length, isNull, err := c.readLength(c.ctx.Limits.MaxArrayLength)
	if err != nil {
		return err
	}
	if !isNull {
		a.DiscoveryURLs = make([]String, length)
		for i := range a.DiscoveryURLs {
			if a.DiscoveryURLs[i], err = decodeStringField(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeStringField(c *cursor) (String, error) {
	var s String
	n, err := s.DecodeWithContext(c.b[c.pos:], c.ctx)
	if err != nil {
		return s, err
	}
	c.pos += n
	return s, nil
}

// UserTokenType enumerates the identity token kinds a server endpoint
// accepts (Part 4, 7.41).
type UserTokenType uint32

const (
	UserTokenTypeAnonymous UserTokenType = 0
	UserTokenTypeUserName  UserTokenType = 1
	UserTokenTypeCertificate UserTokenType = 2
	UserTokenTypeIssuedToken UserTokenType = 3
)

// UserTokenPolicy describes one identity token an endpoint will accept
// (Part 4, 7.41).
type UserTokenPolicy struct {
	PolicyID          String
	TokenType         UserTokenType
	IssuedTokenType   String
	IssuerEndpointURL String
	SecurityPolicyURI String
}

func (p *UserTokenPolicy) encode(b *buffer) error {
	pb, err := p.PolicyID.Encode()
	if err != nil {
		return err
	}
	b.Write(pb)
	b.writeUint32(uint32(p.TokenType))
	for _, s := range []*String{&p.IssuedTokenType, &p.IssuerEndpointURL, &p.SecurityPolicyURI} {
		sb, err := s.Encode()
		if err != nil {
			return err
		}
		b.Write(sb)
	}
	return nil
}

func (p *UserTokenPolicy) decode(c *cursor) error {
	var err error
	if p.PolicyID, err = decodeStringField(c); err != nil {
		return err
	}
	tt, err := c.readUint32()
	if err != nil {
		return err
	}
	p.TokenType = UserTokenType(tt)
	if p.IssuedTokenType, err = decodeStringField(c); err != nil {
		return err
	}
	if p.IssuerEndpointURL, err = decodeStringField(c); err != nil {
		return err
	}
	if p.SecurityPolicyURI, err = decodeStringField(c); err != nil {
		return err
	}
	return nil
}

// EndpointDescription describes one reachable combination of transport,
// security policy and identity tokens at a server (Part 4, 7.10).
type EndpointDescription struct {
	EndpointURL         String
	Server              ApplicationDescription
	ServerCertificate   ByteString
	SecurityMode        MessageSecurityMode
	SecurityPolicyURI   String
	UserIdentityTokens  []UserTokenPolicy
	TransportProfileURI String
	SecurityLevel       byte
}

func (e *EndpointDescription) Encode() ([]byte, error) {
	var b buffer
	ub, err := e.EndpointURL.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ub)
	if err := e.Server.encode(&b); err != nil {
		return nil, err
	}
	cb, err := e.ServerCertificate.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(cb)
	b.writeUint32(uint32(e.SecurityMode))
	spb, err := e.SecurityPolicyURI.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(spb)
	if e.UserIdentityTokens == nil {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(e.UserIdentityTokens)))
		for i := range e.UserIdentityTokens {
			if err := e.UserIdentityTokens[i].encode(&b); err != nil {
				return nil, err
			}
		}
	}
	tb, err := e.TransportProfileURI.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(tb)
	b.writeUint8(e.SecurityLevel)
	return b.Bytes(), nil
}

func (e *EndpointDescription) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var err error
	if e.EndpointURL, err = decodeStringField(c); err != nil {
		return c.pos, err
	}
	if err := e.Server.decode(c); err != nil {
		return c.pos, err
	}
	n, err := e.ServerCertificate.DecodeWithContext(c.b[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	mode, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	e.SecurityMode = MessageSecurityMode(mode)
	if e.SecurityPolicyURI, err = decodeStringField(c); err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	if !isNull {
		e.UserIdentityTokens = make([]UserTokenPolicy, length)
		for i := range e.UserIdentityTokens {
			if err := e.UserIdentityTokens[i].decode(c); err != nil {
				return c.pos, err
			}
		}
	}
	if e.TransportProfileURI, err = decodeStringField(c); err != nil {
		return c.pos, err
	}
	if e.SecurityLevel, err = c.readUint8(); err != nil {
		return c.pos, err
	}
	return c.pos, nil
}

// SignatureData holds a signature produced with an asymmetric private key
// (Part 4, 7.34), used to prove possession of a certificate's key during
// channel opening and session activation.
type SignatureData struct {
	Algorithm String
	Signature ByteString
}

func (s *SignatureData) Encode() ([]byte, error) {
	var b buffer
	ab, err := s.Algorithm.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ab)
	sb, err := s.Signature.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(sb)
	return b.Bytes(), nil
}

func (s *SignatureData) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var err error
	if s.Algorithm, err = decodeStringField(c); err != nil {
		return c.pos, err
	}
	n, err := s.Signature.DecodeWithContext(c.b[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	return c.pos, nil
}
