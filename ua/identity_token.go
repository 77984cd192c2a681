// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "github.com/vwopcua/opcua/id"

// AnonymousIdentityToken is used when a session is activated without
// authentication (Part 4, 7.3).
type AnonymousIdentityToken struct {
	PolicyID String
}

// Encode wraps the token body in an ExtensionObject using its registered
// binary encoding id.
func (t *AnonymousIdentityToken) Encode() (*ExtensionObject, error) {
	pb, err := t.PolicyID.Encode()
	if err != nil {
		return nil, err
	}
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.AnonymousIdentityToken_Encoding_DefaultBinary)), pb), nil
}

func decodeAnonymousIdentityToken(body []byte, ctx *Context) (*AnonymousIdentityToken, error) {
	var policy String
	if _, err := policy.DecodeWithContext(body, ctx); err != nil {
		return nil, err
	}
	return &AnonymousIdentityToken{PolicyID: policy}, nil
}

// UserNameIdentityToken authenticates a session with a username and an
// encrypted password (Part 4, 7.40).
type UserNameIdentityToken struct {
	PolicyID            String
	UserName             String
	Password             ByteString
	EncryptionAlgorithm  String
}

func (t *UserNameIdentityToken) Encode() (*ExtensionObject, error) {
	var b buffer
	for _, enc := range []func() ([]byte, error){t.PolicyID.Encode, t.UserName.Encode} {
		eb, err := enc()
		if err != nil {
			return nil, err
		}
		b.Write(eb)
	}
	pb, err := t.Password.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(pb)
	ab, err := t.EncryptionAlgorithm.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ab)
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.UserNameIdentityToken_Encoding_DefaultBinary)), b.Bytes()), nil
}

func decodeUserNameIdentityToken(body []byte, ctx *Context) (*UserNameIdentityToken, error) {
	c := newCursor(body, ctx)
	var policy, user String
	var password ByteString
	var alg String
	n, err := policy.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	n, err = user.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	n, err = password.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	if _, err := alg.DecodeWithContext(body[c.pos:], ctx); err != nil {
		return nil, err
	}
	return &UserNameIdentityToken{PolicyID: policy, UserName: user, Password: password, EncryptionAlgorithm: alg}, nil
}

// X509IdentityToken authenticates a session by proof of possession of a
// certificate's private key (Part 4, 7.42).
type X509IdentityToken struct {
	PolicyID    String
	Certificate ByteString
}

func (t *X509IdentityToken) Encode() (*ExtensionObject, error) {
	var b buffer
	pb, err := t.PolicyID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(pb)
	cb, err := t.Certificate.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(cb)
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.X509IdentityToken_Encoding_DefaultBinary)), b.Bytes()), nil
}

func decodeX509IdentityToken(body []byte, ctx *Context) (*X509IdentityToken, error) {
	c := newCursor(body, ctx)
	var policy String
	var cert ByteString
	n, err := policy.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	if _, err := cert.DecodeWithContext(body[c.pos:], ctx); err != nil {
		return nil, err
	}
	return &X509IdentityToken{PolicyID: policy, Certificate: cert}, nil
}

// IssuedIdentityToken authenticates a session with a token issued by a
// separate identity provider, such as a JWT (Part 4, 7.15).
type IssuedIdentityToken struct {
	PolicyID            String
	TokenData            ByteString
	EncryptionAlgorithm  String
}

func (t *IssuedIdentityToken) Encode() (*ExtensionObject, error) {
	var b buffer
	pb, err := t.PolicyID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(pb)
	tb, err := t.TokenData.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(tb)
	ab, err := t.EncryptionAlgorithm.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ab)
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.IssuedIdentityToken_Encoding_DefaultBinary)), b.Bytes()), nil
}

func decodeIssuedIdentityToken(body []byte, ctx *Context) (*IssuedIdentityToken, error) {
	c := newCursor(body, ctx)
	var policy String
	var data ByteString
	var alg String
	n, err := policy.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	n, err = data.DecodeWithContext(body[c.pos:], ctx)
	if err != nil {
		return nil, err
	}
	c.pos += n
	if _, err := alg.DecodeWithContext(body[c.pos:], ctx); err != nil {
		return nil, err
	}
	return &IssuedIdentityToken{PolicyID: policy, TokenData: data, EncryptionAlgorithm: alg}, nil
}

// identityTokenLoader decodes the four standard UserIdentityToken shapes
// carried inside an ActivateSessionRequest, the only place besides
// notifications this stack needs to eagerly interpret an ExtensionObject
// body server-side.
type identityTokenLoader struct{}

func (identityTokenLoader) Load(namespaceURI string, numericID uint32, body []byte, ctx *Context) (interface{}, bool, error) {
	if namespaceURI != "" && namespaceURI != "http://opcfoundation.org/UA/" {
		return nil, false, nil
	}
	switch numericID {
	case id.AnonymousIdentityToken_Encoding_DefaultBinary:
		v, err := decodeAnonymousIdentityToken(body, ctx)
		return v, err == nil, err
	case id.UserNameIdentityToken_Encoding_DefaultBinary:
		v, err := decodeUserNameIdentityToken(body, ctx)
		return v, err == nil, err
	case id.X509IdentityToken_Encoding_DefaultBinary:
		v, err := decodeX509IdentityToken(body, ctx)
		return v, err == nil, err
	case id.IssuedIdentityToken_Encoding_DefaultBinary:
		v, err := decodeIssuedIdentityToken(body, ctx)
		return v, err == nil, err
	default:
		return nil, false, nil
	}
}

// RegisterIdentityTokenLoader wires the built-in UserIdentityToken decoders
// into ctx, so ActivateSessionRequest.UserIdentityToken.Value is already a
// concrete Go type by the time server/session's AuthManager sees it.
func RegisterIdentityTokenLoader(ctx *Context) {
	ctx.RegisterTypeLoader(identityTokenLoader{})
}
