// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"crypto/rsa"
	"time"

	"github.com/vwopcua/opcua/ua"
	"github.com/vwopcua/opcua/uacp"
	"github.com/vwopcua/opcua/uapolicy"
	"github.com/vwopcua/opcua/uasc"
)

// Option configures the transport, secure channel and/or session a Client
// opens. Every Option is applied in NewClient in the order given, so a
// later one can override an earlier one.
type Option func(*uacp.Config, *uasc.Config, *uasc.SessionConfig)

// SecurityPolicy selects the security policy a new secure channel proposes
// to the server. uri is one of the uapolicy.URI* constants.
func SecurityPolicy(uri uapolicy.URI) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.SecurityPolicyURI = uri
	}
}

// SecurityMode selects whether the channel signs and/or encrypts.
func SecurityMode(mode ua.MessageSecurityMode) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.SecurityMode = mode
	}
}

// Certificate sets the client's certificate, presented during
// OpenSecureChannel and during session activation signatures.
func Certificate(cert []byte) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.LocalCertificate = cert
	}
}

// PrivateKey sets the client's private key, used to produce the signatures
// NewSessionSignature and NewUserTokenSignature compute.
func PrivateKey(key *rsa.PrivateKey) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.LocalKey = key
	}
}

// ChannelLifetime overrides how long a requested secure channel token is
// valid before the client renews it.
func ChannelLifetime(d time.Duration) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.Lifetime = uint32(d / time.Millisecond)
	}
}

// RequestTimeout overrides how long a request waits for its response before
// SendRequest returns ua.StatusBadTimeout.
func RequestTimeout(d time.Duration) Option {
	return func(_ *uacp.Config, cfg *uasc.Config, _ *uasc.SessionConfig) {
		cfg.RequestTimeout = d
	}
}

// DialTimeout overrides how long uacp.Dial waits for the TCP handshake and
// Hello/Acknowledge exchange.
func DialTimeout(d time.Duration) Option {
	return func(netCfg *uacp.Config, _ *uasc.Config, _ *uasc.SessionConfig) {
		netCfg.DialTimeout = d
	}
}

// ReceiveBufferSize overrides the buffer size the client proposes in Hello.
func ReceiveBufferSize(n uint32) Option {
	return func(netCfg *uacp.Config, _ *uasc.Config, _ *uasc.SessionConfig) {
		netCfg.ReceiveBufferSize = n
	}
}

// SendBufferSize overrides the buffer size the client proposes in Hello.
func SendBufferSize(n uint32) Option {
	return func(netCfg *uacp.Config, _ *uasc.Config, _ *uasc.SessionConfig) {
		netCfg.SendBufferSize = n
	}
}

// SessionTimeout overrides the session timeout requested in CreateSession.
func SessionTimeout(d time.Duration) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.SessionTimeout = d
	}
}

// ApplicationName sets the ApplicationName reported in
// CreateSessionRequest.ClientDescription.
func ApplicationName(name string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.ClientDescription.ApplicationName = ua.LocalizedText{Text: ua.NewString(name)}
	}
}

// ApplicationURI sets the ApplicationURI reported in
// CreateSessionRequest.ClientDescription.
func ApplicationURI(uri string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.ClientDescription.ApplicationURI = ua.NewString(uri)
	}
}

// AuthAnonymous configures the session to activate with an anonymous
// identity token. This is the default when no AuthXxx option is given.
func AuthAnonymous() Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.UserIdentityToken = &ua.AnonymousIdentityToken{}
	}
}

// AuthUsername configures the session to activate with a username/password
// identity token. The password is encrypted against the server nonce and
// certificate at ActivateSession time, per the policy named by the
// endpoint's PolicyID lookup or overridden by AuthPolicyURI.
func AuthUsername(user, password string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.UserIdentityToken = &ua.UserNameIdentityToken{UserName: ua.NewString(user)}
		sessionCfg.AuthPassword = password
	}
}

// AuthCertificate configures the session to activate with an X509 identity
// token, proven with a signature over the server's certificate and nonce.
func AuthCertificate(cert []byte) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.UserIdentityToken = &ua.X509IdentityToken{Certificate: ua.NewByteString(cert)}
	}
}

// AuthIssuedToken configures the session to activate with an issued token
// (e.g. a JWT obtained out of band).
func AuthIssuedToken(token []byte) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.UserIdentityToken = &ua.IssuedIdentityToken{TokenData: ua.NewByteString(token)}
	}
}

// AuthPolicyID stamps the PolicyID the server advertised for the chosen
// identity token kind onto whichever token is already configured.
func AuthPolicyID(policyID string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		switch tok := sessionCfg.UserIdentityToken.(type) {
		case *ua.AnonymousIdentityToken:
			tok.PolicyID = ua.NewString(policyID)
		case *ua.UserNameIdentityToken:
			tok.PolicyID = ua.NewString(policyID)
		case *ua.X509IdentityToken:
			tok.PolicyID = ua.NewString(policyID)
		case *ua.IssuedIdentityToken:
			tok.PolicyID = ua.NewString(policyID)
		}
	}
}

// AuthPolicyURI overrides the security policy used to encrypt a password or
// sign an X509 proof, when it differs from the endpoint's channel policy.
func AuthPolicyURI(uri string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		sessionCfg.AuthPolicyURI = uri
	}
}

// Locales sets the session's preferred locales, in priority order.
func Locales(locales ...string) Option {
	return func(_ *uacp.Config, _ *uasc.Config, sessionCfg *uasc.SessionConfig) {
		ids := make([]ua.String, len(locales))
		for i, l := range locales {
			ids[i] = ua.NewString(l)
		}
		sessionCfg.LocaleIDs = ids
	}
}
