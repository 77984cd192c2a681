// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package session

import (
	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

// AuthManager authenticates a decoded UserIdentityToken and returns an
// opaque UserToken the rest of the stack carries without interpreting. The
// external collaborator boundary for concrete authentication policies,
// which stay out of scope for this module.
type AuthManager interface {
	Authenticate(token *ua.ExtensionObject) (UserToken, error)
}

// CertValidator validates a DER-encoded certificate against a trust store.
// Only consulted when the secure channel's security mode is not None.
type CertValidator interface {
	Validate(cert []byte) error
}

// AnonymousAuthManager accepts only AnonymousIdentityToken, rejecting every
// other identity. Suitable for a server with SecurityPolicyURINone and no
// credential store, and for exercising the activation path in tests.
type AnonymousAuthManager struct{}

func (AnonymousAuthManager) Authenticate(token *ua.ExtensionObject) (UserToken, error) {
	if token == nil {
		return UserToken{}, errors.New("session: missing identity token")
	}
	if _, ok := token.Value.(*ua.AnonymousIdentityToken); ok {
		return UserToken{ID: "anonymous"}, nil
	}
	return UserToken{}, ua.StatusBadIdentityTokenRejected
}

// TrustAllCertValidator accepts any certificate. Useful only for tests and
// for deployments that delegate trust decisions to a front-end proxy.
type TrustAllCertValidator struct{}

func (TrustAllCertValidator) Validate(cert []byte) error { return nil }
