// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"github.com/vwopcua/opcua/uapolicy"
)

// NewSessionSignature signs serverCert||serverNonce with this channel's
// local credentials, producing the ActivateSessionRequest.ClientSignature a
// server verifies against the certificate the client presented when
// opening the channel (Part 4, 5.6.3.2).
func (s *SecureChannel) NewSessionSignature(serverCert, serverNonce []byte) ([]byte, string, error) {
	asym, err := s.policy.Asymmetric(s.cfg.LocalKey, serverCert)
	if err != nil {
		return nil, "", err
	}
	sig, err := asym.Signature(concat(serverCert, serverNonce))
	if err != nil {
		return nil, "", err
	}
	return sig, string(s.cfg.SecurityPolicyURI), nil
}

// VerifySessionSignature checks the ServerSignature a CreateSessionResponse
// carries over this client's own certificate and nonce, using the server's
// certificate.
func (s *SecureChannel) VerifySessionSignature(serverCert, clientNonce, signature []byte) error {
	asym, err := s.policy.Asymmetric(s.cfg.LocalKey, serverCert)
	if err != nil {
		return err
	}
	return asym.VerifySignature(concat(s.cfg.LocalCertificate, clientNonce), signature)
}

// EncryptUserPassword encrypts a UserNameIdentityToken password under the
// named security policy, appending the server nonce so the ciphertext
// cannot be replayed against a later session (Part 4, 7.41.1).
func (s *SecureChannel) EncryptUserPassword(policyURI, password string, serverCert, serverNonce []byte) ([]byte, string, error) {
	policy, err := tokenPolicy(uapolicy.URI(policyURI), s)
	if err != nil {
		return nil, "", err
	}
	asym, err := policy.Asymmetric(s.cfg.LocalKey, serverCert)
	if err != nil {
		return nil, "", err
	}
	enc, err := asym.Encrypt(concat([]byte(password), serverNonce))
	if err != nil {
		return nil, "", err
	}
	return enc, string(policy.URI()), nil
}

// NewUserTokenSignature signs serverCert||serverNonce for an
// X509IdentityToken, proving possession of the certificate's private key
// under the named security policy (Part 4, 7.42).
func (s *SecureChannel) NewUserTokenSignature(policyURI string, serverCert, serverNonce []byte) ([]byte, string, error) {
	policy, err := tokenPolicy(uapolicy.URI(policyURI), s)
	if err != nil {
		return nil, "", err
	}
	asym, err := policy.Asymmetric(s.cfg.LocalKey, serverCert)
	if err != nil {
		return nil, "", err
	}
	sig, err := asym.Signature(concat(serverCert, serverNonce))
	if err != nil {
		return nil, "", err
	}
	return sig, string(policy.URI()), nil
}

// tokenPolicy resolves the policy named by a token's own SecurityPolicyURI,
// falling back to the channel's policy when the token didn't specify one.
func tokenPolicy(uri uapolicy.URI, s *SecureChannel) (uapolicy.SecurityPolicy, error) {
	if uri == "" {
		return s.policy, nil
	}
	return uapolicy.ByURI(uri)
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
