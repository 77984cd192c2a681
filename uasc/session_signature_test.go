// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/uapolicy"
)

func newTestSecureChannel(t *testing.T) *SecureChannel {
	t.Helper()
	policy, err := uapolicy.ByURI(uapolicy.URINone)
	require.NoError(t, err)
	return &SecureChannel{cfg: DefaultClientConfig(), policy: policy}
}

func TestNewSessionSignatureReportsThePolicyInUse(t *testing.T) {
	s := newTestSecureChannel(t)
	_, policyURI, err := s.NewSessionSignature([]byte("server-cert"), []byte("server-nonce"))
	require.NoError(t, err)
	assert.Equal(t, string(uapolicy.URINone), policyURI)
}

func TestVerifySessionSignatureAcceptsUnderNonePolicy(t *testing.T) {
	s := newTestSecureChannel(t)
	err := s.VerifySessionSignature([]byte("server-cert"), []byte("client-nonce"), nil)
	assert.NoError(t, err)
}

func TestEncryptUserPasswordAppendsServerNonce(t *testing.T) {
	s := newTestSecureChannel(t)
	enc, policyURI, err := s.EncryptUserPassword("", "hunter2", []byte("server-cert"), []byte("server-nonce"))
	require.NoError(t, err)
	assert.Equal(t, string(uapolicy.URINone), policyURI)
	assert.Equal(t, "hunter2server-nonce", string(enc))
}

func TestEncryptUserPasswordResolvesExplicitPolicyURI(t *testing.T) {
	s := newTestSecureChannel(t)
	_, policyURI, err := s.EncryptUserPassword(string(uapolicy.URINone), "pw", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, string(uapolicy.URINone), policyURI)
}

func TestNewUserTokenSignatureFallsBackToChannelPolicy(t *testing.T) {
	s := newTestSecureChannel(t)
	sig, policyURI, err := s.NewUserTokenSignature("", []byte("cert"), []byte("nonce"))
	require.NoError(t, err)
	assert.Equal(t, string(uapolicy.URINone), policyURI)
	assert.Nil(t, sig)
}

func TestConcatJoinsByteSlicesWithoutAliasing(t *testing.T) {
	a := []byte("foo")
	b := []byte("bar")
	got := concat(a, b)
	assert.Equal(t, []byte("foobar"), got)

	got[0] = 'X'
	assert.Equal(t, byte('f'), a[0], "concat must not alias its first argument")
}
