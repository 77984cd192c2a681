// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uapolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByURIResolvesNoneForEmptyAndExplicitURI(t *testing.T) {
	for _, uri := range []URI{"", URINone} {
		p, err := ByURI(uri)
		require.NoError(t, err)
		assert.Equal(t, URINone, p.URI())
	}
}

func TestByURIRejectsUnsupportedPolicy(t *testing.T) {
	_, err := ByURI(URIBasic256Sha256)
	assert.Error(t, err)
}

func TestNoneCryptoIsTransparent(t *testing.T) {
	p, err := ByURI(URINone)
	require.NoError(t, err)

	asym, err := p.Asymmetric(nil, nil)
	require.NoError(t, err)

	plaintext := []byte("hello")
	ciphertext, err := asym.Encrypt(plaintext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, ciphertext)

	decrypted, err := asym.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	sig, err := asym.Signature(plaintext)
	require.NoError(t, err)
	assert.Nil(t, sig)
	assert.NoError(t, asym.VerifySignature(plaintext, nil))
}

func TestNoneCryptoSymmetricMatchesAsymmetric(t *testing.T) {
	p, err := ByURI(URINone)
	require.NoError(t, err)

	sym, err := p.Symmetric(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sym.BlockSize())
	assert.Equal(t, 0, sym.SignatureLength())
	assert.Equal(t, 0, sym.NonceLength())
}

func TestNonceGeneratesRequestedLength(t *testing.T) {
	n, err := Nonce(32)
	require.NoError(t, err)
	assert.Len(t, n, 32)
}

func TestNonceOfZeroLengthReturnsNil(t *testing.T) {
	n, err := Nonce(0)
	require.NoError(t, err)
	assert.Nil(t, n)
}
