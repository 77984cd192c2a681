// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package uapolicy implements the security policies that sign, verify,
// encrypt and decrypt secure channel chunk bodies.
package uapolicy

import (
	"crypto/rand"

	"github.com/vwopcua/opcua/errors"
)

// URI identifies a security policy by its Part 7 URI.
type URI string

const (
	URINone               URI = "http://opcfoundation.org/UA/SecurityPolicy#None"
	URIBasic256Sha256     URI = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
	URIAes128Sha256RsaOaep URI = "http://opcfoundation.org/UA/SecurityPolicy#Aes128_Sha256_RsaOaep"
)

// Asymmetric signs and verifies, encrypts and decrypts using the
// certificate-based keys exchanged while opening a secure channel.
type Asymmetric interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	Signature(plaintext []byte) ([]byte, error)
	VerifySignature(message, signature []byte) error
	EncryptionBlockSize() int
	PlaintextBlockSize() int
	SignatureLength() int
	RemotePlaintextBlockSize() int
	RemoteSignatureLength() int
}

// Symmetric signs/verifies and encrypts/decrypts MSG chunk bodies once a
// channel has a derived session key.
type Symmetric interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	Signature(plaintext []byte) ([]byte, error)
	VerifySignature(message, signature []byte) error
	BlockSize() int
	SignatureLength() int
	NonceLength() int
}

// SecurityPolicy is the factory a secure channel uses to build its
// asymmetric (OPN) and symmetric (MSG) crypto once certificates and nonces
// are known.
type SecurityPolicy interface {
	URI() URI
	Asymmetric(localKey, remoteCert []byte) (Asymmetric, error)
	Symmetric(localNonce, remoteNonce []byte) (Symmetric, error)
}

// ByURI returns the SecurityPolicy registered for uri.
func ByURI(uri URI) (SecurityPolicy, error) {
	switch uri {
	case URINone, "":
		return noneSecurityPolicy{}, nil
	default:
		return nil, errors.Errorf("uapolicy: unsupported security policy %q", uri)
	}
}

// Nonce generates a cryptographically random nonce of the given length, as
// exchanged during OpenSecureChannel and CreateSession to seed symmetric
// key derivation.
func Nonce(length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "uapolicy: generating nonce")
	}
	return b, nil
}

type noneSecurityPolicy struct{}

func (noneSecurityPolicy) URI() URI { return URINone }

func (noneSecurityPolicy) Asymmetric(localKey, remoteCert []byte) (Asymmetric, error) {
	return noneCrypto{}, nil
}

func (noneSecurityPolicy) Symmetric(localNonce, remoteNonce []byte) (Symmetric, error) {
	return noneCrypto{}, nil
}

// noneCrypto implements both Asymmetric and Symmetric as no-ops: the
// MessageSecurityModeNone channel still frames and sequences chunks the
// same way a secured one does, it just never signs or encrypts them.
type noneCrypto struct{}

func (noneCrypto) Encrypt(p []byte) ([]byte, error) { return p, nil }
func (noneCrypto) Decrypt(c []byte) ([]byte, error) { return c, nil }
func (noneCrypto) Signature(p []byte) ([]byte, error) { return nil, nil }
func (noneCrypto) VerifySignature(message, signature []byte) error { return nil }
func (noneCrypto) EncryptionBlockSize() int       { return 1 }
func (noneCrypto) PlaintextBlockSize() int        { return 1 }
func (noneCrypto) RemotePlaintextBlockSize() int  { return 1 }
func (noneCrypto) SignatureLength() int           { return 0 }
func (noneCrypto) RemoteSignatureLength() int     { return 0 }
func (noneCrypto) BlockSize() int                 { return 1 }
func (noneCrypto) NonceLength() int               { return 0 }
