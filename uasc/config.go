// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"crypto/rsa"
	"time"

	"github.com/vwopcua/opcua/ua"
	"github.com/vwopcua/opcua/uapolicy"
)

// DefaultLifetime is how long a requested secure channel token is valid
// before it must be renewed, absent an explicit override.
const DefaultLifetime = 60 * time.Minute

// DefaultRequestTimeout bounds how long SendRequest waits for a response.
const DefaultRequestTimeout = 30 * time.Second

// renewalFraction is how far into a token's lifetime the channel schedules
// a renewal: at 75% elapsed, leaving headroom for the round trip before the
// server starts rejecting the old token.
const renewalFraction = 0.75

// previousTokenGraceFraction is how much of the token's lifetime the
// previous token is still accepted for after a renewal, covering chunks
// already in flight when the new token takes over.
const previousTokenGraceFraction = 0.25

// Config holds the mutable state a SecureChannel needs across the life of a
// connection: the negotiated channel/token identifiers, the security
// policy in effect, and local credentials.
type Config struct {
	SecureChannelID uint32
	SecurityTokenID uint32

	// PreviousSecurityTokenID and PreviousTokenExpiry let an in-flight chunk
	// signed with a just-renewed-away token still be accepted for a grace
	// window after renewal (see previousTokenGraceFraction).
	PreviousSecurityTokenID uint32
	PreviousTokenExpiry     time.Time

	SecurityPolicyURI uapolicy.URI
	SecurityMode      ua.MessageSecurityMode

	LocalKey          *rsa.PrivateKey
	LocalCertificate  []byte
	RemoteCertificate []byte

	Lifetime       uint32 // milliseconds, as carried on the wire
	RequestTimeout time.Duration

	SequenceNumber uint32
	RequestID      uint32
}

// DefaultClientConfig returns a Config for a client opening a new,
// unsecured channel.
func DefaultClientConfig() *Config {
	return &Config{
		SecurityPolicyURI: uapolicy.URINone,
		SecurityMode:      ua.MessageSecurityModeNone,
		Lifetime:          uint32(DefaultLifetime / time.Millisecond),
		RequestTimeout:    DefaultRequestTimeout,
	}
}
