// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"time"

	"github.com/vwopcua/opcua/ua"
)

// IdentityToken is implemented by the four UserIdentityToken shapes Part 4,
// 7.41 defines, letting SessionConfig hold one without importing the
// concrete type.
type IdentityToken interface {
	Encode() (*ua.ExtensionObject, error)
}

// SessionConfig holds the client-side parameters of a session: what the
// client calls itself, how long it asks the session to live, and how it
// proves its identity when activating.
type SessionConfig struct {
	SessionTimeout    time.Duration
	ClientDescription ua.ApplicationDescription
	LocaleIDs         []ua.String

	UserIdentityToken  IdentityToken
	UserTokenSignature *ua.SignatureData
	AuthPolicyURI      string
	AuthPassword       string
}

// DefaultSessionConfig returns a SessionConfig with no identity token set;
// NewClient.CreateSession fills in an anonymous one if none was configured
// explicitly by the time the session is created.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		SessionTimeout: DefaultLifetime,
		ClientDescription: ua.ApplicationDescription{
			ApplicationURI:  ua.NewString("urn:vwopcua:client"),
			ApplicationName: ua.LocalizedText{Text: ua.NewString("vwopcua client")},
			ApplicationType: ua.ApplicationTypeClient,
		},
	}
}
