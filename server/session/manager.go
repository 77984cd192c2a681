// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package session

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/server/config"
	"github.com/vwopcua/opcua/ua"
)

// authTokenLength is the minimum random byte count for an authentication
// token (spec data model, "Session": "≥32 random bytes").
const authTokenLength = 32

// Manager owns every live Session, addressed by its authentication token.
// Guarded by a single RWMutex: lookups (FindByToken, and the session lookup
// in Activate) take the read lock, while Create, Close and ReapExpired take
// the write lock. Activate updates the Session itself under the Session's
// own mutex.
type Manager struct {
	limits config.Limits
	auth   AuthManager
	certs  CertValidator

	mu       sync.RWMutex
	sessions map[string]*Session // keyed by AuthenticationToken.String()
}

// NewManager creates a Manager enforcing limits, authenticating identity
// tokens via auth, and validating client certificates via certs.
func NewManager(limits config.Limits, auth AuthManager, certs CertValidator) *Manager {
	return &Manager{
		limits:   limits,
		auth:     auth,
		certs:    certs,
		sessions: make(map[string]*Session),
	}
}

// Create allocates a new Session for req, arriving over secureChannelID
// under securityMode. It enforces max_sessions, validates the client
// certificate when the channel is secured, and mints a fresh session id,
// authentication token, and server nonce. nonceLength sizes the returned
// server nonce per the channel's security policy.
func (m *Manager) Create(req *ua.CreateSessionRequest, secureChannelID uint32, securityMode ua.MessageSecurityMode, nonceLength int, now time.Time) (*Session, ua.ByteString, error) {
	if req.EndpointURL.IsNull() || req.EndpointURL.Value() == "" {
		return nil, ua.ByteString{}, ua.StatusBadTcpEndpointURLInvalid
	}
	if securityMode != ua.MessageSecurityModeNone {
		if m.certs == nil {
			return nil, ua.ByteString{}, ua.StatusBadCertificateInvalid
		}
		if err := m.certs.Validate(req.ClientCertificate.Value()); err != nil {
			return nil, ua.ByteString{}, errors.Wrap(err, "session: validating client certificate")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limits.MaxSessions > 0 && len(m.sessions) >= m.limits.MaxSessions {
		return nil, ua.ByteString{}, ua.StatusBadTooManySessions
	}

	authToken, err := randomOpaqueNodeID(authTokenLength)
	if err != nil {
		return nil, ua.ByteString{}, err
	}
	sessionID := ua.NewGUIDNodeID(1, uuid.New())
	nonce, err := randomBytes(nonceLength)
	if err != nil {
		return nil, ua.ByteString{}, err
	}

	timeout := time.Duration(req.RequestedSessionTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = m.limits.SessionTimeout
	}

	sess := &Session{
		ID:                  sessionID,
		AuthenticationToken: authToken,
		secureChannelID:     secureChannelID,
		state:               StateCreated,
		serverNonce:         ua.NewByteString(nonce),
		clientCertificate:   req.ClientCertificate.Value(),
		lastContact:         now,
		timeout:             timeout,
		subscriptionIDs:     make(map[uint32]struct{}),
	}
	m.sessions[authToken.String()] = sess
	return sess, sess.serverNonce, nil
}

// Activate binds identityToken to the session addressed by authToken,
// possibly re-binding it to a new secure channel. clientSignatureValid must
// already reflect the caller's verification of the client's signature over
// (server cert || server nonce) when the channel is secured; Activate does
// not perform cryptography itself.
func (m *Manager) Activate(authToken *ua.NodeID, newChannelID uint32, securityMode ua.MessageSecurityMode, clientSignatureValid bool, identityToken *ua.ExtensionObject, now time.Time) (*Session, UserToken, error) {
	m.mu.RLock()
	sess, ok := m.sessions[authToken.String()]
	m.mu.RUnlock()
	if !ok {
		return nil, UserToken{}, ua.StatusBadSessionIDInvalid
	}
	if sess.State() == StateClosed {
		return nil, UserToken{}, ua.StatusBadSessionClosed
	}
	if securityMode != ua.MessageSecurityModeNone && !clientSignatureValid {
		return nil, UserToken{}, ua.StatusBadUserSignatureInvalid
	}

	user, err := m.auth.Authenticate(identityToken)
	if err != nil {
		return nil, UserToken{}, err
	}

	sess.mu.Lock()
	sess.secureChannelID = newChannelID
	sess.state = StateActivated
	sess.userToken = user
	sess.lastContact = now
	sess.mu.Unlock()
	return sess, user, nil
}

// Close terminates the session addressed by authToken. When
// deleteSubscriptions is true it returns the subscription ids the session
// owned, for the caller to tear down in the subscription engine. Otherwise
// it returns nil and the ids stay recorded on the closed Session, leaving
// the subscriptions orphaned (reclaimable by TransferSubscriptions).
func (m *Manager) Close(authToken *ua.NodeID, deleteSubscriptions bool) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[authToken.String()]
	if !ok {
		return nil, ua.StatusBadSessionIDInvalid
	}
	delete(m.sessions, authToken.String())

	sess.mu.Lock()
	sess.state = StateClosed
	ids := make([]uint32, 0, len(sess.subscriptionIDs))
	for id := range sess.subscriptionIDs {
		ids = append(ids, id)
	}
	if deleteSubscriptions {
		sess.subscriptionIDs = make(map[uint32]struct{})
	}
	sess.mu.Unlock()

	if !deleteSubscriptions {
		return nil, nil
	}
	return ids, nil
}

// FindByToken looks up a live session by its authentication token.
func (m *Manager) FindByToken(authToken *ua.NodeID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[authToken.String()]
	return sess, ok
}

// ReapExpired removes every session whose last_contact+timeout has passed
// as of now, returning their authentication tokens. Their subscriptions are
// left alive in the subscription engine, per the OPC-UA "publish over any
// session" semantics; only TransferSubscriptions or an explicit
// delete_subscriptions Close tears them down.
func (m *Manager) ReapExpired(now time.Time) []*ua.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reaped []*ua.NodeID
	for key, sess := range m.sessions {
		if sess.Expired(now) {
			sess.mu.Lock()
			sess.state = StateClosed
			sess.mu.Unlock()
			reaped = append(reaped, sess.AuthenticationToken)
			delete(m.sessions, key)
		}
	}
	return reaped
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func randomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "session: generating random bytes")
	}
	return b, nil
}

func randomOpaqueNodeID(n int) (*ua.NodeID, error) {
	b, err := randomBytes(n)
	if err != nil {
		return nil, err
	}
	return ua.NewByteStringNodeID(1, b), nil
}
