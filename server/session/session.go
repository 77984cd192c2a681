// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package session implements the server-side session lifecycle: Create,
// Activate, Close, lookup by authentication token, and expiry reaping.
package session

import (
	"sync"
	"time"

	"github.com/vwopcua/opcua/ua"
)

// State is a Session's lifecycle stage.
type State int

const (
	StateCreated State = iota
	StateActivated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActivated:
		return "Activated"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// UserToken is the opaque identifier an AuthManager hands back once an
// identity token has been authenticated. The session and subscription
// engine never interpret it, only carry it.
type UserToken struct {
	ID string
}

// Session is a server-side OPC-UA session (spec data model, "Session").
type Session struct {
	ID                  *ua.NodeID
	AuthenticationToken *ua.NodeID

	mu                sync.Mutex
	secureChannelID   uint32
	state             State
	serverNonce       ua.ByteString
	clientCertificate []byte
	userToken         UserToken
	lastContact       time.Time
	timeout           time.Duration
	subscriptionIDs   map[uint32]struct{}
}

// SecureChannelID returns the channel this session is currently bound to.
func (s *Session) SecureChannelID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secureChannelID
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserToken returns the identity this session activated as. Zero value
// before Activate succeeds.
func (s *Session) UserToken() UserToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userToken
}

// Timeout returns the revised session timeout.
func (s *Session) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// LastContact returns the last time this session's expiry clock was reset.
func (s *Session) LastContact() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastContact
}

// Expired reports whether last_contact + timeout_ms is in the past relative
// to now.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateClosed && now.Sub(s.lastContact) > s.timeout
}

// Touch resets the expiry clock, called on every request received on this
// session.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastContact = now
	s.mu.Unlock()
}

// AddSubscription records a subscription id as owned by this session.
func (s *Session) AddSubscription(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptionIDs[id] = struct{}{}
}

// RemoveSubscription forgets a subscription id, e.g. after Delete or
// TransferSubscriptions moves ownership elsewhere.
func (s *Session) RemoveSubscription(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptionIDs, id)
}

// SubscriptionIDs returns a snapshot of the subscription ids this session
// owns.
func (s *Session) SubscriptionIDs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint32, 0, len(s.subscriptionIDs))
	for id := range s.subscriptionIDs {
		ids = append(ids, id)
	}
	return ids
}
