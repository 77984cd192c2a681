// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/server/config"
	"github.com/vwopcua/opcua/ua"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	limits := config.DefaultLimits()
	limits.MaxSessions = 2
	return NewManager(limits, AnonymousAuthManager{}, TrustAllCertValidator{})
}

func anonymousToken(t *testing.T) *ua.ExtensionObject {
	t.Helper()
	tok, err := (&ua.AnonymousIdentityToken{PolicyID: ua.NewString("anonymous")}).Encode()
	require.NoError(t, err)
	tok.Value = &ua.AnonymousIdentityToken{PolicyID: ua.NewString("anonymous")}
	return tok
}

func TestManagerCreateAssignsDistinctTokens(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(0, 0)

	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	s1, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)
	s2, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)

	assert.NotEqual(t, s1.AuthenticationToken.String(), s2.AuthenticationToken.String())
	assert.Equal(t, StateCreated, s1.State())
	assert.Equal(t, 2, m.Count())
}

func TestManagerCreateRejectsNullEndpoint(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Create(&ua.CreateSessionRequest{}, 1, ua.MessageSecurityModeNone, 0, time.Unix(0, 0))
	require.Error(t, err)
	assert.Equal(t, ua.StatusBadTcpEndpointURLInvalid, err)
}

func TestManagerEnforcesMaxSessions(t *testing.T) {
	m := newTestManager(t)
	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	now := time.Unix(0, 0)
	_, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)
	_, _, err = m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)
	_, _, err = m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	assert.Equal(t, ua.StatusBadTooManySessions, err)
}

func TestManagerActivateAndRebind(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(0, 0)
	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	sess, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)

	_, user, err := m.Activate(sess.AuthenticationToken, 1, ua.MessageSecurityModeNone, true, anonymousToken(t), now)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", user.ID)
	assert.Equal(t, StateActivated, sess.State())

	// Re-activation over a different secure channel id re-binds the session.
	later := now.Add(time.Second)
	_, _, err = m.Activate(sess.AuthenticationToken, 2, ua.MessageSecurityModeNone, true, anonymousToken(t), later)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sess.SecureChannelID())
}

func TestManagerActivateRejectsUnknownToken(t *testing.T) {
	m := newTestManager(t)
	bogus := ua.NewByteStringNodeID(1, []byte("not a real token"))
	_, _, err := m.Activate(bogus, 1, ua.MessageSecurityModeNone, true, anonymousToken(t), time.Unix(0, 0))
	assert.Equal(t, ua.StatusBadSessionIDInvalid, err)
}

func TestManagerCloseWithDeleteSubscriptionsReturnsOwnedIDs(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(0, 0)
	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	sess, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)
	sess.AddSubscription(7)
	sess.AddSubscription(9)

	ids, err := m.Close(sess.AuthenticationToken, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{7, 9}, ids)

	_, ok := m.FindByToken(sess.AuthenticationToken)
	assert.False(t, ok)
}

func TestManagerCloseWithoutDeleteSubscriptionsOrphansThem(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(0, 0)
	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	sess, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)
	sess.AddSubscription(7)

	ids, err := m.Close(sess.AuthenticationToken, false)
	require.NoError(t, err)
	assert.Nil(t, ids)
	assert.ElementsMatch(t, []uint32{7}, sess.SubscriptionIDs())
}

func TestManagerReapExpired(t *testing.T) {
	m := newTestManager(t)
	limits := config.DefaultLimits()
	limits.SessionTimeout = time.Second
	m.limits = limits
	now := time.Unix(0, 0)
	req := &ua.CreateSessionRequest{EndpointURL: ua.NewString("opc.tcp://localhost:4840")}
	sess, _, err := m.Create(req, 1, ua.MessageSecurityModeNone, 0, now)
	require.NoError(t, err)

	reaped := m.ReapExpired(now.Add(500 * time.Millisecond))
	assert.Empty(t, reaped)

	reaped = m.ReapExpired(now.Add(2 * time.Second))
	require.Len(t, reaped, 1)
	assert.Equal(t, sess.AuthenticationToken.String(), reaped[0].String())
	_, ok := m.FindByToken(sess.AuthenticationToken)
	assert.False(t, ok)
}
