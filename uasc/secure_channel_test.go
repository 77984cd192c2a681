// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
	"github.com/vwopcua/opcua/uacp"
)

func TestValidSecurityTokenIDAcceptsCurrentToken(t *testing.T) {
	s := newTestSecureChannel(t)
	s.cfg.SecurityTokenID = 7
	assert.True(t, s.validSecurityTokenID(7))
	assert.False(t, s.validSecurityTokenID(6))
}

func TestValidSecurityTokenIDAcceptsPreviousTokenWithinGraceWindow(t *testing.T) {
	s := newTestSecureChannel(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.time = func() time.Time { return now }
	s.cfg.SecurityTokenID = 8
	s.cfg.PreviousSecurityTokenID = 7
	s.cfg.PreviousTokenExpiry = now.Add(time.Second)

	assert.True(t, s.validSecurityTokenID(7))
}

func TestValidSecurityTokenIDRejectsPreviousTokenOnceGraceWindowElapses(t *testing.T) {
	s := newTestSecureChannel(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.time = func() time.Time { return now }
	s.cfg.SecurityTokenID = 8
	s.cfg.PreviousSecurityTokenID = 7
	s.cfg.PreviousTokenExpiry = now.Add(-time.Second)

	assert.False(t, s.validSecurityTokenID(7))
}

func TestValidSecurityTokenIDRejectsUnrelatedToken(t *testing.T) {
	s := newTestSecureChannel(t)
	s.cfg.SecurityTokenID = 8
	s.cfg.PreviousSecurityTokenID = 7
	s.cfg.PreviousTokenExpiry = time.Now().Add(time.Hour)

	assert.False(t, s.validSecurityTokenID(42))
}

func TestEncodeRequestRejectsMessagesLargerThanMaxMessageSize(t *testing.T) {
	s := newTestSecureChannel(t)
	s.reqhdr = &ua.RequestHeader{}
	s.c = &uacp.Conn{MaxMessageSize: 16, SendBufferSize: 8192}

	req := &ua.CloseSecureChannelRequest{}
	_, _, err := s.encodeRequest(req, nil, 0)
	assert.Equal(t, ua.StatusBadRequestTooLarge, err)
}

func TestEncodeRequestAcceptsMessagesWithinMaxMessageSize(t *testing.T) {
	s := newTestSecureChannel(t)
	s.reqhdr = &ua.RequestHeader{}
	s.c = &uacp.Conn{MaxMessageSize: 1 << 20, SendBufferSize: 8192}

	req := &ua.CloseSecureChannelRequest{}
	reqID, chunks, err := s.encodeRequest(req, nil, 0)
	require.NoError(t, err)
	assert.NotZero(t, reqID)
	assert.NotEmpty(t, chunks)
}

func TestSendResponseRejectsMessagesLargerThanMaxMessageSize(t *testing.T) {
	s := newTestSecureChannel(t)
	s.reqhdr = &ua.RequestHeader{}
	s.c = &uacp.Conn{MaxMessageSize: 16, SendBufferSize: 8192}

	resp := &ua.CloseSecureChannelResponse{}
	err := s.SendResponse(resp)
	assert.Equal(t, ua.StatusBadResponseTooLarge, err)
}
