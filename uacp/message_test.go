// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uacp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
)

func TestHeaderRoundTrips(t *testing.T) {
	h := &Header{MessageType: MessageTypeHello, ChunkType: 'F', MessageSize: 42}
	buf := h.Encode()
	require.Len(t, buf, headerLen)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	_, err := DecodeHeader([]byte{'H', 'E', 'L'})
	assert.Error(t, err)
}

func TestHelloEncodeDecodeRoundTrips(t *testing.T) {
	h := &Hello{
		ProtocolVersion:   0,
		ReceiveBufferSize: 65536,
		SendBufferSize:    65536,
		MaxMessageSize:    4194304,
		MaxChunkCount:     4096,
		EndpointURL:       ua.NewString("opc.tcp://localhost:4840/test"),
	}
	buf, err := h.Encode()
	require.NoError(t, err)

	hdr, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeHello, hdr.MessageType)
	assert.Equal(t, uint32(len(buf)), hdr.MessageSize)

	got, err := DecodeHello(buf[headerLen:])
	require.NoError(t, err)
	assert.Equal(t, h.ReceiveBufferSize, got.ReceiveBufferSize)
	assert.Equal(t, h.MaxChunkCount, got.MaxChunkCount)
	assert.Equal(t, h.EndpointURL.Value(), got.EndpointURL.Value())
}

func TestDecodeHelloRejectsShortBody(t *testing.T) {
	_, err := DecodeHello(make([]byte, 10))
	assert.Error(t, err)
}

func TestAcknowledgeEncodeDecodeRoundTrips(t *testing.T) {
	a := &Acknowledge{
		ProtocolVersion:   0,
		ReceiveBufferSize: 8192,
		SendBufferSize:    8192,
		MaxMessageSize:    2097152,
		MaxChunkCount:     64,
	}
	buf, err := a.Encode()
	require.NoError(t, err)

	hdr, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeAck, hdr.MessageType)

	got, err := DecodeAcknowledge(buf[headerLen:])
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestDecodeAcknowledgeRejectsShortBody(t *testing.T) {
	_, err := DecodeAcknowledge(make([]byte, 4))
	assert.Error(t, err)
}

func TestErrorMessageEncodeDecodeRoundTrips(t *testing.T) {
	e := &ErrorMessage{Error: ua.StatusBadTcpEndpointURLInvalid, Reason: ua.NewString("unknown endpoint")}
	buf, err := e.Encode()
	require.NoError(t, err)

	hdr, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeError, hdr.MessageType)

	got, err := DecodeErrorMessage(buf[headerLen:])
	require.NoError(t, err)
	assert.Equal(t, e.Error, got.Error)
	assert.Equal(t, e.Reason.Value(), got.Reason.Value())
}

func TestErrorMessageWithoutReasonDecodesEmptyString(t *testing.T) {
	e := &ErrorMessage{Error: ua.StatusBadTcpInternalError, Reason: ua.NullString()}
	buf, err := e.Encode()
	require.NoError(t, err)

	got, err := DecodeErrorMessage(buf[headerLen:])
	require.NoError(t, err)
	assert.Equal(t, e.Error, got.Error)
	assert.Equal(t, "", got.Reason.Value())
}

func TestDecodeErrorMessageRejectsShortBody(t *testing.T) {
	_, err := DecodeErrorMessage(nil)
	assert.Error(t, err)
}
