// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
)

func TestEncodeSymmetricChunksRoundTripsThroughMergeChunks(t *testing.T) {
	body := make([]byte, 20000)
	for i := range body {
		body[i] = byte(i % 251)
	}

	raw, err := encodeSymmetricChunks("MSG", 7, 99, 42, 1, body, 8192)
	require.NoError(t, err)
	require.Len(t, raw, 3)

	chunks := make([]*MessageChunk, len(raw))
	for i, b := range raw {
		assert.LessOrEqual(t, len(b), 8192)
		m := new(MessageChunk)
		n, err := m.Decode(b)
		require.NoError(t, err)
		assert.Equal(t, len(b), n)
		assert.EqualValues(t, 42, m.SequenceHeader.RequestID)
		assert.EqualValues(t, 1+i, m.SequenceHeader.SequenceNumber)
		assert.EqualValues(t, 7, m.Header.SecureChannelID)
		assert.EqualValues(t, 99, m.SecurityTokenID)
		wantChunkType := byte('C')
		if i == len(raw)-1 {
			wantChunkType = 'F'
		}
		assert.Equal(t, wantChunkType, m.Header.ChunkType)
		chunks[i] = m
	}

	merged, err := mergeChunks(chunks)
	require.NoError(t, err)
	assert.Equal(t, body, merged)
}

func TestMergeChunksSingleChunkReturnsItsDataUnchanged(t *testing.T) {
	chunks := []*MessageChunk{
		{Header: &Header{SecureChannelID: 1}, SequenceHeader: &SequenceHeader{SequenceNumber: 1}, Data: []byte("hello")},
	}
	merged, err := mergeChunks(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), merged)
}

func testChunk(scid, seq uint32, data []byte) *MessageChunk {
	return &MessageChunk{
		Header:         &Header{SecureChannelID: scid},
		SequenceHeader: &SequenceHeader{SequenceNumber: seq},
		Data:           data,
	}
}

func TestMergeChunksRejectsSequenceGap(t *testing.T) {
	chunks := []*MessageChunk{
		testChunk(7, 5, []byte("a")),
		testChunk(7, 7, []byte("b")),
	}
	_, err := mergeChunks(chunks)
	assert.Equal(t, ua.StatusBadSecurityChecksFailed, err)
}

func TestMergeChunksRejectsSequenceRepeat(t *testing.T) {
	chunks := []*MessageChunk{
		testChunk(7, 5, []byte("a")),
		testChunk(7, 5, []byte("b")),
	}
	_, err := mergeChunks(chunks)
	assert.Equal(t, ua.StatusBadSecurityChecksFailed, err)
}

func TestMergeChunksRejectsSecureChannelIDMismatch(t *testing.T) {
	chunks := []*MessageChunk{
		testChunk(7, 1, []byte("a")),
		testChunk(9, 2, []byte("b")),
	}
	_, err := mergeChunks(chunks)
	assert.Equal(t, ua.StatusBadSecurityChecksFailed, err)
}

func TestValidateChunkCountEnforcesMax(t *testing.T) {
	assert.NoError(t, validateChunkCount(5, 0))
	assert.NoError(t, validateChunkCount(5, 10))
	assert.Error(t, validateChunkCount(11, 10))
}

func TestChunkPayloadCapacityNeverGoesBelowOne(t *testing.T) {
	assert.Equal(t, 1, chunkPayloadCapacity(0))
	assert.Greater(t, chunkPayloadCapacity(8192), 0)
}
