// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"encoding/binary"

	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/ua"
)

// minChunkOverhead is the framing cost of a MSG/CLO chunk (common header +
// the 4-byte symmetric security header + sequence header) subtracted from
// SendBufferSize to find how much service payload fits in one chunk. A
// precise figure depends on the negotiated security policy; None never
// appends a signature or padding, so this is exact for it and conservative
// for anything else.
const minChunkOverhead = commonHeaderLen + sequenceHeaderLen + 4 // +4 for the symmetric token id

// chunkPayloadCapacity returns how many payload bytes fit in a single MSG
// chunk given the connection's negotiated send buffer size.
func chunkPayloadCapacity(sendBufferSize uint32) int {
	cap := int(sendBufferSize) - minChunkOverhead
	if cap < 1 {
		cap = 1
	}
	return cap
}

// encodeSymmetricChunks splits body across one or more MSG/CLO chunks, each
// no larger than sendBufferSize, sequencing them with consecutive sequence
// numbers starting at firstSeqNum.
func encodeSymmetricChunks(msgType string, secureChannelID, tokenID uint32, requestID uint32, firstSeqNum uint32, body []byte, sendBufferSize uint32) ([][]byte, error) {
	capacity := chunkPayloadCapacity(sendBufferSize)
	var chunks [][]byte
	seq := firstSeqNum
	for {
		n := len(body)
		last := true
		if n > capacity {
			n = capacity
			last = false
		}
		chunkType := byte('F')
		if !last {
			chunkType = 'C'
		}

		var payload []byte
		payload = append(payload, encodeUint32(tokenID)...)
		payload = append(payload, (&SequenceHeader{SequenceNumber: seq, RequestID: requestID}).Encode()...)
		payload = append(payload, body[:n]...)

		hdr := Header{
			MessageType:     msgType,
			ChunkType:       chunkType,
			SecureChannelID: secureChannelID,
			MessageSize:     uint32(commonHeaderLen + len(payload)),
		}
		chunks = append(chunks, append(hdr.Encode(), payload...))

		body = body[n:]
		seq++
		if last {
			break
		}
	}
	return chunks, nil
}

// encodeAsymmetricChunk wraps body in a single OPN chunk. OpenSecureChannel
// requests and responses are small and never fragmented in practice.
func encodeAsymmetricChunk(secureChannelID uint32, sh *AsymmetricSecurityHeader, requestID, seqNum uint32, body []byte) ([]byte, error) {
	shb, err := sh.Encode()
	if err != nil {
		return nil, err
	}
	var payload []byte
	payload = append(payload, shb...)
	payload = append(payload, (&SequenceHeader{SequenceNumber: seqNum, RequestID: requestID}).Encode()...)
	payload = append(payload, body...)

	hdr := Header{
		MessageType:     "OPN",
		ChunkType:       'F',
		SecureChannelID: secureChannelID,
		MessageSize:     uint32(commonHeaderLen + len(payload)),
	}
	return append(hdr.Encode(), payload...), nil
}

func encodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// mergeChunks concatenates the payload of a sequence of chunks belonging to
// the same request. Per validate_chunks, every chunk after the first must
// carry the previous chunk's sequence number plus one and the same
// SecureChannelID as the first; any gap, repeat, or channel-id mismatch
// fails with BadSecurityChecksFailed, which receive treats as fatal to the
// whole connection.
func mergeChunks(chunks []*MessageChunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) == 1 {
		return chunks[0].Data, nil
	}
	scid := chunks[0].Header.SecureChannelID
	prev := chunks[0].SequenceHeader.SequenceNumber
	b := append([]byte{}, chunks[0].Data...)
	for _, c := range chunks[1:] {
		if c.Header.SecureChannelID != scid {
			return nil, ua.StatusBadSecurityChecksFailed
		}
		if c.SequenceHeader.SequenceNumber != prev+1 {
			return nil, ua.StatusBadSecurityChecksFailed
		}
		prev = c.SequenceHeader.SequenceNumber
		b = append(b, c.Data...)
	}
	return b, nil
}

// validateChunkCount enforces maxChunkCount (0 meaning unbounded) against
// the number of chunks accumulated so far for one request.
func validateChunkCount(n int, maxChunkCount uint32) error {
	if maxChunkCount != 0 && uint32(n) > maxChunkCount {
		return errors.Errorf("uasc: too many chunks: %d > %d", n, maxChunkCount)
	}
	return nil
}
