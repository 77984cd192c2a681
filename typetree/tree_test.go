// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package typetree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vwopcua/opcua/ua"
)

func n(id uint32) *ua.NodeID { return ua.NewNumericNodeID(0, id) }

func TestIsSubtypeOfWalksChain(t *testing.T) {
	tr := New()
	// BaseDataType(24) -> Number(26) -> Double(11)
	tr.AddSubtype(n(24), n(26))
	tr.AddSubtype(n(26), n(11))

	assert.True(t, tr.IsSubtypeOf(n(11), n(24)))
	assert.True(t, tr.IsSubtypeOf(n(11), n(26)))
	assert.True(t, tr.IsSubtypeOf(n(11), n(11)), "every type is its own subtype")
	assert.False(t, tr.IsSubtypeOf(n(24), n(11)), "supertype is not a subtype of its subtype")
	assert.False(t, tr.IsSubtypeOf(n(11), n(99)))
}

func TestDataTypeVariantDefaultsToPrimitive(t *testing.T) {
	tr := New()
	assert.Equal(t, Primitive, tr.DataTypeVariant(n(11)))

	tr.SetVariant(n(1001), Structure)
	assert.Equal(t, Structure, tr.DataTypeVariant(n(1001)))
}

func TestEncodingIDs(t *testing.T) {
	tr := New()
	_, ok := tr.EncodingIDs(n(1001))
	assert.False(t, ok)

	ids := EncodingIDs{Binary: n(1002)}
	tr.SetEncodingIDs(n(1001), ids)
	got, ok := tr.EncodingIDs(n(1001))
	assert.True(t, ok)
	assert.Equal(t, n(1002).String(), got.Binary.String())
}

func TestCanAssignByteStringToByteArray(t *testing.T) {
	byteType := n(3)
	assert.True(t, CanAssignByteString(byteType, -2))
	assert.True(t, CanAssignByteString(byteType, -3))
	assert.True(t, CanAssignByteString(byteType, 1))
	assert.False(t, CanAssignByteString(byteType, 0))
	assert.False(t, CanAssignByteString(byteType, 2))
	assert.False(t, CanAssignByteString(n(11), 1))
}

func TestCanAssignFallsBackToSubtypeRule(t *testing.T) {
	tr := New()
	tr.AddSubtype(n(24), n(11))

	assert.True(t, tr.CanAssign(n(24), n(11), 0, false))
	assert.False(t, tr.CanAssign(n(24), n(12), 0, false))
	assert.True(t, tr.CanAssign(n(3), n(15), 1, true), "ByteString value into a Byte array uses the edge case, not the subtype graph")
}
