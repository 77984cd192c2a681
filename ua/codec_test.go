// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringRoundTripsNullVsEmpty(t *testing.T) {
	for name, s := range map[string]String{
		"null":  NullString(),
		"empty": NewString(""),
		"set":   NewString("hello"),
	} {
		t.Run(name, func(t *testing.T) {
			buf, err := s.Encode()
			require.NoError(t, err)

			var got String
			n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, s.IsNull(), got.IsNull())
			assert.Equal(t, s.Value(), got.Value())
		})
	}
}

func TestByteStringRoundTripsNullAndSet(t *testing.T) {
	null := NullByteString()
	buf, err := null.Encode()
	require.NoError(t, err)

	var got ByteString
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.True(t, got.IsNull())
	assert.Nil(t, got.Value())

	set := NewByteString([]byte{1, 2, 3})
	buf, err = set.Encode()
	require.NoError(t, err)
	err = assignByteString(&got, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Value())
}

func assignByteString(b *ByteString, buf []byte) error {
	_, err := b.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	return err
}

func TestNodeIDRoundTripsAcrossIdentifierKinds(t *testing.T) {
	ids := []*NodeID{
		NewTwoByteNodeID(5),
		NewFourByteNodeID(2, 1000),
		NewNumericNodeID(12, 123456),
		NewStringNodeID(3, "some.node"),
		NewByteStringNodeID(4, []byte{0xde, 0xad, 0xbe, 0xef}),
	}

	for _, id := range ids {
		t.Run(id.String(), func(t *testing.T) {
			buf, err := id.Encode()
			require.NoError(t, err)

			var got NodeID
			n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, id.String(), got.String())
		})
	}
}

func TestReadValueIDRoundTripsWithUnexportedFieldComparison(t *testing.T) {
	want := ReadValueID{
		NodeID:       NewNumericNodeID(1, 42),
		AttributeID:  AttributeIDValue,
		IndexRange:   NewString("1:2"),
		DataEncoding: QualifiedName{NamespaceIndex: 1, Name: NewString("Default Binary")},
	}

	buf, err := want.Encode()
	require.NoError(t, err)

	var got ReadValueID
	n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	diff := cmp.Diff(want, got, cmp.AllowUnexported(String{}, NodeID{}))
	assert.Empty(t, diff)
}

func TestVariantRoundTripsGUIDScalar(t *testing.T) {
	want, err := NewVariant(uuid.New())
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, VariantTypeGUID, got.Type)
	assert.Equal(t, want.Value.(uuid.UUID), got.Value.(uuid.UUID))
}

func TestVariantRoundTripsXMLElementScalar(t *testing.T) {
	want, err := NewVariant(NewXMLElement([]byte("<a/>")))
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, VariantTypeXMLElement, got.Type)
	assert.Equal(t, []byte("<a/>"), got.Value.(XMLElement).Value())
}

func TestVariantRoundTripsExpandedNodeIDScalar(t *testing.T) {
	want, err := NewVariant(&ExpandedNodeID{
		NodeID:       NewNumericNodeID(2, 99),
		NamespaceURI: "http://example.org/ns",
		ServerIndex:  7,
	})
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, VariantTypeExpandedNodeID, got.Type)

	gotID := got.Value.(*ExpandedNodeID)
	assert.Equal(t, "http://example.org/ns", gotID.NamespaceURI)
	assert.Equal(t, uint32(7), gotID.ServerIndex)
	assert.Equal(t, want.Value.(*ExpandedNodeID).NodeID.String(), gotID.NodeID.String())
}

func TestExpandedNodeIDRoundTripsWithoutOptionalFields(t *testing.T) {
	want := &ExpandedNodeID{NodeID: NewTwoByteNodeID(5)}
	buf, err := want.Encode()
	require.NoError(t, err)

	var got ExpandedNodeID
	n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Empty(t, got.NamespaceURI)
	assert.Zero(t, got.ServerIndex)
	assert.Equal(t, want.NodeID.String(), got.NodeID.String())
}

func TestVariantRoundTripsDataValueScalar(t *testing.T) {
	inner, err := NewVariant(int32(42))
	require.NoError(t, err)

	want, err := NewVariant(&DataValue{Value: inner, Status: StatusBadTimeout})
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, VariantTypeDataValue, got.Type)

	gotDV := got.Value.(*DataValue)
	assert.Equal(t, StatusBadTimeout, gotDV.Status)
	assert.Equal(t, int32(42), gotDV.Value.Value.(int32))
}

func TestVariantRoundTripsNestedVariantScalar(t *testing.T) {
	inner, err := NewVariant("nested")
	require.NoError(t, err)

	want, err := NewVariant(inner)
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, VariantTypeVariant, got.Type)

	gotNested := got.Value.(*Variant)
	assert.Equal(t, VariantTypeString, gotNested.Type)
	assert.Equal(t, "nested", gotNested.Value.(String).Value())
}

func TestVariantRoundTripsDiagnosticInfoScalar(t *testing.T) {
	want, err := NewVariant(&DiagnosticInfo{
		SymbolicID:      3,
		NamespaceURI:    1,
		AdditionalInfo:  NewString("details"),
		InnerStatusCode: StatusBadTimeout,
	})
	require.NoError(t, err)

	buf, err := want.Encode()
	require.NoError(t, err)

	var got Variant
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, VariantTypeDiagnosticInfo, got.Type)

	gotDI := got.Value.(*DiagnosticInfo)
	assert.Equal(t, int32(3), gotDI.SymbolicID)
	assert.Equal(t, int32(1), gotDI.NamespaceURI)
	assert.Equal(t, "details", gotDI.AdditionalInfo.Value())
	assert.Equal(t, StatusBadTimeout, gotDI.InnerStatusCode)
	assert.False(t, gotDI.HasInnerDiagnostics)
}

func TestDiagnosticInfoRoundTripsNestedInnerDiagnostics(t *testing.T) {
	want := &DiagnosticInfo{
		SymbolicID:          1,
		HasInnerDiagnostics: true,
		InnerDiagnosticInfo: &DiagnosticInfo{SymbolicID: 2},
	}
	buf, err := want.Encode()
	require.NoError(t, err)

	var got DiagnosticInfo
	n, err := got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, got.HasInnerDiagnostics)
	require.NotNil(t, got.InnerDiagnosticInfo)
	assert.Equal(t, int32(2), got.InnerDiagnosticInfo.SymbolicID)
}

func TestExtensionObjectEncodesNilTypeIDAsTwoByteZero(t *testing.T) {
	eo := &ExtensionObject{}
	buf, err := eo.Encode()
	require.NoError(t, err)

	var got ExtensionObject
	_, err = got.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
	require.NoError(t, err)
	assert.Equal(t, ExtensionObjectEncodingNone, got.Encoding)
}
