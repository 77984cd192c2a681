// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "github.com/google/uuid"

// VariantType identifies which of the 25 scalar types a Variant's value
// holds, per OPC-UA Part 6, 5.1.6.
type VariantType byte

const (
	VariantTypeNull VariantType = iota
	VariantTypeBoolean
	VariantTypeSByte
	VariantTypeByte
	VariantTypeInt16
	VariantTypeUint16
	VariantTypeInt32
	VariantTypeUint32
	VariantTypeInt64
	VariantTypeUint64
	VariantTypeFloat
	VariantTypeDouble
	VariantTypeString
	VariantTypeDateTime
	VariantTypeGUID
	VariantTypeByteString
	VariantTypeXMLElement
	VariantTypeNodeID
	VariantTypeExpandedNodeID
	VariantTypeStatusCode
	VariantTypeQualifiedName
	VariantTypeLocalizedText
	VariantTypeExtensionObject
	VariantTypeDataValue
	VariantTypeVariant
	VariantTypeDiagnosticInfo
)

const (
	variantArrayFlag     byte = 0x80
	variantDimensionFlag byte = 0x40
	variantTypeMask      byte = 0x3F
)

func encodeScalar(t VariantType, v interface{}) ([]byte, error) {
	var b buffer
	switch t {
	case VariantTypeBoolean:
		b.writeBool(v.(bool))
	case VariantTypeSByte:
		b.writeInt8(v.(int8))
	case VariantTypeByte:
		b.writeUint8(v.(byte))
	case VariantTypeInt16:
		b.writeInt16(v.(int16))
	case VariantTypeUint16:
		b.writeUint16(v.(uint16))
	case VariantTypeInt32:
		b.writeInt32(v.(int32))
	case VariantTypeUint32:
		b.writeUint32(v.(uint32))
	case VariantTypeInt64:
		b.writeInt64(v.(int64))
	case VariantTypeUint64:
		b.writeUint64(v.(uint64))
	case VariantTypeFloat:
		b.writeFloat32(v.(float32))
	case VariantTypeDouble:
		b.writeFloat64(v.(float64))
	case VariantTypeString:
		sb, err := v.(String).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(sb)
	case VariantTypeDateTime:
		b.writeInt64(v.(int64))
	case VariantTypeByteString:
		bs, err := v.(ByteString).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(bs)
	case VariantTypeNodeID:
		nb, err := v.(*NodeID).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(nb)
	case VariantTypeStatusCode:
		b.writeUint32(uint32(v.(StatusCode)))
	case VariantTypeQualifiedName:
		qn := v.(QualifiedName)
		qb, err := qn.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(qb)
	case VariantTypeLocalizedText:
		lt := v.(LocalizedText)
		lb, err := lt.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(lb)
	case VariantTypeExtensionObject:
		eo := v.(*ExtensionObject)
		eb, err := eo.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(eb)
	case VariantTypeGUID:
		b.Write(encodeGUID(v.(uuid.UUID)))
	case VariantTypeXMLElement:
		xb, err := v.(XMLElement).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(xb)
	case VariantTypeExpandedNodeID:
		eb, err := v.(*ExpandedNodeID).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(eb)
	case VariantTypeDataValue:
		dv := v.(*DataValue)
		db, err := dv.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(db)
	case VariantTypeVariant:
		nested := v.(*Variant)
		nb, err := nested.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(nb)
	case VariantTypeDiagnosticInfo:
		di := v.(*DiagnosticInfo)
		db, err := di.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(db)
	default:
		return nil, StatusBadEncodingError
	}
	return b.Bytes(), nil
}

func decodeScalar(t VariantType, buf []byte, ctx *Context) (interface{}, int, error) {
	c := newCursor(buf, ctx)
	switch t {
	case VariantTypeBoolean:
		v, err := c.readBool()
		return v, c.pos, err
	case VariantTypeSByte:
		v, err := c.readInt8()
		return v, c.pos, err
	case VariantTypeByte:
		v, err := c.readUint8()
		return v, c.pos, err
	case VariantTypeInt16:
		v, err := c.readInt16()
		return v, c.pos, err
	case VariantTypeUint16:
		v, err := c.readUint16()
		return v, c.pos, err
	case VariantTypeInt32:
		v, err := c.readInt32()
		return v, c.pos, err
	case VariantTypeUint32:
		v, err := c.readUint32()
		return v, c.pos, err
	case VariantTypeInt64:
		v, err := c.readInt64()
		return v, c.pos, err
	case VariantTypeUint64:
		v, err := c.readUint64()
		return v, c.pos, err
	case VariantTypeFloat:
		v, err := c.readFloat32()
		return v, c.pos, err
	case VariantTypeDouble:
		v, err := c.readFloat64()
		return v, c.pos, err
	case VariantTypeString:
		var s String
		n, err := s.DecodeWithContext(buf, ctx)
		return s, n, err
	case VariantTypeDateTime:
		v, err := c.readInt64()
		return v, c.pos, err
	case VariantTypeByteString:
		var bs ByteString
		n, err := bs.DecodeWithContext(buf, ctx)
		return bs, n, err
	case VariantTypeNodeID:
		var id NodeID
		n, err := id.DecodeWithContext(buf, ctx)
		return &id, n, err
	case VariantTypeStatusCode:
		v, err := c.readUint32()
		return StatusCode(v), c.pos, err
	case VariantTypeQualifiedName:
		var qn QualifiedName
		n, err := qn.DecodeWithContext(buf, ctx)
		return qn, n, err
	case VariantTypeLocalizedText:
		var lt LocalizedText
		n, err := lt.DecodeWithContext(buf, ctx)
		return lt, n, err
	case VariantTypeExtensionObject:
		var eo ExtensionObject
		n, err := eo.DecodeWithContext(buf, ctx)
		return &eo, n, err
	case VariantTypeGUID:
		g, err := decodeGUID(c)
		return g, c.pos, err
	case VariantTypeXMLElement:
		var x XMLElement
		n, err := x.DecodeWithContext(buf, ctx)
		return x, n, err
	case VariantTypeExpandedNodeID:
		var id ExpandedNodeID
		n, err := id.DecodeWithContext(buf, ctx)
		return &id, n, err
	case VariantTypeDataValue:
		var dv DataValue
		n, err := dv.DecodeWithContext(buf, ctx)
		return &dv, n, err
	case VariantTypeVariant:
		var nested Variant
		n, err := nested.DecodeWithContext(buf, ctx)
		return &nested, n, err
	case VariantTypeDiagnosticInfo:
		var di DiagnosticInfo
		n, err := di.DecodeWithContext(buf, ctx)
		return &di, n, err
	default:
		return nil, 0, StatusBadDecodingError
	}
}
