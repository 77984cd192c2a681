// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"github.com/google/uuid"

	"github.com/vwopcua/opcua/errors"
)

// Variant is a tagged union over the 25 scalar types plus a
// multi-dimensional Array. For an Array, product(Dimensions)
// must equal len(Values) when Dimensions is non-empty, and every element of
// Values shares Type.
type Variant struct {
	Type       VariantType
	Value      interface{}   // set when !IsArray
	IsArray    bool
	Values     []interface{} // set when IsArray
	Dimensions []int32       // optional, only meaningful when IsArray
}

// NewVariant builds a scalar Variant for one of the supported Go types.
func NewVariant(v interface{}) (*Variant, error) {
	t, err := goValueVariantType(v)
	if err != nil {
		return nil, err
	}
	return &Variant{Type: t, Value: v}, nil
}

// NewArrayVariant builds an Array Variant. All values must share the same
// dynamic type; dims may be nil for a plain 1-D array.
func NewArrayVariant(values []interface{}, dims []int32) (*Variant, error) {
	if len(values) == 0 {
		return nil, errors.Errorf("ua: cannot infer type of empty array variant")
	}
	t, err := goValueVariantType(values[0])
	if err != nil {
		return nil, err
	}
	if len(dims) > 0 {
		product := int32(1)
		for _, d := range dims {
			product *= d
		}
		if int(product) != len(values) {
			return nil, errors.Errorf("ua: dimensions %v do not match %d values", dims, len(values))
		}
	}
	return &Variant{Type: t, IsArray: true, Values: values, Dimensions: dims}, nil
}

func goValueVariantType(v interface{}) (VariantType, error) {
	switch v.(type) {
	case bool:
		return VariantTypeBoolean, nil
	case int8:
		return VariantTypeSByte, nil
	case byte:
		return VariantTypeByte, nil
	case int16:
		return VariantTypeInt16, nil
	case uint16:
		return VariantTypeUint16, nil
	case int32:
		return VariantTypeInt32, nil
	case uint32:
		return VariantTypeUint32, nil
	case int64:
		return VariantTypeInt64, nil
	case uint64:
		return VariantTypeUint64, nil
	case float32:
		return VariantTypeFloat, nil
	case float64:
		return VariantTypeDouble, nil
	case String:
		return VariantTypeString, nil
	case ByteString:
		return VariantTypeByteString, nil
	case *NodeID:
		return VariantTypeNodeID, nil
	case StatusCode:
		return VariantTypeStatusCode, nil
	case QualifiedName:
		return VariantTypeQualifiedName, nil
	case LocalizedText:
		return VariantTypeLocalizedText, nil
	case *ExtensionObject:
		return VariantTypeExtensionObject, nil
	case uuid.UUID:
		return VariantTypeGUID, nil
	case XMLElement:
		return VariantTypeXMLElement, nil
	case *ExpandedNodeID:
		return VariantTypeExpandedNodeID, nil
	case *DataValue:
		return VariantTypeDataValue, nil
	case *Variant:
		return VariantTypeVariant, nil
	case *DiagnosticInfo:
		return VariantTypeDiagnosticInfo, nil
	default:
		return VariantTypeNull, errors.Errorf("ua: unsupported variant value type %T", v)
	}
}

// Encode implements the binary Variant encoding from OPC-UA Part 6, 5.2.2.16:
// an encoding-mask byte (bits 0-5 scalar type id, bit 6 dimensions present,
// bit 7 array present), the value(s), and optional dimensions.
func (v *Variant) Encode() ([]byte, error) {
	var b buffer
	mask := byte(v.Type) & variantTypeMask
	hasDims := v.IsArray && len(v.Dimensions) > 1
	if v.IsArray {
		mask |= variantArrayFlag
	}
	if hasDims {
		mask |= variantDimensionFlag
	}
	b.writeUint8(mask)

	if !v.IsArray {
		eb, err := encodeScalar(v.Type, v.Value)
		if err != nil {
			return nil, err
		}
		b.Write(eb)
		return b.Bytes(), nil
	}

	b.writeInt32(int32(len(v.Values)))
	for _, elem := range v.Values {
		eb, err := encodeScalar(v.Type, elem)
		if err != nil {
			return nil, err
		}
		b.Write(eb)
	}
	if hasDims {
		b.writeInt32(int32(len(v.Dimensions)))
		for _, d := range v.Dimensions {
			b.writeInt32(d)
		}
	}
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary Variant decoding, rebuilding a
// row-major Array and preserving Dimensions for the Matrix case.
func (v *Variant) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	if err := ctx.enterNested(); err != nil {
		return 0, err
	}
	defer ctx.exitNested()

	c := newCursor(buf, ctx)
	mask, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}
	isArray := mask&variantArrayFlag != 0
	hasDims := mask&variantDimensionFlag != 0
	t := VariantType(mask & variantTypeMask)

	if !isArray {
		val, n, err := decodeScalar(t, buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
		*v = Variant{Type: t, Value: val}
		return c.pos, nil
	}

	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	values := make([]interface{}, 0, length)
	if !isNull {
		for i := 0; i < length; i++ {
			val, n, err := decodeScalar(t, buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
			values = append(values, val)
		}
	}

	var dims []int32
	if hasDims {
		dimCount, dimNull, err := c.readLength(ctx.Limits.MaxArrayLength)
		if err != nil {
			return c.pos, err
		}
		if !dimNull {
			dims = make([]int32, dimCount)
			for i := range dims {
				d, err := c.readInt32()
				if err != nil {
					return c.pos, err
				}
				dims[i] = d
			}
			product := int32(1)
			for _, d := range dims {
				product *= d
			}
			if int(product) != len(values) {
				return c.pos, StatusBadDecodingError
			}
		}
	}

	*v = Variant{Type: t, IsArray: true, Values: values, Dimensions: dims}
	return c.pos, nil
}
