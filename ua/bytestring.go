// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// ByteString is an opaque byte sequence that is either null or set, with
// the same null-vs-empty distinction as String.
type ByteString struct {
	value  []byte
	isNull bool
}

// NewByteString returns a non-null ByteString, even for an empty slice.
func NewByteString(b []byte) ByteString {
	if b == nil {
		b = []byte{}
	}
	return ByteString{value: b}
}

// NullByteString returns the null ByteString.
func NullByteString() ByteString { return ByteString{isNull: true} }

// IsNull reports whether this is the null byte string.
func (b ByteString) IsNull() bool { return b.isNull }

// Value returns the underlying bytes. A null ByteString has a nil value.
func (b ByteString) Value() []byte {
	if b.isNull {
		return nil
	}
	return b.value
}

// Encode writes the length-prefixed bytes, -1 for null.
func (b ByteString) Encode() ([]byte, error) {
	var buf buffer
	if b.isNull {
		buf.writeInt32(-1)
		return buf.Bytes(), nil
	}
	buf.writeInt32(int32(len(b.value)))
	buf.Write(b.value)
	return buf.Bytes(), nil
}

// Decode reads a length-prefixed byte string using the default limits.
func (b *ByteString) Decode(buf []byte) (int, error) {
	return b.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
}

// DecodeWithContext reads a length-prefixed byte string, enforcing
// ctx.Limits.MaxByteStringLength.
func (b *ByteString) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	n, isNull, err := c.readLength(ctx.Limits.MaxByteStringLength)
	if err != nil {
		return c.pos, err
	}
	if isNull {
		*b = ByteString{isNull: true}
		return c.pos, nil
	}
	raw, err := c.readBytes(n)
	if err != nil {
		return c.pos, err
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	*b = ByteString{value: cp}
	return c.pos, nil
}

// ByteLen returns the number of bytes Encode would produce.
func (b ByteString) ByteLen() int {
	if b.isNull {
		return 4
	}
	return 4 + len(b.value)
}
