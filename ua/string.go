// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// String (UAString) is a UTF-8 string that is either null or set, and the
// two must round-trip as distinct values. A zero-value String is null; use
// NewString("") to get a non-null empty string.
type String struct {
	value  string
	isNull bool
}

// NewString returns a non-null String, even when s is "".
func NewString(s string) String { return String{value: s, isNull: false} }

// NullString returns the null String.
func NullString() String { return String{isNull: true} }

// IsNull reports whether this is the null string.
func (s String) IsNull() bool { return s.isNull }

// Value returns the underlying Go string. A null String has value "".
func (s String) Value() string { return s.value }

// String implements fmt.Stringer.
func (s String) String() string { return s.value }

// Encode writes the length-prefixed UTF-8 bytes, -1 for null.
func (s String) Encode() ([]byte, error) {
	var b buffer
	if s.isNull {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(s.value)))
	b.WriteString(s.value)
	return b.Bytes(), nil
}

// Decode reads a length-prefixed UTF-8 string from buf using the default
// decoding limits. Use DecodeWithContext to apply configured caps.
func (s *String) Decode(buf []byte) (int, error) {
	return s.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
}

// DecodeWithContext reads a length-prefixed UTF-8 string, enforcing
// ctx.Limits.MaxStringLength.
func (s *String) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	n, isNull, err := c.readLength(ctx.Limits.MaxStringLength)
	if err != nil {
		return c.pos, err
	}
	if isNull {
		*s = String{isNull: true}
		return c.pos, nil
	}
	raw, err := c.readBytes(n)
	if err != nil {
		return c.pos, err
	}
	*s = String{value: string(raw)}
	return c.pos, nil
}

// ByteLen returns the number of bytes Encode would produce.
func (s String) ByteLen() int {
	if s.isNull {
		return 4
	}
	return 4 + len(s.value)
}
