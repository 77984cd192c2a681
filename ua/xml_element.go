// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// XMLElement is an XML fragment, encoded identically to ByteString (Part 6,
// 5.1.16): a length-prefixed raw byte sequence, -1 meaning null.
type XMLElement struct {
	value  []byte
	isNull bool
}

// NewXMLElement returns a non-null XMLElement, even for an empty slice.
func NewXMLElement(b []byte) XMLElement {
	return XMLElement(NewByteString(b))
}

// NullXMLElement returns the null XMLElement.
func NullXMLElement() XMLElement { return XMLElement{isNull: true} }

// IsNull reports whether this is the null XMLElement.
func (x XMLElement) IsNull() bool { return x.isNull }

// Value returns the underlying XML bytes. A null XMLElement has a nil value.
func (x XMLElement) Value() []byte { return ByteString(x).Value() }

// Encode writes the length-prefixed bytes, -1 for null.
func (x XMLElement) Encode() ([]byte, error) { return ByteString(x).Encode() }

// DecodeWithContext reads a length-prefixed XMLElement, enforcing
// ctx.Limits.MaxByteStringLength.
func (x *XMLElement) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	var bs ByteString
	n, err := bs.DecodeWithContext(buf, ctx)
	if err != nil {
		return n, err
	}
	*x = XMLElement(bs)
	return n, nil
}
