// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "github.com/vwopcua/opcua/errors"

// ExtensionObjectEncoding identifies how an ExtensionObject's Body is
// represented on the wire (Part 6, 5.2.2.15).
type ExtensionObjectEncoding byte

const (
	ExtensionObjectEncodingNone ExtensionObjectEncoding = iota
	ExtensionObjectEncodingByteString
	ExtensionObjectEncodingXML
)

// ExtensionObject wraps an opaque, type-tagged payload. TypeID identifies
// the binary encoding of the wrapped type; Value holds the decoded Go value
// once a registered TypeLoader has claimed the body, or nil if no loader
// recognized it (in which case Body and Encoding still carry the raw bytes).
type ExtensionObject struct {
	TypeID   *ExpandedNodeID
	Encoding ExtensionObjectEncoding
	Body     []byte
	Value    interface{}
}

// NewExtensionObject wraps an already-encoded body under the given binary
// encoding id.
func NewExtensionObject(typeID *ExpandedNodeID, body []byte) *ExtensionObject {
	return &ExtensionObject{TypeID: typeID, Encoding: ExtensionObjectEncodingByteString, Body: body}
}

// Encode implements the binary ExtensionObject encoding.
func (e *ExtensionObject) Encode() ([]byte, error) {
	var b buffer
	if e.TypeID == nil {
		nilID := NewFourByteExpandedNodeID(0, 0)
		nb, err := nilID.NodeID.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(nb)
		b.writeUint8(byte(ExtensionObjectEncodingNone))
		return b.Bytes(), nil
	}
	nb, err := e.TypeID.NodeID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	b.writeUint8(byte(e.Encoding))
	if e.Encoding == ExtensionObjectEncodingNone {
		return b.Bytes(), nil
	}
	bs := NewByteString(e.Body)
	bsb, err := bs.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(bsb)
	return b.Bytes(), nil
}

// DecodeWithContext decodes the wire form and, when a TypeLoader registered
// on ctx recognizes TypeID, eagerly unmarshals Body into Value.
func (e *ExtensionObject) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	if err := ctx.enterNested(); err != nil {
		return 0, err
	}
	defer ctx.exitNested()

	c := newCursor(buf, ctx)
	var id NodeID
	n, err := id.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n

	enc, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}

	out := ExtensionObject{
		TypeID:   &ExpandedNodeID{NodeID: &id},
		Encoding: ExtensionObjectEncoding(enc),
	}
	if out.Encoding == ExtensionObjectEncodingNone {
		*e = out
		return c.pos, nil
	}

	var body ByteString
	bn, err := body.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += bn
	out.Body = body.Value()

	if out.Encoding == ExtensionObjectEncodingByteString {
		for _, loader := range ctx.TypeLoaders {
			value, ok, err := loader.Load(idNamespaceURI(ctx, id.Namespace()), id.IntID(), out.Body, ctx)
			if err != nil {
				return c.pos, err
			}
			if ok {
				out.Value = value
				break
			}
		}
	}

	*e = out
	return c.pos, nil
}

func idNamespaceURI(ctx *Context, ns uint16) string {
	if int(ns) < len(ctx.NamespaceURIs) {
		return ctx.NamespaceURIs[ns]
	}
	return ""
}

// ErrUnknownExtensionObject is returned by callers that need a decoded
// Value but only received a raw Body because no TypeLoader claimed it.
var ErrUnknownExtensionObject = errors.New("ua: extension object body has no registered decoder")
