// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vwopcua/opcua/errors"
)

// NodeIDType is the identifier kind carried by a NodeID.
type NodeIDType uint8

const (
	NodeIDTypeNumeric NodeIDType = iota
	NodeIDTypeString
	NodeIDTypeGUID
	NodeIDTypeOpaque
)

// encoding-mask byte values from OPC-UA Part 6, 5.2.2.9.
const (
	nodeIDEncodingTwoByte  byte = 0x00
	nodeIDEncodingFourByte byte = 0x01
	nodeIDEncodingNumeric  byte = 0x02
	nodeIDEncodingString   byte = 0x03
	nodeIDEncodingGUID     byte = 0x04
	nodeIDEncodingOpaque   byte = 0x05
)

// NodeID is a 2-tuple of (namespace index, identifier) where identifier is
// one of {numeric uint32, string, Guid, opaque byte string}.
// Ordering is total: by (namespace, identifier kind, value).
type NodeID struct {
	ns       uint16
	idType   NodeIDType
	numeric  uint32
	str      string
	guid     uuid.UUID
	opaque   []byte
}

// NewTwoByteNodeID creates a numeric NodeID in namespace 0 with an id that
// fits in a single byte, using the compact two-byte wire encoding.
func NewTwoByteNodeID(id byte) *NodeID {
	return &NodeID{idType: NodeIDTypeNumeric, numeric: uint32(id)}
}

// NewFourByteNodeID creates a numeric NodeID using the compact four-byte
// wire encoding (namespace 0-255, id 0-65535).
func NewFourByteNodeID(ns uint8, id uint16) *NodeID {
	return &NodeID{ns: uint16(ns), idType: NodeIDTypeNumeric, numeric: uint32(id)}
}

// NewNumericNodeID creates a numeric NodeID.
func NewNumericNodeID(ns uint16, id uint32) *NodeID {
	return &NodeID{ns: ns, idType: NodeIDTypeNumeric, numeric: id}
}

// NewStringNodeID creates a string NodeID.
func NewStringNodeID(ns uint16, id string) *NodeID {
	return &NodeID{ns: ns, idType: NodeIDTypeString, str: id}
}

// NewGUIDNodeID creates a Guid NodeID.
func NewGUIDNodeID(ns uint16, id uuid.UUID) *NodeID {
	return &NodeID{ns: ns, idType: NodeIDTypeGUID, guid: id}
}

// NewByteStringNodeID creates an opaque-byte-string NodeID.
func NewByteStringNodeID(ns uint16, id []byte) *NodeID {
	return &NodeID{ns: ns, idType: NodeIDTypeOpaque, opaque: id}
}

// Namespace returns the namespace index.
func (n *NodeID) Namespace() uint16 { return n.ns }

// Type returns the identifier kind.
func (n *NodeID) Type() NodeIDType { return n.idType }

// IntID returns the numeric identifier. Only meaningful when Type() ==
// NodeIDTypeNumeric.
func (n *NodeID) IntID() uint32 { return n.numeric }

// StringID returns the string identifier. Only meaningful when Type() ==
// NodeIDTypeString.
func (n *NodeID) StringID() string { return n.str }

// GUID returns the Guid identifier. Only meaningful when Type() ==
// NodeIDTypeGUID.
func (n *NodeID) GUID() uuid.UUID { return n.guid }

// ByteID returns the opaque byte string identifier. Only meaningful when
// Type() == NodeIDTypeOpaque.
func (n *NodeID) ByteID() []byte { return n.opaque }

// IsNil reports whether this NodeID is null: namespace 0 and the zero value
// of its identifier kind.
func (n *NodeID) IsNil() bool {
	if n == nil {
		return true
	}
	if n.ns != 0 {
		return false
	}
	switch n.idType {
	case NodeIDTypeNumeric:
		return n.numeric == 0
	case NodeIDTypeString:
		return n.str == ""
	case NodeIDTypeGUID:
		return n.guid == uuid.Nil
	case NodeIDTypeOpaque:
		return len(n.opaque) == 0
	}
	return true
}

// Compare implements the total ordering by (namespace, kind, value) from
// It returns -1, 0 or 1.
func (n *NodeID) Compare(other *NodeID) int {
	if n.ns != other.ns {
		if n.ns < other.ns {
			return -1
		}
		return 1
	}
	if n.idType != other.idType {
		if n.idType < other.idType {
			return -1
		}
		return 1
	}
	switch n.idType {
	case NodeIDTypeNumeric:
		switch {
		case n.numeric < other.numeric:
			return -1
		case n.numeric > other.numeric:
			return 1
		default:
			return 0
		}
	case NodeIDTypeString:
		switch {
		case n.str < other.str:
			return -1
		case n.str > other.str:
			return 1
		default:
			return 0
		}
	case NodeIDTypeGUID:
		return bytesCompare(n.guid[:], other.guid[:])
	case NodeIDTypeOpaque:
		return bytesCompare(n.opaque, other.opaque)
	}
	return 0
}

func bytesCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// String implements fmt.Stringer using the conventional ns=N;kind=value
// notation.
func (n *NodeID) String() string {
	if n == nil {
		return "ns=0;i=0"
	}
	switch n.idType {
	case NodeIDTypeNumeric:
		return fmt.Sprintf("ns=%d;i=%d", n.ns, n.numeric)
	case NodeIDTypeString:
		return fmt.Sprintf("ns=%d;s=%s", n.ns, n.str)
	case NodeIDTypeGUID:
		return fmt.Sprintf("ns=%d;g=%s", n.ns, n.guid)
	case NodeIDTypeOpaque:
		return fmt.Sprintf("ns=%d;b=%x", n.ns, n.opaque)
	}
	return "<invalid node id>"
}

// Encode implements the binary NodeID encoding from OPC-UA Part 6, 5.2.2.9,
// picking the most compact form that fits.
func (n *NodeID) Encode() ([]byte, error) {
	var b buffer
	switch n.idType {
	case NodeIDTypeNumeric:
		switch {
		case n.ns == 0 && n.numeric <= 0xFF:
			b.writeUint8(nodeIDEncodingTwoByte)
			b.writeUint8(uint8(n.numeric))
		case n.ns <= 0xFF && n.numeric <= 0xFFFF:
			b.writeUint8(nodeIDEncodingFourByte)
			b.writeUint8(uint8(n.ns))
			b.writeUint16(uint16(n.numeric))
		default:
			b.writeUint8(nodeIDEncodingNumeric)
			b.writeUint16(n.ns)
			b.writeUint32(n.numeric)
		}
	case NodeIDTypeString:
		b.writeUint8(nodeIDEncodingString)
		b.writeUint16(n.ns)
		s, _ := NewString(n.str).Encode()
		b.Write(s)
	case NodeIDTypeGUID:
		b.writeUint8(nodeIDEncodingGUID)
		b.writeUint16(n.ns)
		b.Write(encodeGUID(n.guid))
	case NodeIDTypeOpaque:
		b.writeUint8(nodeIDEncodingOpaque)
		b.writeUint16(n.ns)
		bs, _ := NewByteString(n.opaque).Encode()
		b.Write(bs)
	default:
		return nil, errors.Errorf("ua: invalid node id type %d", n.idType)
	}
	return b.Bytes(), nil
}

// Decode implements the binary NodeID decoding using default limits.
func (n *NodeID) Decode(buf []byte) (int, error) {
	return n.DecodeWithContext(buf, NewContext(nil, DefaultDecodingLimits()))
}

// DecodeWithContext implements the binary NodeID decoding from OPC-UA Part
// 6, 5.2.2.9.
func (n *NodeID) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	mask, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}
	switch mask {
	case nodeIDEncodingTwoByte:
		id, err := c.readUint8()
		if err != nil {
			return c.pos, err
		}
		*n = NodeID{idType: NodeIDTypeNumeric, numeric: uint32(id)}
	case nodeIDEncodingFourByte:
		ns, err := c.readUint8()
		if err != nil {
			return c.pos, err
		}
		id, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		*n = NodeID{ns: uint16(ns), idType: NodeIDTypeNumeric, numeric: uint32(id)}
	case nodeIDEncodingNumeric:
		ns, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		id, err := c.readUint32()
		if err != nil {
			return c.pos, err
		}
		*n = NodeID{ns: ns, idType: NodeIDTypeNumeric, numeric: id}
	case nodeIDEncodingString:
		ns, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		var s String
		m, err := s.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += m
		*n = NodeID{ns: ns, idType: NodeIDTypeString, str: s.Value()}
	case nodeIDEncodingGUID:
		ns, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		g, err := decodeGUID(c)
		if err != nil {
			return c.pos, err
		}
		*n = NodeID{ns: ns, idType: NodeIDTypeGUID, guid: g}
	case nodeIDEncodingOpaque:
		ns, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		var bs ByteString
		m, err := bs.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += m
		*n = NodeID{ns: ns, idType: NodeIDTypeOpaque, opaque: bs.Value()}
	default:
		return c.pos, StatusBadDecodingError
	}
	return c.pos, nil
}

// ExpandedNodeID is a NodeID plus an optional namespace URI and server
// index.
type ExpandedNodeID struct {
	NodeID       *NodeID
	NamespaceURI string
	ServerIndex  uint32
}

// NewFourByteExpandedNodeID creates an ExpandedNodeID around a four-byte
// numeric NodeID, the common case for referencing well-known types.
func NewFourByteExpandedNodeID(ns uint8, id uint16) *ExpandedNodeID {
	return &ExpandedNodeID{NodeID: NewFourByteNodeID(ns, id)}
}

// Resolve converts an ExpandedNodeID to a plain NodeID using ctx's
// namespace map. Resolution fails if NamespaceURI is set but not
// registered.
func (e *ExpandedNodeID) Resolve(ctx *Context) (*NodeID, error) {
	if e.NamespaceURI == "" {
		return e.NodeID, nil
	}
	idx, ok := ctx.NamespaceIndex(e.NamespaceURI)
	if !ok {
		return nil, errors.Errorf("ua: namespace URI %q is not registered", e.NamespaceURI)
	}
	n := *e.NodeID
	n.ns = idx
	return &n, nil
}

// encoding-mask flags from OPC-UA Part 6, 5.2.2.10, OR'd onto the inner
// NodeID's own encoding-mask byte.
const (
	expandedNodeIDNamespaceURIFlag byte = 0x80
	expandedNodeIDServerIndexFlag  byte = 0x40
)

// Encode implements the binary ExpandedNodeID encoding.
func (e *ExpandedNodeID) Encode() ([]byte, error) {
	id := e.NodeID
	if id == nil {
		id = NewTwoByteNodeID(0)
	}
	nb, err := id.Encode()
	if err != nil {
		return nil, err
	}

	var b buffer
	mask := nb[0]
	if e.NamespaceURI != "" {
		mask |= expandedNodeIDNamespaceURIFlag
	}
	if e.ServerIndex != 0 {
		mask |= expandedNodeIDServerIndexFlag
	}
	b.writeUint8(mask)
	b.Write(nb[1:])

	if e.NamespaceURI != "" {
		sb, err := NewString(e.NamespaceURI).Encode()
		if err != nil {
			return nil, err
		}
		b.Write(sb)
	}
	if e.ServerIndex != 0 {
		b.writeUint32(e.ServerIndex)
	}
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary ExpandedNodeID decoding.
func (e *ExpandedNodeID) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	if len(buf) < 1 {
		return 0, StatusBadDecodingError
	}
	mask := buf[0]
	hasNamespaceURI := mask&expandedNodeIDNamespaceURIFlag != 0
	hasServerIndex := mask&expandedNodeIDServerIndexFlag != 0

	nodeIDBuf := make([]byte, len(buf))
	copy(nodeIDBuf, buf)
	nodeIDBuf[0] = mask &^ (expandedNodeIDNamespaceURIFlag | expandedNodeIDServerIndexFlag)

	var id NodeID
	pos, err := id.DecodeWithContext(nodeIDBuf, ctx)
	if err != nil {
		return pos, err
	}

	out := ExpandedNodeID{NodeID: &id}
	if hasNamespaceURI {
		var s String
		n, err := s.DecodeWithContext(buf[pos:], ctx)
		if err != nil {
			return pos, err
		}
		pos += n
		out.NamespaceURI = s.Value()
	}
	if hasServerIndex {
		c := newCursor(buf[pos:], ctx)
		v, err := c.readUint32()
		if err != nil {
			return pos, err
		}
		pos += c.pos
		out.ServerIndex = v
	}

	*e = out
	return pos, nil
}

// encodeGUID writes a Guid's 16 bytes per Part 6, 5.1.3: three
// little-endian fields (Data1 uint32, Data2/Data3 uint16) followed by the 8
// raw bytes of Data4.
func encodeGUID(g uuid.UUID) []byte {
	var b buffer
	b.writeUint32(uint32(g[3])<<24 | uint32(g[2])<<16 | uint32(g[1])<<8 | uint32(g[0]))
	b.writeUint16(uint16(g[5])<<8 | uint16(g[4]))
	b.writeUint16(uint16(g[7])<<8 | uint16(g[6]))
	b.Write(g[8:16])
	return b.Bytes()
}

// decodeGUID reads the 16 bytes encodeGUID writes.
func decodeGUID(c *cursor) (uuid.UUID, error) {
	d1, err := c.readUint32()
	if err != nil {
		return uuid.Nil, err
	}
	d2, err := c.readUint16()
	if err != nil {
		return uuid.Nil, err
	}
	d3, err := c.readUint16()
	if err != nil {
		return uuid.Nil, err
	}
	d4, err := c.readBytes(8)
	if err != nil {
		return uuid.Nil, err
	}
	var g uuid.UUID
	g[0], g[1], g[2], g[3] = byte(d1), byte(d1>>8), byte(d1>>16), byte(d1>>24)
	g[4], g[5] = byte(d2), byte(d2>>8)
	g[6], g[7] = byte(d3), byte(d3>>8)
	copy(g[8:16], d4)
	return g, nil
}
