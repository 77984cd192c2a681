// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package typetree stores the subtype graph among data types, reference
// types, object types, and variable types, and answers the subtype and
// encoding-id queries the codec and the server's write validation need.
package typetree

import (
	"sync"

	"github.com/vwopcua/opcua/id"
	"github.com/vwopcua/opcua/ua"
)

// Well-known namespace-0 data type ids (Part 6, Annex A) not already carried
// by the id package.
const (
	byteDataTypeID       uint32 = 3
	byteStringDataTypeID uint32 = 15
)

// DataTypeVariant classifies how a DataType node's values are shaped.
type DataTypeVariant int

const (
	Primitive DataTypeVariant = iota
	Structure
	Enumeration
	OptionSet
)

func (v DataTypeVariant) String() string {
	switch v {
	case Structure:
		return "Structure"
	case Enumeration:
		return "Enumeration"
	case OptionSet:
		return "OptionSet"
	default:
		return "Primitive"
	}
}

// EncodingIDs carries the binary/XML/JSON encoding object ids registered
// for a Structure or Enumeration DataType.
type EncodingIDs struct {
	Binary *ua.NodeID
	XML    *ua.NodeID
	JSON   *ua.NodeID
}

type edge struct {
	target        string
	referenceType *ua.NodeID
}

// Tree is the (by_source, by_target) hash-indexed reference graph (design
// note "cyclic reference graphs in the address space"): never an
// owning-pointer graph between nodes, just two maps keyed by NodeID string
// form holding value sets of (target, reference type).
type Tree struct {
	mu       sync.RWMutex
	bySource map[string][]edge
	byTarget map[string][]edge
	nodes    map[string]*ua.NodeID
	variants map[string]DataTypeVariant
	encoding map[string]EncodingIDs
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{
		bySource: make(map[string][]edge),
		byTarget: make(map[string][]edge),
		nodes:    make(map[string]*ua.NodeID),
		variants: make(map[string]DataTypeVariant),
		encoding: make(map[string]EncodingIDs),
	}
}

// AddReference records a forward reference source --referenceType--> target.
// Deletion (not currently exposed; the address space this stack serves is
// assembled once at startup) would walk both indices to stay consistent.
func (t *Tree) AddReference(source, referenceType, target *ua.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes[source.String()] = source
	t.nodes[target.String()] = target
	t.bySource[source.String()] = append(t.bySource[source.String()], edge{target: target.String(), referenceType: referenceType})
	t.byTarget[target.String()] = append(t.byTarget[target.String()], edge{target: source.String(), referenceType: referenceType})
}

// AddSubtype is a convenience wrapper over AddReference for the HasSubtype
// reference that drives IsSubtypeOf: super --HasSubtype--> sub.
func (t *Tree) AddSubtype(super, sub *ua.NodeID) {
	t.AddReference(super, ua.NewFourByteNodeID(0, uint16(id.HasSubtype)), sub)
}

// SetVariant records how DataType dt's values are shaped.
func (t *Tree) SetVariant(dt *ua.NodeID, v DataTypeVariant) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.variants[dt.String()] = v
}

// SetEncodingIDs records the encoding object ids for DataType dt.
func (t *Tree) SetEncodingIDs(dt *ua.NodeID, ids EncodingIDs) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoding[dt.String()] = ids
}

// IsSubtypeOf reports whether a is b, or reachable from b by walking
// HasSubtype references downward from b. Every type is its own subtype.
func (t *Tree) IsSubtypeOf(a, b *ua.NodeID) bool {
	if a == nil || b == nil {
		return false
	}
	if a.String() == b.String() {
		return true
	}

	// Byte/ByteString value-rank edge case lives in the caller
	// (CanAssignByteString), not here: IsSubtypeOf is a pure type-graph
	// query and the edge case is about value-to-declared-type assignment.
	t.mu.RLock()
	defer t.mu.RUnlock()

	visited := map[string]bool{b.String(): true}
	queue := []string{b.String()}
	target := a.String()
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range t.bySource[cur] {
			if !t.isHasSubtype(e.referenceType) {
				continue
			}
			if e.target == target {
				return true
			}
			if !visited[e.target] {
				visited[e.target] = true
				queue = append(queue, e.target)
			}
		}
	}
	return false
}

func (t *Tree) isHasSubtype(rt *ua.NodeID) bool {
	return rt != nil && rt.Namespace() == 0 && rt.Type() == ua.NodeIDTypeNumeric && rt.IntID() == uint32(id.HasSubtype)
}

// DataTypeVariant returns how DataType dt's values are shaped, defaulting
// to Primitive for an id this Tree has no explicit record for (covers the
// built-in scalar types, which are never registered explicitly).
func (t *Tree) DataTypeVariant(dt *ua.NodeID) DataTypeVariant {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.variants[dt.String()]
}

// EncodingIDs returns the registered encoding object ids for DataType dt.
func (t *Tree) EncodingIDs(dt *ua.NodeID) (EncodingIDs, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids, ok := t.encoding[dt.String()]
	return ids, ok
}

// CanAssignByteString reports whether a ByteString value may be written to
// a variable whose declared DataType is Byte with the given value rank,
// the edge case where Part 3 treats a byte array as indistinguishable from
// a ByteString on the wire: value rank -2 (scalar or array), -3 (scalar or
// one-dimensional array), or 1 (one-dimensional array).
func CanAssignByteString(declaredDataType *ua.NodeID, valueRank int32) bool {
	if declaredDataType == nil || declaredDataType.Namespace() != 0 || declaredDataType.Type() != ua.NodeIDTypeNumeric {
		return false
	}
	if declaredDataType.IntID() != byteDataTypeID {
		return false
	}
	switch valueRank {
	case -2, -3, 1:
		return true
	default:
		return false
	}
}

// CanAssign reports whether a value of dynamic type valueType may be
// written to a variable whose declared type is declaredDataType, applying
// both the ordinary subtype rule and the Byte/ByteString edge case.
func (t *Tree) CanAssign(declaredDataType, valueType *ua.NodeID, valueRank int32, valueIsByteString bool) bool {
	if valueIsByteString && CanAssignByteString(declaredDataType, valueRank) {
		return true
	}
	return t.IsSubtypeOf(valueType, declaredDataType)
}
