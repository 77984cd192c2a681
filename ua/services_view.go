// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// BrowseDirection constrains which references a Browse traverses relative
// to a node (Part 4, 7.8).
type BrowseDirection uint32

const (
	BrowseDirectionForward BrowseDirection = 0
	BrowseDirectionInverse BrowseDirection = 1
	BrowseDirectionBoth    BrowseDirection = 2
)

// NodeClassMask filters Browse results by node class; values OR together
// (Part 4, 7.17 encodes NodeClass as a bitmask here, an enum elsewhere).
type NodeClassMask uint32

const NodeClassMaskAll NodeClassMask = 0

// BrowseResultMask selects which ReferenceDescription fields a Browse
// populates (Part 4, 7.8).
type BrowseResultMask uint32

const BrowseResultMaskAll BrowseResultMask = 0x3f

// BrowseDescription specifies one node to browse from and the filters to
// apply (Part 4, 7.8).
type BrowseDescription struct {
	NodeID          *NodeID
	Direction       BrowseDirection
	ReferenceTypeID *NodeID
	IncludeSubtypes bool
	NodeClassMask   NodeClassMask
	ResultMask      BrowseResultMask
}

func (d *BrowseDescription) Encode() ([]byte, error) {
	var b buffer
	nb, err := d.NodeID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	b.writeUint32(uint32(d.Direction))
	refID := d.ReferenceTypeID
	if refID == nil {
		refID = NewTwoByteNodeID(0)
	}
	rb, err := refID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(rb)
	b.writeBool(d.IncludeSubtypes)
	b.writeUint32(uint32(d.NodeClassMask))
	b.writeUint32(uint32(d.ResultMask))
	return b.Bytes(), nil
}

func (d *BrowseDescription) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var nid, refID NodeID
	n, err := nid.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	dir, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	n, err = refID.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	sub, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	classMask, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	resultMask, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*d = BrowseDescription{
		NodeID:          &nid,
		Direction:       BrowseDirection(dir),
		ReferenceTypeID: &refID,
		IncludeSubtypes: sub,
		NodeClassMask:   NodeClassMask(classMask),
		ResultMask:      BrowseResultMask(resultMask),
	}
	return c.pos, nil
}

// ReferenceDescription describes one reference found by Browse/BrowseNext
// (Part 4, 7.28).
type ReferenceDescription struct {
	ReferenceTypeID *NodeID
	IsForward       bool
	NodeID          *ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       uint32
	TypeDefinition  *ExpandedNodeID
}

func (r *ReferenceDescription) Encode() ([]byte, error) {
	var b buffer
	rb, err := r.ReferenceTypeID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(rb)
	b.writeBool(r.IsForward)
	nb, err := encodeExpandedNodeID(r.NodeID)
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	bnb, err := r.BrowseName.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(bnb)
	dnb, err := r.DisplayName.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(dnb)
	b.writeUint32(r.NodeClass)
	tb, err := encodeExpandedNodeID(r.TypeDefinition)
	if err != nil {
		return nil, err
	}
	b.Write(tb)
	return b.Bytes(), nil
}

func encodeExpandedNodeID(e *ExpandedNodeID) ([]byte, error) {
	if e == nil || e.NodeID == nil {
		nid := NewTwoByteNodeID(0)
		return nid.Encode()
	}
	return e.NodeID.Encode()
}

func (r *ReferenceDescription) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var refID NodeID
	n, err := refID.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	forward, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	var nid NodeID
	n, err = nid.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var browseName QualifiedName
	n, err = browseName.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var displayName LocalizedText
	n, err = displayName.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	nodeClass, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var typeDef NodeID
	n, err = typeDef.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = ReferenceDescription{
		ReferenceTypeID: &refID,
		IsForward:       forward,
		NodeID:          &ExpandedNodeID{NodeID: &nid},
		BrowseName:      browseName,
		DisplayName:     displayName,
		NodeClass:       nodeClass,
		TypeDefinition:  &ExpandedNodeID{NodeID: &typeDef},
	}
	return c.pos, nil
}

// BrowseResult carries the references found for one BrowseDescription, and
// a ContinuationPoint when the result was truncated (Part 4, 7.9).
type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint ByteString
	References        []ReferenceDescription
}

func (r *BrowseResult) Encode() ([]byte, error) {
	var b buffer
	b.writeUint32(uint32(r.StatusCode))
	cb, err := r.ContinuationPoint.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(cb)
	if r.References == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.References)))
	for i := range r.References {
		rb, err := r.References[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(rb)
	}
	return b.Bytes(), nil
}

func (r *BrowseResult) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	status, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var cp ByteString
	n, err := cp.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var refs []ReferenceDescription
	if !isNull {
		refs = make([]ReferenceDescription, length)
		for i := range refs {
			n, err := refs[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = BrowseResult{StatusCode: StatusCode(status), ContinuationPoint: cp, References: refs}
	return c.pos, nil
}

// BrowseRequest discovers the references of a set of nodes (Part 4,
// 5.8.2). A server limits the references returned per node to
// RequestedMaxReferencesPerNode and hands back a ContinuationPoint for the
// remainder, consumed by BrowseNextRequest.
type BrowseRequest struct {
	RequestHeader                RequestHeader
	View                          *ViewDescription
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse                 []BrowseDescription
}

// ViewDescription restricts Browse to a named view of the address space
// (Part 4, 7.44). The zero value means "the full address space".
type ViewDescription struct {
	ViewID    *NodeID
	Timestamp int64
	ViewVersion uint32
}

func (r *BrowseRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	view := r.View
	if view == nil {
		view = &ViewDescription{ViewID: NewTwoByteNodeID(0)}
	}
	vb, err := view.ViewID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(vb)
	b.writeInt64(view.Timestamp)
	b.writeUint32(view.ViewVersion)
	b.writeUint32(r.RequestedMaxReferencesPerNode)
	if r.NodesToBrowse == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.NodesToBrowse)))
	for i := range r.NodesToBrowse {
		nb, err := r.NodesToBrowse[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(nb)
	}
	return b.Bytes(), nil
}

func (r *BrowseRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var viewID NodeID
	n, err = viewID.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	ts, err := c.readInt64()
	if err != nil {
		return c.pos, err
	}
	ver, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	maxRefs, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var nodes []BrowseDescription
	if !isNull {
		nodes = make([]BrowseDescription, length)
		for i := range nodes {
			n, err := nodes[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = BrowseRequest{
		RequestHeader:                 hdr,
		View:                          &ViewDescription{ViewID: &viewID, Timestamp: ts, ViewVersion: ver},
		RequestedMaxReferencesPerNode: maxRefs,
		NodesToBrowse:                 nodes,
	}
	return c.pos, nil
}

// BrowseResponse returns the per-node BrowseResult, in the same order as
// BrowseRequest.NodesToBrowse (Part 4, 5.8.2).
type BrowseResponse struct {
	ResponseHeader ResponseHeader
	Results        []BrowseResult
}

func (r *BrowseResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Results == nil {
		b.writeInt32(-1)
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.Results)))
	for i := range r.Results {
		rb, err := r.Results[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(rb)
	}
	b.writeInt32(-1) // diagnostic infos
	return b.Bytes(), nil
}

func (r *BrowseResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var results []BrowseResult
	if !isNull {
		results = make([]BrowseResult, length)
		for i := range results {
			n, err := results[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = BrowseResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// BrowseNextRequest retrieves the next batch of references for a
// continuation point returned by Browse/BrowseNext, or releases it (Part 4,
// 5.8.3).
type BrowseNextRequest struct {
	RequestHeader         RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints    []ByteString
}

func (r *BrowseNextRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeBool(r.ReleaseContinuationPoints)
	if r.ContinuationPoints == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.ContinuationPoints)))
	for _, cp := range r.ContinuationPoints {
		cb, err := cp.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(cb)
	}
	return b.Bytes(), nil
}

func (r *BrowseNextRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	release, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var cps []ByteString
	if !isNull {
		cps = make([]ByteString, length)
		for i := range cps {
			n, err := cps[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = BrowseNextRequest{RequestHeader: hdr, ReleaseContinuationPoints: release, ContinuationPoints: cps}
	return c.pos, nil
}

// BrowseNextResponse answers a BrowseNextRequest (Part 4, 5.8.3).
type BrowseNextResponse struct {
	ResponseHeader ResponseHeader
	Results        []BrowseResult
}

func (r *BrowseNextResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Results == nil {
		b.writeInt32(-1)
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.Results)))
	for i := range r.Results {
		rb, err := r.Results[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(rb)
	}
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *BrowseNextResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var results []BrowseResult
	if !isNull {
		results = make([]BrowseResult, length)
		for i := range results {
			n, err := results[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = BrowseNextResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}
