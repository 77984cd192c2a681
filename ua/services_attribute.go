// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// TimestampsToReturn selects which timestamps a Read/monitored item
// includes in its DataValues (Part 4, 7.38).
type TimestampsToReturn uint32

const (
	TimestampsToReturnSource TimestampsToReturn = 0
	TimestampsToReturnServer TimestampsToReturn = 1
	TimestampsToReturnBoth   TimestampsToReturn = 2
	TimestampsToReturnNeither TimestampsToReturn = 3
)

// AttributeID identifies which facet of a node Read/Write targets (Part 4,
// 7.2 maps the symbolic names used here to the numeric ids on the wire).
type AttributeID uint32

const (
	AttributeIDNodeID AttributeID = iota + 1
	AttributeIDNodeClass
	AttributeIDBrowseName
	AttributeIDDisplayName
	AttributeIDDescription
	AttributeIDWriteMask
	AttributeIDUserWriteMask
	AttributeIDIsAbstract
	AttributeIDSymmetric
	AttributeIDInverseName
	AttributeIDContainsNoLoops
	AttributeIDEventNotifier
	AttributeIDValue
	AttributeIDDataType
	AttributeIDValueRank
	AttributeIDArrayDimensions
	AttributeIDAccessLevel
	AttributeIDUserAccessLevel
	AttributeIDMinimumSamplingInterval
	AttributeIDHistorizing
	AttributeIDExecutable
	AttributeIDUserExecutable
)

// ReadValueID identifies one attribute to read or monitor (Part 4, 7.31).
type ReadValueID struct {
	NodeID       *NodeID
	AttributeID  AttributeID
	IndexRange   String
	DataEncoding QualifiedName
}

func (r *ReadValueID) Encode() ([]byte, error) {
	var b buffer
	nb, err := r.NodeID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	b.writeUint32(uint32(r.AttributeID))
	ib, err := r.IndexRange.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ib)
	db, err := r.DataEncoding.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(db)
	return b.Bytes(), nil
}

func (r *ReadValueID) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var nid NodeID
	n, err := nid.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	attr, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	idxRange, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	var enc QualifiedName
	n, err = enc.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = ReadValueID{NodeID: &nid, AttributeID: AttributeID(attr), IndexRange: idxRange, DataEncoding: enc}
	return c.pos, nil
}

// ReadRequest requests the current value of a set of node attributes
// (Part 4, 5.10.2).
type ReadRequest struct {
	RequestHeader      RequestHeader
	MaxAge             float64
	TimestampsToReturn TimestampsToReturn
	NodesToRead        []ReadValueID
}

func (r *ReadRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeFloat64(r.MaxAge)
	b.writeUint32(uint32(r.TimestampsToReturn))
	if r.NodesToRead == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.NodesToRead)))
	for i := range r.NodesToRead {
		nb, err := r.NodesToRead[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(nb)
	}
	return b.Bytes(), nil
}

func (r *ReadRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	maxAge, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	tsReturn, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var nodes []ReadValueID
	if !isNull {
		nodes = make([]ReadValueID, length)
		for i := range nodes {
			n, err := nodes[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = ReadRequest{RequestHeader: hdr, MaxAge: maxAge, TimestampsToReturn: TimestampsToReturn(tsReturn), NodesToRead: nodes}
	return c.pos, nil
}

// ReadResponse returns the DataValues requested by a ReadRequest, in the
// same order (Part 4, 5.10.2).
type ReadResponse struct {
	ResponseHeader ResponseHeader
	Results        []DataValue
}

func (r *ReadResponse) Encode() ([]byte, error) {
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
		db, err := r.Results[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(db)
	}
	b.writeInt32(-1) // diagnostic infos
	return b.Bytes(), nil
}

func (r *ReadResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
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
	var results []DataValue
	if !isNull {
		results = make([]DataValue, length)
		for i := range results {
			n, err := results[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil { // diagnostic infos
		return c.pos, err
	}
	*r = ReadResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// WriteValue pairs an attribute location with the DataValue to store there
// (Part 4, 7.45).
type WriteValue struct {
	NodeID      *NodeID
	AttributeID AttributeID
	IndexRange  String
	Value       DataValue
}

func (w *WriteValue) Encode() ([]byte, error) {
	var b buffer
	nb, err := w.NodeID.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	b.writeUint32(uint32(w.AttributeID))
	ib, err := w.IndexRange.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ib)
	vb, err := w.Value.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(vb)
	return b.Bytes(), nil
}

func (w *WriteValue) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var nid NodeID
	n, err := nid.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	attr, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	idxRange, err := decodeStringField(c)
	if err != nil {
		return c.pos, err
	}
	var val DataValue
	n, err = val.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*w = WriteValue{NodeID: &nid, AttributeID: AttributeID(attr), IndexRange: idxRange, Value: val}
	return c.pos, nil
}

// WriteRequest stores new values for a set of node attributes (Part 4,
// 5.10.4).
type WriteRequest struct {
	RequestHeader RequestHeader
	NodesToWrite  []WriteValue
}

func (r *WriteRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.NodesToWrite == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.NodesToWrite)))
	for i := range r.NodesToWrite {
		wb, err := r.NodesToWrite[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(wb)
	}
	return b.Bytes(), nil
}

func (r *WriteRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var nodes []WriteValue
	if !isNull {
		nodes = make([]WriteValue, length)
		for i := range nodes {
			n, err := nodes[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = WriteRequest{RequestHeader: hdr, NodesToWrite: nodes}
	return c.pos, nil
}

// WriteResponse returns the per-node result of a WriteRequest, in the same
// order (Part 4, 5.10.4).
type WriteResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *WriteResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Results == nil {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(r.Results)))
		for _, s := range r.Results {
			b.writeUint32(uint32(s))
		}
	}
	b.writeInt32(-1) // diagnostic infos
	return b.Bytes(), nil
}

func (r *WriteResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
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
	var results []StatusCode
	if !isNull {
		results = make([]StatusCode, length)
		for i := range results {
			v, err := c.readUint32()
			if err != nil {
				return c.pos, err
			}
			results[i] = StatusCode(v)
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = WriteResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}
