// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "time"

const (
	dataValueValueFlag             byte = 0x01
	dataValueStatusFlag            byte = 0x02
	dataValueSourceTimestampFlag    byte = 0x04
	dataValueServerTimestampFlag    byte = 0x08
	dataValueSourcePicosecondsFlag  byte = 0x10
	dataValueServerPicosecondsFlag  byte = 0x20
)

// DataValue carries an attribute value together with its quality and
// timestamps (Part 6, 5.2.2.17). Fields absent from the wire encoding take
// their zero value.
type DataValue struct {
	Value             *Variant
	Status            StatusCode
	SourceTimestamp   time.Time
	SourcePicoseconds uint16
	ServerTimestamp   time.Time
	ServerPicoseconds uint16
}

// Encode implements the binary DataValue encoding.
func (d *DataValue) Encode() ([]byte, error) {
	var b buffer
	var mask byte
	if d.Value != nil {
		mask |= dataValueValueFlag
	}
	if d.Status != StatusOK {
		mask |= dataValueStatusFlag
	}
	if !d.SourceTimestamp.IsZero() {
		mask |= dataValueSourceTimestampFlag
	}
	if !d.ServerTimestamp.IsZero() {
		mask |= dataValueServerTimestampFlag
	}
	if d.SourcePicoseconds != 0 {
		mask |= dataValueSourcePicosecondsFlag
	}
	if d.ServerPicoseconds != 0 {
		mask |= dataValueServerPicosecondsFlag
	}
	b.writeUint8(mask)
	if mask&dataValueValueFlag != 0 {
		vb, err := d.Value.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(vb)
	}
	if mask&dataValueStatusFlag != 0 {
		b.writeUint32(uint32(d.Status))
	}
	if mask&dataValueSourceTimestampFlag != 0 {
		b.writeInt64(EncodeDateTime(d.SourceTimestamp))
	}
	if mask&dataValueSourcePicosecondsFlag != 0 {
		b.writeUint16(d.SourcePicoseconds)
	}
	if mask&dataValueServerTimestampFlag != 0 {
		b.writeInt64(EncodeDateTime(d.ServerTimestamp))
	}
	if mask&dataValueServerPicosecondsFlag != 0 {
		b.writeUint16(d.ServerPicoseconds)
	}
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary DataValue decoding.
func (d *DataValue) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	mask, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}
	var out DataValue
	if mask&dataValueValueFlag != 0 {
		var v Variant
		n, err := v.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
		out.Value = &v
	}
	if mask&dataValueStatusFlag != 0 {
		v, err := c.readUint32()
		if err != nil {
			return c.pos, err
		}
		out.Status = StatusCode(v)
	}
	if mask&dataValueSourceTimestampFlag != 0 {
		v, err := c.readInt64()
		if err != nil {
			return c.pos, err
		}
		out.SourceTimestamp = DecodeDateTime(v)
	}
	if mask&dataValueSourcePicosecondsFlag != 0 {
		v, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		out.SourcePicoseconds = v
	}
	if mask&dataValueServerTimestampFlag != 0 {
		v, err := c.readInt64()
		if err != nil {
			return c.pos, err
		}
		out.ServerTimestamp = DecodeDateTime(v)
	}
	if mask&dataValueServerPicosecondsFlag != 0 {
		v, err := c.readUint16()
		if err != nil {
			return c.pos, err
		}
		out.ServerPicoseconds = v
	}
	*d = out
	return c.pos, nil
}
