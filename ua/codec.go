// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/vwopcua/opcua/errors"
)

// buffer is a small write cursor used while building up the wire
// representation of a value. encoding/binary.Write is avoided for the hot
// primitives so that encoding a large Variant array does not allocate one
// reflect-driven call per element.
type buffer struct {
	bytes.Buffer
}

func (b *buffer) writeUint8(v uint8)   { b.WriteByte(v) }
func (b *buffer) writeInt8(v int8)     { b.WriteByte(byte(v)) }
func (b *buffer) writeBool(v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

func (b *buffer) writeUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func (b *buffer) writeUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (b *buffer) writeUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}

func (b *buffer) writeInt16(v int16)  { b.writeUint16(uint16(v)) }
func (b *buffer) writeInt32(v int32)  { b.writeUint32(uint32(v)) }
func (b *buffer) writeInt64(v int64)  { b.writeUint64(uint64(v)) }

func (b *buffer) writeFloat32(v float32) { b.writeUint32(math.Float32bits(v)) }
func (b *buffer) writeFloat64(v float64) { b.writeUint64(math.Float64bits(v)) }

// cursor is a read cursor over a byte slice shared by all the Decode
// methods in this package. It never copies the underlying slice.
type cursor struct {
	b   []byte
	pos int
	ctx *Context
}

func newCursor(b []byte, ctx *Context) *cursor {
	return &cursor{b: b, ctx: ctx}
}

func (c *cursor) remaining() int { return len(c.b) - c.pos }

func (c *cursor) need(n int) error {
	if n < 0 || c.remaining() < n {
		return StatusBadDecodingError
	}
	return nil
}

func (c *cursor) readUint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.b[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readInt8() (int8, error) {
	v, err := c.readUint8()
	return int8(v), err
}

func (c *cursor) readBool() (bool, error) {
	v, err := c.readUint8()
	return v != 0, err
}

func (c *cursor) readUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.b[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) readUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.b[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) readUint64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.b[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) readInt16() (int16, error) {
	v, err := c.readUint16()
	return int16(v), err
}

func (c *cursor) readInt32() (int32, error) {
	v, err := c.readUint32()
	return int32(v), err
}

func (c *cursor) readInt64() (int64, error) {
	v, err := c.readUint64()
	return int64(v), err
}

func (c *cursor) readFloat32() (float32, error) {
	v, err := c.readUint32()
	return math.Float32frombits(v), err
}

func (c *cursor) readFloat64() (float64, error) {
	v, err := c.readUint64()
	return math.Float64frombits(v), err
}

// readBytes reads exactly n raw bytes without copying.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.b[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// readLength reads the length-prefix used by strings, byte strings and
// arrays: an int32 where -1 (and, permissively, any negative value) denotes
// null.
func (c *cursor) readLength(cap int) (length int, isNull bool, err error) {
	n, err := c.readInt32()
	if err != nil {
		return 0, false, err
	}
	if n < 0 {
		return 0, true, nil
	}
	if cap > 0 && int(n) > cap {
		return 0, false, StatusBadEncodingLimitsExceeded
	}
	return int(n), false, nil
}

var errShortWrite = errors.New("ua: short write")
