// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// EncodeServiceMessage prefixes v's encoded body with the NodeID of its
// binary encoding, the form every MSG/OPN chunk body takes on the wire
// (Part 6, 5.2.10).
func EncodeServiceMessage(v ServiceEncoder) ([]byte, error) {
	typeID, err := ServiceTypeID(v)
	if err != nil {
		return nil, err
	}
	idb, err := NewFourByteNodeID(0, uint16(typeID)).Encode()
	if err != nil {
		return nil, err
	}
	body, err := v.Encode()
	if err != nil {
		return nil, err
	}
	return append(idb, body...), nil
}

// DecodeServiceMessage reads the leading NodeID from buf to find the
// service's binary encoding id, then decodes the remainder into a freshly
// allocated instance of the matching type.
func DecodeServiceMessage(buf []byte, ctx *Context) (ServiceDecoder, error) {
	var typeID NodeID
	n, err := typeID.DecodeWithContext(buf, ctx)
	if err != nil {
		return nil, err
	}
	return DecodeService(typeID.IntID(), buf[n:], ctx)
}
