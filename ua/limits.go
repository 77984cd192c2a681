// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// DecodingLimits bounds how much a Decoder will trust an untrusted peer to
// ask it to allocate.
type DecodingLimits struct {
	MaxArrayLength     int
	MaxStringLength    int
	MaxByteStringLength int
	MaxNestingDepth    int
	MaxMessageSize     int
}

// DefaultDecodingLimits returns conservative limits suitable for a server
// exposed to untrusted clients.
func DefaultDecodingLimits() DecodingLimits {
	return DecodingLimits{
		MaxArrayLength:      65536,
		MaxStringLength:     131072,
		MaxByteStringLength: 1048576,
		MaxNestingDepth:     100,
		MaxMessageSize:      4 * 1024 * 1024,
	}
}
