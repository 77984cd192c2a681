// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "time"

// opcEpoch is 1601-01-01T00:00:00Z, the OPC-UA DateTime epoch (Part 6,
// 5.2.2.5). DateTime values are 100ns ticks since this instant.
var opcEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// EncodeDateTime converts a time.Time to the OPC-UA wire representation.
func EncodeDateTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix()-opcEpoch.Unix())*10000000 + int64(t.Nanosecond())/100
}

// DecodeDateTime converts the OPC-UA wire representation to a time.Time.
func DecodeDateTime(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	return time.Unix(opcEpoch.Unix()+ticks/10000000, (ticks%10000000)*100).UTC()
}
