// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package subscription

import (
	"encoding/binary"
	"math"

	"github.com/vwopcua/opcua/ua"
)

// DataChangeTrigger selects which parts of a DataValue must change for a
// sample to be reported (Part 4, 7.17.2).
type DataChangeTrigger uint32

const (
	DataChangeTriggerStatus              DataChangeTrigger = 0
	DataChangeTriggerStatusValue         DataChangeTrigger = 1
	DataChangeTriggerStatusValueTimestamp DataChangeTrigger = 2
)

// DeadbandType selects how DeadbandValue is interpreted.
type DeadbandType uint32

const (
	DeadbandNone DeadbandType = 0
	// DeadbandAbsolute is the only deadband kind this engine evaluates.
	// DeadbandPercent requires an EURange lookup against the address
	// space (get_eu_range in the grounding source) that no DataSource in
	// this package exposes; a percent filter is accepted but treated as
	// DeadbandNone.
	DeadbandAbsolute DeadbandType = 1
	DeadbandPercent  DeadbandType = 2
)

// DataChangeFilter is the decoded body of a DataChangeFilter extension
// object (Part 4, 7.17.2): binary-encoded as two uint32s followed by a
// float64, with no nested extensible fields, so it is decoded directly
// rather than through the ua package's ExtensionObject TypeLoader registry.
type DataChangeFilter struct {
	Trigger       DataChangeTrigger
	DeadbandType  DeadbandType
	DeadbandValue float64
}

func decodeDataChangeFilter(eo *ua.ExtensionObject) *DataChangeFilter {
	if eo == nil || len(eo.Body) < 16 {
		return nil
	}
	body := eo.Body
	return &DataChangeFilter{
		Trigger:       DataChangeTrigger(binary.LittleEndian.Uint32(body[0:4])),
		DeadbandType:  DeadbandType(binary.LittleEndian.Uint32(body[4:8])),
		DeadbandValue: math.Float64frombits(binary.LittleEndian.Uint64(body[8:16])),
	}
}

// shouldReport decides whether new should be queued given old (nil for the
// first sample), applying the configured trigger and deadband. A nil
// filter defaults to DataChangeTriggerStatusValue with no deadband, the
// same default a client gets by leaving MonitoringParameters.Filter null.
func (f *DataChangeFilter) shouldReport(old, new *ua.DataValue) bool {
	if old == nil {
		return true
	}
	if old.Status != new.Status {
		return true
	}

	trigger := DataChangeTriggerStatusValue
	if f != nil {
		trigger = f.Trigger
	}
	if trigger == DataChangeTriggerStatus {
		return false
	}

	if !valuesEqual(old.Value, new.Value, f) {
		return true
	}
	if trigger == DataChangeTriggerStatusValueTimestamp {
		return !old.SourceTimestamp.Equal(new.SourceTimestamp)
	}
	return false
}

func valuesEqual(a, b *ua.Variant, f *DataChangeFilter) bool {
	if a == nil || b == nil {
		return a == b
	}
	if f != nil && f.DeadbandType == DeadbandAbsolute {
		af, aok := asFloat(a.Value)
		bf, bok := asFloat(b.Value)
		if aok && bok {
			return math.Abs(af-bf) <= f.DeadbandValue
		}
	}
	return a.Value == b.Value
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
