// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampKeepAliveCountClampsToRange(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, l.MinKeepAliveCount, l.ClampKeepAliveCount(0))
	assert.Equal(t, l.MaxKeepAliveCount, l.ClampKeepAliveCount(l.MaxKeepAliveCount+1))
	assert.Equal(t, uint32(100), l.ClampKeepAliveCount(100))
}

func TestClampLifetimeCountEnforcesTripleKeepAliveFloor(t *testing.T) {
	l := DefaultLimits()
	revisedKeepAlive := uint32(10)

	// A requested lifetime within [Min,Max] but below 3x keep-alive gets
	// raised to the 3x floor.
	got := l.ClampLifetimeCount(l.MinLifetimeCount, revisedKeepAlive)
	assert.Equal(t, 3*revisedKeepAlive, got)
}

func TestClampLifetimeCountRespectsOuterBounds(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, l.MinLifetimeCount, l.ClampLifetimeCount(0, 0))
	assert.Equal(t, l.MaxLifetimeCount, l.ClampLifetimeCount(l.MaxLifetimeCount+1, 0))
}

func TestClampPublishingIntervalClampsToRange(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, l.MinPublishingInterval, l.ClampPublishingInterval(0))
	assert.Equal(t, l.MaxPublishingInterval, l.ClampPublishingInterval(l.MaxPublishingInterval+time.Hour))
	assert.Equal(t, 100*time.Millisecond, l.ClampPublishingInterval(100*time.Millisecond))
}

func TestClampSamplingIntervalRaisesBelowMinimum(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, l.MinSamplingInterval, l.ClampSamplingInterval(0))
	assert.Equal(t, 200*time.Millisecond, l.ClampSamplingInterval(200*time.Millisecond))
}

func TestClampU32TreatsZeroMaxAsUnlimited(t *testing.T) {
	l := Limits{}
	assert.Equal(t, uint32(9999), l.ClampKeepAliveCount(9999))
}
