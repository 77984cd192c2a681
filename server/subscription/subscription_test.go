// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vwopcua/opcua/ua"
)

func TestAdvanceKeepAliveResetsOnNotification(t *testing.T) {
	sub := newSubscription(1, "owner", time.Millisecond, 3, 9, 10, 0, true, 5, time.Unix(0, 0))

	sendKeepAlive, expired := sub.advanceKeepAlive(true)
	assert.False(t, sendKeepAlive)
	assert.False(t, expired)
	assert.Equal(t, StateNormal, sub.State())
}

func TestAdvanceKeepAliveFiresAfterMaxCount(t *testing.T) {
	sub := newSubscription(1, "owner", time.Millisecond, 2, 9, 10, 0, true, 5, time.Unix(0, 0))

	sendKeepAlive, expired := sub.advanceKeepAlive(false)
	assert.False(t, sendKeepAlive)
	assert.False(t, expired)
	assert.Equal(t, StateLate, sub.State())

	sendKeepAlive, expired = sub.advanceKeepAlive(false)
	assert.True(t, sendKeepAlive)
	assert.False(t, expired)
	assert.Equal(t, StateKeepAlive, sub.State())
}

func TestAdvanceKeepAliveExpiresAtLifetimeCount(t *testing.T) {
	sub := newSubscription(1, "owner", time.Millisecond, 100, 2, 10, 0, true, 5, time.Unix(0, 0))

	_, expired := sub.advanceKeepAlive(false)
	assert.False(t, expired)
	_, expired = sub.advanceKeepAlive(false)
	assert.True(t, expired)
	assert.Equal(t, StateClosed, sub.State())
}

func TestRetransmissionQueueIsBoundedFIFO(t *testing.T) {
	sub := newSubscription(1, "owner", time.Millisecond, 3, 9, 10, 0, true, 2, time.Unix(0, 0))

	sub.pushRetransmission(1, ua.NotificationMessage{SequenceNumber: 1})
	sub.pushRetransmission(2, ua.NotificationMessage{SequenceNumber: 2})
	sub.pushRetransmission(3, ua.NotificationMessage{SequenceNumber: 3})

	assert.Equal(t, []uint32{2, 3}, sub.availableSequenceNumbers())
	_, ok := sub.findRetransmission(1)
	assert.False(t, ok, "oldest entry should have been evicted")
}

func TestAcknowledgeRemovesFromRetransmissionQueue(t *testing.T) {
	sub := newSubscription(1, "owner", time.Millisecond, 3, 9, 10, 0, true, 5, time.Unix(0, 0))
	sub.pushRetransmission(1, ua.NotificationMessage{SequenceNumber: 1})

	assert.True(t, sub.acknowledge(1))
	assert.False(t, sub.acknowledge(1), "acknowledging twice should fail the second time")
	assert.Empty(t, sub.availableSequenceNumbers())
}

func TestMonitoredItemSamplingRespectsInterval(t *testing.T) {
	req := ua.MonitoredItemCreateRequest{
		ItemToMonitor:  ua.ReadValueID{NodeID: ua.NewStringNodeID(1, "x"), AttributeID: ua.AttributeIDValue},
		MonitoringMode: ua.MonitoringModeReporting,
		RequestedParameters: ua.MonitoringParameters{
			ClientHandle: 1,
			QueueSize:    10,
		},
	}
	now := time.Unix(0, 0)
	item := newMonitoredItem(1, 1, req, 10*time.Millisecond, 10, now)

	assert.True(t, item.sample(now, &ua.DataValue{Status: ua.StatusOK}), "first sample is always reported")
	assert.False(t, item.sample(now.Add(time.Millisecond), &ua.DataValue{Status: ua.StatusBadTimeout}), "too soon for the next sample, even though the status changed")
	assert.True(t, item.sample(now.Add(11*time.Millisecond), &ua.DataValue{Status: ua.StatusBadTimeout}), "status change is reported once the interval has elapsed")
}

func TestMonitoredItemQueueDiscardsOldestWhenFull(t *testing.T) {
	req := ua.MonitoredItemCreateRequest{
		ItemToMonitor: ua.ReadValueID{NodeID: ua.NewStringNodeID(1, "x"), AttributeID: ua.AttributeIDValue},
		RequestedParameters: ua.MonitoringParameters{
			ClientHandle:  1,
			QueueSize:     2,
			DiscardOldest: true,
		},
		MonitoringMode: ua.MonitoringModeReporting,
	}
	now := time.Unix(0, 0)
	item := newMonitoredItem(1, 1, req, 0, 2, now)

	for i, handle := range []uint32{10, 20, 30} {
		_ = handle
		dv := &ua.DataValue{Status: ua.StatusCode(i)}
		item.sample(now.Add(time.Duration(i)*time.Millisecond), dv)
	}

	queued := item.drain()
	assert.Len(t, queued, 2, "queue size caps at 2 with the oldest entry discarded")
}
