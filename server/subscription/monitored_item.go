// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package subscription

import (
	"sync"
	"time"

	"github.com/vwopcua/opcua/ua"
)

// MonitoredItem samples one node attribute on SamplingInterval, queueing
// notifications for its subscription to deliver on the next Publish.
type MonitoredItem struct {
	ID             uint32
	SubscriptionID uint32
	ClientHandle   uint32
	Item           ua.ReadValueID

	mu               sync.Mutex
	mode             ua.MonitoringMode
	samplingInterval time.Duration
	queueSize        uint32
	discardOldest    bool
	filter           *DataChangeFilter
	lastValue        *ua.DataValue
	queue            []ua.MonitoredItemNotification
	nextSampleTime   time.Time
}

func newMonitoredItem(id, subscriptionID uint32, req ua.MonitoredItemCreateRequest, samplingInterval time.Duration, queueSize uint32, now time.Time) *MonitoredItem {
	queueSize = clampQueueSize(queueSize)
	return &MonitoredItem{
		ID:               id,
		SubscriptionID:   subscriptionID,
		ClientHandle:     req.RequestedParameters.ClientHandle,
		Item:             req.ItemToMonitor,
		mode:             req.MonitoringMode,
		samplingInterval: samplingInterval,
		queueSize:        queueSize,
		discardOldest:    req.RequestedParameters.DiscardOldest,
		filter:           decodeDataChangeFilter(req.RequestedParameters.Filter),
		nextSampleTime:   now,
	}
}

func clampQueueSize(size uint32) uint32 {
	if size == 0 {
		return 1
	}
	return size
}

// Mode returns the item's current monitoring mode.
func (m *MonitoredItem) Mode() ua.MonitoringMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// setMode changes the monitoring mode, clearing the queue when disabled
// per Part 4, 5.12.4: "the queue is emptied when monitoring is disabled".
func (m *MonitoredItem) setMode(mode ua.MonitoringMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	if mode == ua.MonitoringModeDisabled {
		m.queue = nil
	}
}

// modify applies revised sampling parameters, as ModifyMonitoredItems does.
func (m *MonitoredItem) modify(samplingInterval time.Duration, queueSize uint32, discardOldest bool, filter *ua.ExtensionObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samplingInterval = samplingInterval
	m.queueSize = clampQueueSize(queueSize)
	m.discardOldest = discardOldest
	m.filter = decodeDataChangeFilter(filter)
	if uint32(len(m.queue)) > m.queueSize {
		m.queue = m.queue[uint32(len(m.queue))-m.queueSize:]
	}
}

// sample reads dv against the sampling interval and data-change filter,
// queueing a notification when due and changed. Returns true if it queued
// one (used by tests and by the engine to decide whether the subscription
// has data to report).
func (m *MonitoredItem) sample(now time.Time, dv *ua.DataValue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ua.MonitoringModeDisabled {
		return false
	}
	if now.Before(m.nextSampleTime) {
		return false
	}
	m.nextSampleTime = now.Add(m.samplingInterval)

	changed := m.filter.shouldReport(m.lastValue, dv)
	m.lastValue = dv
	if !changed || m.mode != ua.MonitoringModeReporting {
		return false
	}

	notif := ua.MonitoredItemNotification{ClientHandle: m.ClientHandle, Value: *dv}
	if uint32(len(m.queue)) >= m.queueSize {
		if m.discardOldest {
			m.queue = append(m.queue[1:], notif)
		} else {
			m.queue[len(m.queue)-1] = notif
		}
		return true
	}
	m.queue = append(m.queue, notif)
	return true
}

// drain removes and returns every queued notification.
func (m *MonitoredItem) drain() []ua.MonitoredItemNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	out := m.queue
	m.queue = nil
	return out
}
