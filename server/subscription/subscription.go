// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package subscription implements the server-side subscription and
// monitored-item state machines (Part 4, 5.13-5.14): sampling, queueing,
// the bounded retransmission queue, and the publish/republish exchange
// that delivers notifications back to a session.
package subscription

import (
	"sync"
	"time"

	"github.com/vwopcua/opcua/ua"
)

// State is a Subscription's position in its publishing state machine
// (Part 4, 5.13.1.2).
type State int

const (
	StateCreating State = iota
	StateNormal
	StateLate
	StateKeepAlive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateLate:
		return "Late"
	case StateKeepAlive:
		return "KeepAlive"
	case StateClosed:
		return "Closed"
	default:
		return "Creating"
	}
}

// Subscription holds one client's publishing context: its timing
// parameters, the monitored items reporting into it, and the bounded
// retransmission queue of notifications sent but not yet acknowledged.
type Subscription struct {
	ID       uint32
	Owner    string // session authentication token, String() form
	Priority byte

	mu                 sync.Mutex
	state              State
	publishingEnabled  bool
	publishingInterval time.Duration
	maxKeepAliveCount  uint32
	maxLifetimeCount   uint32
	maxNotifications   uint32
	maxRetransmission  int

	keepAliveCounter uint32
	lifetimeCounter  uint32
	nextPublishTime  time.Time

	nextSequenceNumber uint32
	retransmission     []retransmitted
	ready              []ua.NotificationMessage
	maxReady           int

	monitoredItems map[uint32]*MonitoredItem
}

type retransmitted struct {
	seq uint32
	msg ua.NotificationMessage
}

func newSubscription(id uint32, owner string, publishingInterval time.Duration, maxKeepAlive, maxLifetime, maxNotifications uint32, priority byte, publishingEnabled bool, maxRetransmission int, now time.Time) *Subscription {
	return &Subscription{
		ID:                 id,
		Owner:              owner,
		Priority:           priority,
		state:              StateCreating,
		publishingEnabled:  publishingEnabled,
		publishingInterval: publishingInterval,
		maxKeepAliveCount:  maxKeepAlive,
		maxLifetimeCount:   maxLifetime,
		maxNotifications:   maxNotifications,
		maxRetransmission:  maxRetransmission,
		maxReady:           maxRetransmission,
		lifetimeCounter:    maxLifetime,
		nextPublishTime:    now.Add(publishingInterval),
		monitoredItems:     make(map[uint32]*MonitoredItem),
		nextSequenceNumber: 1,
	}
}

// State returns the subscription's current publishing state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetPublishingEnabled toggles whether sampled notifications are delivered.
func (s *Subscription) SetPublishingEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishingEnabled = enabled
}

// addMonitoredItem registers item under this subscription. Caller holds no
// external lock; Subscription has its own.
func (s *Subscription) addMonitoredItem(item *MonitoredItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitoredItems[item.ID] = item
}

func (s *Subscription) removeMonitoredItem(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.monitoredItems, id)
}

func (s *Subscription) monitoredItem(id uint32) (*MonitoredItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.monitoredItems[id]
	return item, ok
}

func (s *Subscription) monitoredItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.monitoredItems)
}

func (s *Subscription) snapshotItems() []*MonitoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]*MonitoredItem, 0, len(s.monitoredItems))
	for _, item := range s.monitoredItems {
		items = append(items, item)
	}
	return items
}

// pushRetransmission records msg as sent, evicting the oldest entry once
// maxRetransmission is exceeded (Part 4, 5.13.1.2: "a FIFO queue bounded by
// configuration").
func (s *Subscription) pushRetransmission(seq uint32, msg ua.NotificationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retransmission = append(s.retransmission, retransmitted{seq: seq, msg: msg})
	if s.maxRetransmission > 0 && len(s.retransmission) > s.maxRetransmission {
		s.retransmission = s.retransmission[len(s.retransmission)-s.maxRetransmission:]
	}
}

// acknowledge removes seq from the retransmission queue, reporting whether
// it was found there.
func (s *Subscription) acknowledge(seq uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.retransmission {
		if r.seq == seq {
			s.retransmission = append(s.retransmission[:i], s.retransmission[i+1:]...)
			return true
		}
	}
	return false
}

// findRetransmission looks up a previously sent notification by sequence
// number, for Republish.
func (s *Subscription) findRetransmission(seq uint32) (ua.NotificationMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.retransmission {
		if r.seq == seq {
			return r.msg, true
		}
	}
	return ua.NotificationMessage{}, false
}

// availableSequenceNumbers lists the sequence numbers still held in the
// retransmission queue.
func (s *Subscription) availableSequenceNumbers() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, len(s.retransmission))
	for i, r := range s.retransmission {
		out[i] = r.seq
	}
	return out
}

// pushReady queues msg for delivery to the next Publish call, evicting the
// oldest ready entry once maxReady is exceeded.
func (s *Subscription) pushReady(msg ua.NotificationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = append(s.ready, msg)
	if s.maxReady > 0 && len(s.ready) > s.maxReady {
		s.ready = s.ready[len(s.ready)-s.maxReady:]
	}
}

// popReady removes and returns the oldest queued notification, if any.
func (s *Subscription) popReady() (ua.NotificationMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return ua.NotificationMessage{}, false
	}
	msg := s.ready[0]
	s.ready = s.ready[1:]
	return msg, true
}

// hasReady reports whether a notification is still queued for delivery.
func (s *Subscription) hasReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready) > 0
}

func (s *Subscription) nextSeq() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.nextSequenceNumber
	s.nextSequenceNumber++
	return seq
}

// due reports whether now has reached the subscription's next publishing
// tick, and if so advances nextPublishTime by one interval.
func (s *Subscription) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.nextPublishTime) {
		return false
	}
	s.nextPublishTime = s.nextPublishTime.Add(s.publishingInterval)
	if s.nextPublishTime.Before(now) {
		s.nextPublishTime = now.Add(s.publishingInterval)
	}
	return true
}

// advanceKeepAlive runs the keep-alive/lifetime counters one tick per
// Part 4, 5.13.1.2: resets on any notification sent, decrements otherwise,
// and reports whether the subscription has expired.
func (s *Subscription) advanceKeepAlive(hasNotifications bool) (sendKeepAlive bool, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hasNotifications && s.publishingEnabled {
		s.keepAliveCounter = 0
		s.lifetimeCounter = s.maxLifetimeCount
		s.state = StateNormal
		return false, false
	}

	s.lifetimeCounter--
	if s.lifetimeCounter == 0 {
		s.state = StateClosed
		return false, true
	}

	s.keepAliveCounter++
	if s.keepAliveCounter >= s.maxKeepAliveCount {
		s.keepAliveCounter = 0
		s.state = StateKeepAlive
		return true, false
	}
	s.state = StateLate
	return false, false
}
