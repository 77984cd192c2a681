// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/vwopcua/opcua/server/config"
	"github.com/vwopcua/opcua/ua"
)

// DataSource supplies the current value of a monitored attribute. The
// external collaborator boundary between this engine and an address
// space; concrete node managers live outside this package.
type DataSource interface {
	Read(nodeID *ua.NodeID, attributeID ua.AttributeID) (*ua.DataValue, ua.StatusCode)
}

// PublishResult is what a successful Publish call delivers: one
// subscription's next notification, plus the acknowledgement outcomes for
// the acks the caller sent along with the request.
type PublishResult struct {
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	Notification             ua.NotificationMessage
	AckResults                []ua.StatusCode
}

type pendingPublish struct {
	result chan publishOutcome
}

type publishOutcome struct {
	res PublishResult
	err error
}

// Engine owns every live Subscription and the per-owner pool of
// outstanding Publish requests ("publish credits") waiting to be matched
// with a notification, so a session can keep several Publish requests in
// flight without stalling the flow of notifications on one round trip.
type Engine struct {
	limits config.Limits
	source DataSource

	mu         sync.Mutex
	nextSubID  uint32
	nextItemID uint32
	subs       map[uint32]*Subscription
	pending    map[string][]*pendingPublish // owner -> waiting Publish slots, oldest first
}

// NewEngine creates an Engine bound to source for sampling and enforcing
// limits for admission and revision decisions.
func NewEngine(limits config.Limits, source DataSource) *Engine {
	return &Engine{
		limits:  limits,
		source:  source,
		subs:    make(map[uint32]*Subscription),
		pending: make(map[string][]*pendingPublish),
	}
}

// CreateSubscription allocates a new Subscription for owner, returning the
// revised (clamped) timing parameters alongside it.
func (e *Engine) CreateSubscription(req *ua.CreateSubscriptionRequest, owner string, now time.Time) (sub *Subscription, revisedInterval time.Duration, revisedKeepAlive, revisedLifetime uint32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.limits.MaxSubscriptionsPerSession > 0 {
		count := 0
		for _, s := range e.subs {
			if s.Owner == owner {
				count++
			}
		}
		if count >= e.limits.MaxSubscriptionsPerSession {
			return nil, 0, 0, 0, ua.StatusBadTooManySubscriptions
		}
	}

	revisedKeepAlive = e.limits.ClampKeepAliveCount(req.RequestedMaxKeepAliveCount)
	revisedLifetime = e.limits.ClampLifetimeCount(req.RequestedLifetimeCount, revisedKeepAlive)
	revisedInterval = e.limits.ClampPublishingInterval(time.Duration(req.RequestedPublishingInterval * float64(time.Millisecond)))

	maxNotif := req.MaxNotificationsPerPublish
	if e.limits.MaxNotificationsPerPublish > 0 && (maxNotif == 0 || maxNotif > e.limits.MaxNotificationsPerPublish) {
		maxNotif = e.limits.MaxNotificationsPerPublish
	}

	e.nextSubID++
	sub = newSubscription(e.nextSubID, owner, revisedInterval, revisedKeepAlive, revisedLifetime, maxNotif, req.Priority, req.PublishingEnabled, e.limits.MaxQueuedNotifications, now)
	e.subs[sub.ID] = sub
	return sub, revisedInterval, revisedKeepAlive, revisedLifetime, nil
}

// DeleteSubscriptions removes the named subscriptions owned by owner,
// returning a per-id status.
func (e *Engine) DeleteSubscriptions(owner string, ids []uint32) []ua.StatusCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]ua.StatusCode, len(ids))
	for i, id := range ids {
		sub, ok := e.subs[id]
		if !ok || sub.Owner != owner {
			results[i] = ua.StatusBadSubscriptionIDInvalid
			continue
		}
		delete(e.subs, id)
		results[i] = ua.StatusOK
	}
	return results
}

func (e *Engine) ownedSubscription(owner string, id uint32) (*Subscription, ua.StatusCode) {
	e.mu.Lock()
	sub, ok := e.subs[id]
	e.mu.Unlock()
	if !ok || sub.Owner != owner {
		return nil, ua.StatusBadSubscriptionIDInvalid
	}
	return sub, ua.StatusOK
}

// CreateMonitoredItems creates a batch of monitored items under an existing
// subscription owned by owner.
func (e *Engine) CreateMonitoredItems(owner string, subscriptionID uint32, items []ua.MonitoredItemCreateRequest, now time.Time) ([]ua.MonitoredItemCreateResult, error) {
	sub, status := e.ownedSubscription(owner, subscriptionID)
	if status != ua.StatusOK {
		return nil, status
	}
	if e.limits.MaxMonitoredItemsPerSubscription > 0 && sub.monitoredItemCount()+len(items) > e.limits.MaxMonitoredItemsPerSubscription {
		return nil, ua.StatusBadTooManyMonitoredItems
	}

	results := make([]ua.MonitoredItemCreateResult, len(items))
	for i, req := range items {
		if req.ItemToMonitor.NodeID == nil {
			results[i] = ua.MonitoredItemCreateResult{StatusCode: ua.StatusBadNodeIDInvalid}
			continue
		}
		if decodeDataChangeFilter(req.RequestedParameters.Filter) != nil && req.ItemToMonitor.AttributeID != ua.AttributeIDValue {
			results[i] = ua.MonitoredItemCreateResult{StatusCode: ua.StatusBadFilterNotAllowed}
			continue
		}
		if _, rs := e.source.Read(req.ItemToMonitor.NodeID, req.ItemToMonitor.AttributeID); rs.IsBad() {
			results[i] = ua.MonitoredItemCreateResult{StatusCode: rs}
			continue
		}

		id := e.allocItemID()
		interval := e.limits.ClampSamplingInterval(time.Duration(req.RequestedParameters.SamplingInterval * float64(time.Millisecond)))
		queueSize := req.RequestedParameters.QueueSize
		if e.limits.MaxMonitoredItemQueueSize > 0 && queueSize > e.limits.MaxMonitoredItemQueueSize {
			queueSize = e.limits.MaxMonitoredItemQueueSize
		}

		item := newMonitoredItem(id, subscriptionID, req, interval, queueSize, now)
		sub.addMonitoredItem(item)
		results[i] = ua.MonitoredItemCreateResult{
			StatusCode:              ua.StatusOK,
			MonitoredItemID:         id,
			RevisedSamplingInterval: float64(interval / time.Millisecond),
			RevisedQueueSize:        clampQueueSize(queueSize),
		}
	}
	return results, nil
}

// ModifyMonitoredItems revises the sampling parameters of existing
// monitored items under a subscription owned by owner.
func (e *Engine) ModifyMonitoredItems(owner string, subscriptionID uint32, items []ua.MonitoredItemModifyRequest) ([]ua.MonitoredItemModifyResult, error) {
	sub, status := e.ownedSubscription(owner, subscriptionID)
	if status != ua.StatusOK {
		return nil, status
	}

	results := make([]ua.MonitoredItemModifyResult, len(items))
	for i, req := range items {
		item, ok := sub.monitoredItem(req.MonitoredItemID)
		if !ok {
			results[i] = ua.MonitoredItemModifyResult{StatusCode: ua.StatusBadMonitoredItemIDInvalid}
			continue
		}
		interval := e.limits.ClampSamplingInterval(time.Duration(req.RequestedParameters.SamplingInterval * float64(time.Millisecond)))
		queueSize := req.RequestedParameters.QueueSize
		if e.limits.MaxMonitoredItemQueueSize > 0 && queueSize > e.limits.MaxMonitoredItemQueueSize {
			queueSize = e.limits.MaxMonitoredItemQueueSize
		}
		item.modify(interval, queueSize, req.RequestedParameters.DiscardOldest, req.RequestedParameters.Filter)
		results[i] = ua.MonitoredItemModifyResult{
			StatusCode:              ua.StatusOK,
			RevisedSamplingInterval: float64(interval / time.Millisecond),
			RevisedQueueSize:        clampQueueSize(queueSize),
		}
	}
	return results, nil
}

// SetMonitoringMode changes the MonitoringMode of a batch of monitored
// items under a subscription owned by owner.
func (e *Engine) SetMonitoringMode(owner string, subscriptionID uint32, mode ua.MonitoringMode, ids []uint32) ([]ua.StatusCode, error) {
	if mode != ua.MonitoringModeDisabled && mode != ua.MonitoringModeSampling && mode != ua.MonitoringModeReporting {
		return nil, ua.StatusBadMonitoringModeInvalid
	}
	sub, status := e.ownedSubscription(owner, subscriptionID)
	if status != ua.StatusOK {
		return nil, status
	}
	results := make([]ua.StatusCode, len(ids))
	for i, id := range ids {
		item, ok := sub.monitoredItem(id)
		if !ok {
			results[i] = ua.StatusBadMonitoredItemIDInvalid
			continue
		}
		item.setMode(mode)
		results[i] = ua.StatusOK
	}
	return results, nil
}

// DeleteMonitoredItems deletes a batch of monitored items under a
// subscription owned by owner.
func (e *Engine) DeleteMonitoredItems(owner string, subscriptionID uint32, ids []uint32) ([]ua.StatusCode, error) {
	sub, status := e.ownedSubscription(owner, subscriptionID)
	if status != ua.StatusOK {
		return nil, status
	}
	results := make([]ua.StatusCode, len(ids))
	for i, id := range ids {
		if _, ok := sub.monitoredItem(id); !ok {
			results[i] = ua.StatusBadMonitoredItemIDInvalid
			continue
		}
		sub.removeMonitoredItem(id)
		results[i] = ua.StatusOK
	}
	return results, nil
}

// TransferSubscriptions reassigns ownership of the named subscriptions to
// newOwner, typically after the owning session is re-established over a
// new secure channel (Part 4, 5.13.7).
func (e *Engine) TransferSubscriptions(newOwner string, ids []uint32, sendInitialValues bool) []ua.TransferResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]ua.TransferResult, len(ids))
	for i, id := range ids {
		sub, ok := e.subs[id]
		if !ok {
			results[i] = ua.TransferResult{StatusCode: ua.StatusBadSubscriptionIDInvalid}
			continue
		}
		sub.Owner = newOwner
		results[i] = ua.TransferResult{StatusCode: ua.StatusGoodSubscriptionTransferred, AvailableSequenceNumbers: sub.availableSequenceNumbers()}
	}
	return results
}

// Republish resends a previously sent notification still held in a
// subscription's retransmission queue (Part 4, 5.13.6).
func (e *Engine) Republish(owner string, subscriptionID, seq uint32) (*ua.NotificationMessage, error) {
	sub, status := e.ownedSubscription(owner, subscriptionID)
	if status != ua.StatusOK {
		return nil, status
	}
	msg, ok := sub.findRetransmission(seq)
	if !ok {
		return nil, ua.StatusBadMessageNotAvailable
	}
	return &msg, nil
}

// Publish consumes one publish credit for owner: it acknowledges the given
// sequence numbers against owner's subscriptions, then either returns
// immediately with the next ready notification or blocks until Tick
// produces one or ctx is cancelled. When nothing is ready and owner already
// has MaxPendingPublishRequests calls waiting, it fails at once with
// BadTooManyPublishRequests.
func (e *Engine) Publish(ctx context.Context, owner string, acks []ua.SubscriptionAcknowledgement) (*PublishResult, error) {
	e.mu.Lock()
	ackResults := make([]ua.StatusCode, len(acks))
	for i, a := range acks {
		sub, ok := e.subs[a.SubscriptionID]
		switch {
		case !ok || sub.Owner != owner:
			ackResults[i] = ua.StatusBadSubscriptionIDInvalid
		case sub.acknowledge(a.SequenceNumber):
			ackResults[i] = ua.StatusOK
		default:
			ackResults[i] = ua.StatusBadSequenceNumberInvalid
		}
	}

	if res, ok := e.popReadyLocked(owner); ok {
		res.AckResults = ackResults
		e.mu.Unlock()
		return res, nil
	}

	max := e.limits.MaxPendingPublishRequests
	if max > 0 && len(e.pending[owner]) >= max {
		e.mu.Unlock()
		return nil, ua.StatusBadTooManyPublishRequests
	}
	p := &pendingPublish{result: make(chan publishOutcome, 1)}
	e.pending[owner] = append(e.pending[owner], p)
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		e.removePending(owner, p)
		return nil, ctx.Err()
	case out := <-p.result:
		if out.err != nil {
			return nil, out.err
		}
		out.res.AckResults = ackResults
		return &out.res, nil
	}
}

func (e *Engine) removePending(owner string, target *pendingPublish) {
	e.mu.Lock()
	defer e.mu.Unlock()
	slice := e.pending[owner]
	for i, p := range slice {
		if p == target {
			e.pending[owner] = append(slice[:i], slice[i+1:]...)
			return
		}
	}
}

// popReadyLocked pops the oldest ready notification from one of owner's
// subscriptions. Caller holds e.mu.
func (e *Engine) popReadyLocked(owner string) (*PublishResult, bool) {
	for _, sub := range e.subs {
		if sub.Owner != owner {
			continue
		}
		msg, ok := sub.popReady()
		if !ok {
			continue
		}
		return &PublishResult{
			SubscriptionID:           sub.ID,
			AvailableSequenceNumbers: sub.availableSequenceNumbers(),
			MoreNotifications:        sub.hasReady(),
			Notification:             msg,
		}, true
	}
	return nil, false
}

func (e *Engine) allocItemID() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextItemID++
	return e.nextItemID
}

// Tick advances every subscription by one sampling step: it reads the
// current value of every Reporting monitored item, assembles a
// NotificationMessage for whichever subscriptions have data or have hit
// their keep-alive count, and immediately hands it to a waiting Publish
// call if one is parked for that subscription's owner.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	subs := make([]*Subscription, 0, len(e.subs))
	for _, sub := range e.subs {
		subs = append(subs, sub)
	}
	e.mu.Unlock()

	for _, sub := range subs {
		if !sub.due(now) {
			continue
		}

		sub.mu.Lock()
		publishing := sub.publishingEnabled
		sub.mu.Unlock()

		var notifications []ua.MonitoredItemNotification
		for _, item := range sub.snapshotItems() {
			if item.Mode() != ua.MonitoringModeReporting {
				continue
			}
			dv, rs := e.source.Read(item.Item.NodeID, item.Item.AttributeID)
			if rs.IsBad() {
				dv = &ua.DataValue{Status: rs}
			}
			if item.sample(now, dv) && publishing {
				notifications = append(notifications, item.drain()...)
			}
		}

		sendKeepAlive, expired := sub.advanceKeepAlive(len(notifications) > 0)

		switch {
		case len(notifications) > 0:
			changeMsg := ua.NotificationMessage{
				SequenceNumber: sub.nextSeq(),
				PublishTime:    now.UnixNano(),
			}
			notifEO, _ := (&ua.DataChangeNotification{MonitoredItems: notifications}).Encode()
			changeMsg.NotificationData = []*ua.ExtensionObject{notifEO}
			sub.pushRetransmission(changeMsg.SequenceNumber, changeMsg)
			sub.pushReady(changeMsg)
			e.dispatchReady(sub)

		case expired:
			statusEO, _ := (&ua.StatusChangeNotification{Status: ua.StatusBadTimeout}).Encode()
			closeMsg := ua.NotificationMessage{
				PublishTime:      now.UnixNano(),
				NotificationData: []*ua.ExtensionObject{statusEO},
			}
			sub.pushReady(closeMsg)
			e.dispatchReady(sub)
			e.mu.Lock()
			delete(e.subs, sub.ID)
			e.mu.Unlock()

		case sendKeepAlive:
			sub.pushReady(ua.NotificationMessage{SequenceNumber: sub.nextSeq(), PublishTime: now.UnixNano()})
			e.dispatchReady(sub)
		}
	}
}

// dispatchReady hands sub's oldest ready notification to a parked Publish
// call for its owner, if any is waiting. If none is waiting the
// notification stays queued for the next Publish call to pop.
func (e *Engine) dispatchReady(sub *Subscription) {
	e.mu.Lock()
	slice := e.pending[sub.Owner]
	if len(slice) == 0 {
		e.mu.Unlock()
		return
	}
	msg, ok := sub.popReady()
	if !ok {
		e.mu.Unlock()
		return
	}
	p := slice[0]
	e.pending[sub.Owner] = slice[1:]
	res := PublishResult{
		SubscriptionID:           sub.ID,
		AvailableSequenceNumbers: sub.availableSequenceNumbers(),
		MoreNotifications:        sub.hasReady(),
		Notification:             msg,
	}
	e.mu.Unlock()
	p.result <- publishOutcome{res: res}
}

// Count returns the number of live subscriptions.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
