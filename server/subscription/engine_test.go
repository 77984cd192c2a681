// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/server/config"
	"github.com/vwopcua/opcua/ua"
)

type fakeSource struct {
	mu     sync.Mutex
	values map[string]*ua.DataValue
}

func newFakeSource() *fakeSource { return &fakeSource{values: make(map[string]*ua.DataValue)} }

func (f *fakeSource) set(nodeID *ua.NodeID, dv *ua.DataValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[nodeID.String()] = dv
}

func (f *fakeSource) Read(nodeID *ua.NodeID, _ ua.AttributeID) (*ua.DataValue, ua.StatusCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dv, ok := f.values[nodeID.String()]
	if !ok {
		return nil, ua.StatusBadNodeIDUnknown
	}
	return dv, ua.StatusOK
}

func variant(t *testing.T, v interface{}) *ua.Variant {
	t.Helper()
	vr, err := ua.NewVariant(v)
	require.NoError(t, err)
	return vr
}

func TestCreateSubscriptionRevisesParameters(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = 10 * time.Millisecond
	e := NewEngine(limits, newFakeSource())

	req := &ua.CreateSubscriptionRequest{RequestedPublishingInterval: 1, PublishingEnabled: true}
	sub, interval, keepAlive, lifetime, err := e.CreateSubscription(req, "owner1", time.Unix(0, 0))

	require.NoError(t, err)
	assert.EqualValues(t, 1, sub.ID)
	assert.Equal(t, limits.MinPublishingInterval, interval)
	assert.Equal(t, limits.MinKeepAliveCount, keepAlive)
	assert.GreaterOrEqual(t, lifetime, 3*keepAlive)
}

func TestCreateMonitoredItemsRejectsUnknownNode(t *testing.T) {
	limits := config.DefaultLimits()
	e := NewEngine(limits, newFakeSource())
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	require.NoError(t, err)

	req := ua.NewMonitoredItemCreateRequestWithDefaults(ua.NewStringNodeID(1, "missing"), ua.AttributeIDValue, 1)
	results, err := e.CreateMonitoredItems("owner1", sub.ID, []ua.MonitoredItemCreateRequest{*req}, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ua.StatusBadNodeIDUnknown, results[0].StatusCode)
}

func TestCreateMonitoredItemsRejectsWrongOwner(t *testing.T) {
	limits := config.DefaultLimits()
	e := NewEngine(limits, newFakeSource())
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	require.NoError(t, err)

	_, err = e.CreateMonitoredItems("owner2", sub.ID, nil, time.Unix(0, 0))
	assert.Equal(t, ua.StatusBadSubscriptionIDInvalid, err)
}

func TestPublishDeliversDataChangeNotification(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = time.Millisecond
	limits.MinSamplingInterval = time.Millisecond

	src := newFakeSource()
	node := ua.NewStringNodeID(1, "temperature")
	src.set(node, &ua.DataValue{Value: variant(t, 21.5)})

	e := NewEngine(limits, src)
	now := time.Unix(0, 0)
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 1,
		RequestedMaxKeepAliveCount:  3,
		RequestedLifetimeCount:      9,
		PublishingEnabled:           true,
	}, "owner1", now)
	require.NoError(t, err)

	createReq := ua.NewMonitoredItemCreateRequestWithDefaults(node, ua.AttributeIDValue, 42)
	results, err := e.CreateMonitoredItems("owner1", sub.ID, []ua.MonitoredItemCreateRequest{*createReq}, now)
	require.NoError(t, err)
	require.Equal(t, ua.StatusOK, results[0].StatusCode)

	type outcome struct {
		res *PublishResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.Publish(context.Background(), "owner1", nil)
		done <- outcome{res, err}
	}()

	// Give the Publish call time to park as a pending credit before the
	// tick produces a notification for it to consume.
	time.Sleep(20 * time.Millisecond)
	e.Tick(now.Add(2 * time.Millisecond))

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, sub.ID, out.res.SubscriptionID)
		require.Len(t, out.res.Notification.NotificationData, 1)
		assert.Len(t, out.res.AvailableSequenceNumbers, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish result")
	}
}

func TestPublishReturnsImmediatelyWhenAlreadyReady(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = time.Millisecond
	limits.MinSamplingInterval = time.Millisecond

	src := newFakeSource()
	node := ua.NewStringNodeID(1, "pressure")
	src.set(node, &ua.DataValue{Value: variant(t, 1.0)})

	e := NewEngine(limits, src)
	now := time.Unix(0, 0)
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 1,
		RequestedMaxKeepAliveCount:  3,
		RequestedLifetimeCount:      9,
		PublishingEnabled:           true,
	}, "owner1", now)
	require.NoError(t, err)

	createReq := ua.NewMonitoredItemCreateRequestWithDefaults(node, ua.AttributeIDValue, 7)
	_, err = e.CreateMonitoredItems("owner1", sub.ID, []ua.MonitoredItemCreateRequest{*createReq}, now)
	require.NoError(t, err)

	e.Tick(now.Add(2 * time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := e.Publish(ctx, "owner1", nil)
	require.NoError(t, err)
	require.Len(t, res.Notification.NotificationData, 1)
}

func TestPublishAcknowledgesSequenceNumbers(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = time.Millisecond
	limits.MinSamplingInterval = time.Millisecond

	src := newFakeSource()
	node := ua.NewStringNodeID(1, "flow")
	src.set(node, &ua.DataValue{Value: variant(t, 1.0)})

	e := NewEngine(limits, src)
	now := time.Unix(0, 0)
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 1,
		RequestedMaxKeepAliveCount:  3,
		RequestedLifetimeCount:      9,
		PublishingEnabled:           true,
	}, "owner1", now)
	require.NoError(t, err)
	createReq := ua.NewMonitoredItemCreateRequestWithDefaults(node, ua.AttributeIDValue, 1)
	_, err = e.CreateMonitoredItems("owner1", sub.ID, []ua.MonitoredItemCreateRequest{*createReq}, now)
	require.NoError(t, err)

	e.Tick(now.Add(2 * time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, err := e.Publish(ctx, "owner1", nil)
	require.NoError(t, err)
	seq := first.Notification.SequenceNumber

	// Ack the sequence number in a subsequent publish that parks, since no
	// new data is ready yet, and confirm it was accepted.
	src.set(node, &ua.DataValue{Value: variant(t, 2.0)})
	done := make(chan *PublishResult, 1)
	go func() {
		res, _ := e.Publish(context.Background(), "owner1", []ua.SubscriptionAcknowledgement{{SubscriptionID: sub.ID, SequenceNumber: seq}})
		done <- res
	}()
	time.Sleep(20 * time.Millisecond)
	e.Tick(now.Add(4 * time.Millisecond))

	select {
	case res := <-done:
		require.NotNil(t, res)
		assert.ElementsMatch(t, []ua.StatusCode{ua.StatusOK}, res.AckResults)
		assert.NotContains(t, res.AvailableSequenceNumbers, seq)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish result")
	}
}

func TestRepublishReturnsRetainedNotification(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = time.Millisecond
	limits.MinSamplingInterval = time.Millisecond

	src := newFakeSource()
	node := ua.NewStringNodeID(1, "level")
	src.set(node, &ua.DataValue{Value: variant(t, 3.0)})

	e := NewEngine(limits, src)
	now := time.Unix(0, 0)
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 1,
		RequestedMaxKeepAliveCount:  3,
		RequestedLifetimeCount:      9,
		PublishingEnabled:           true,
	}, "owner1", now)
	require.NoError(t, err)
	createReq := ua.NewMonitoredItemCreateRequestWithDefaults(node, ua.AttributeIDValue, 1)
	_, err = e.CreateMonitoredItems("owner1", sub.ID, []ua.MonitoredItemCreateRequest{*createReq}, now)
	require.NoError(t, err)

	e.Tick(now.Add(2 * time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := e.Publish(ctx, "owner1", nil)
	require.NoError(t, err)

	msg, err := e.Republish("owner1", sub.ID, res.Notification.SequenceNumber)
	require.NoError(t, err)
	assert.Equal(t, res.Notification.SequenceNumber, msg.SequenceNumber)

	_, err = e.Republish("owner1", sub.ID, res.Notification.SequenceNumber+100)
	assert.Equal(t, ua.StatusBadMessageNotAvailable, err)
}

func TestDeleteSubscriptionsEnforcesOwnership(t *testing.T) {
	limits := config.DefaultLimits()
	e := NewEngine(limits, newFakeSource())
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	require.NoError(t, err)

	results := e.DeleteSubscriptions("owner2", []uint32{sub.ID})
	assert.Equal(t, []ua.StatusCode{ua.StatusBadSubscriptionIDInvalid}, results)
	assert.Equal(t, 1, e.Count())

	results = e.DeleteSubscriptions("owner1", []uint32{sub.ID})
	assert.Equal(t, []ua.StatusCode{ua.StatusOK}, results)
	assert.Equal(t, 0, e.Count())
}

func TestCreateSubscriptionEnforcesPerOwnerCap(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxSubscriptionsPerSession = 1
	e := NewEngine(limits, newFakeSource())

	_, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	require.NoError(t, err)

	_, _, _, _, err = e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	assert.Equal(t, ua.StatusBadTooManySubscriptions, err)

	// A different owner is unaffected by owner1's cap.
	_, _, _, _, err = e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner2", time.Unix(0, 0))
	assert.NoError(t, err)
}

func TestTransferSubscriptionsReassignsOwner(t *testing.T) {
	limits := config.DefaultLimits()
	e := NewEngine(limits, newFakeSource())
	sub, _, _, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{PublishingEnabled: true}, "owner1", time.Unix(0, 0))
	require.NoError(t, err)

	results := e.TransferSubscriptions("owner2", []uint32{sub.ID}, false)
	require.Len(t, results, 1)
	assert.Equal(t, ua.StatusGoodSubscriptionTransferred, results[0].StatusCode)
	assert.Equal(t, "owner2", sub.Owner)
}

func TestTickEmitsKeepAlivesWithSequentialSequenceNumbers(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MinPublishingInterval = time.Millisecond

	e := NewEngine(limits, newFakeSource())
	now := time.Unix(0, 0)
	sub, _, keepAlive, _, err := e.CreateSubscription(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 1,
		RequestedMaxKeepAliveCount:  3,
		RequestedLifetimeCount:      9,
		PublishingEnabled:           true,
	}, "owner1", now)
	require.NoError(t, err)
	require.EqualValues(t, 3, keepAlive)

	parkPublish := func() <-chan *PublishResult {
		done := make(chan *PublishResult, 1)
		go func() {
			res, _ := e.Publish(context.Background(), "owner1", nil)
			done <- res
		}()
		time.Sleep(20 * time.Millisecond)
		return done
	}
	tick3 := func() {
		for i := 0; i < 3; i++ {
			now = now.Add(time.Millisecond)
			e.Tick(now)
		}
	}

	first := parkPublish()
	tick3()
	select {
	case res := <-first:
		require.NotNil(t, res)
		assert.Equal(t, sub.ID, res.SubscriptionID)
		assert.Empty(t, res.Notification.NotificationData)
		assert.EqualValues(t, 1, res.Notification.SequenceNumber)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first keep-alive")
	}

	second := parkPublish()
	tick3()
	select {
	case res := <-second:
		require.NotNil(t, res)
		assert.EqualValues(t, 2, res.Notification.SequenceNumber)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second keep-alive")
	}
}
