// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
)

func newTestClientForNotify() *Client {
	return &Client{subscriptions: make(map[uint32]*Subscription)}
}

func TestNotifySubscriptionRoutesDataChangeNotification(t *testing.T) {
	c := newTestClientForNotify()
	sub := &Subscription{SubscriptionID: 1, Channel: make(chan PublishNotificationData, 1)}
	c.subscriptions[sub.SubscriptionID] = sub

	variant, err := ua.NewVariant(int32(7))
	require.NoError(t, err)
	dcn := &ua.DataChangeNotification{MonitoredItems: []ua.MonitoredItemNotification{
		{ClientHandle: 42, Value: ua.DataValue{Value: variant}},
	}}
	c.notifySubscription(&ua.PublishResponse{
		SubscriptionID: 1,
		NotificationMessage: ua.NotificationMessage{
			NotificationData: []*ua.ExtensionObject{{Value: dcn}},
		},
	})

	got := <-sub.Channel
	require.NoError(t, got.Error)
	assert.Same(t, dcn, got.Value)
}

func TestNotifySubscriptionReportsBadResult(t *testing.T) {
	c := newTestClientForNotify()
	sub := &Subscription{SubscriptionID: 1, Channel: make(chan PublishNotificationData, 1)}
	c.subscriptions[sub.SubscriptionID] = sub

	c.notifySubscription(&ua.PublishResponse{
		SubscriptionID: 1,
		Results:        []ua.StatusCode{ua.StatusBadSubscriptionIDInvalid},
	})

	got := <-sub.Channel
	assert.Equal(t, ua.StatusBadSubscriptionIDInvalid, got.Error)
}

func TestNotifySubscriptionIgnoresUnknownSubscription(t *testing.T) {
	c := newTestClientForNotify()
	// Should not panic or block when no Subscription is registered.
	c.notifySubscription(&ua.PublishResponse{SubscriptionID: 99})
}

func TestNotifySubscriptionReportsUnknownNotificationData(t *testing.T) {
	c := newTestClientForNotify()
	sub := &Subscription{SubscriptionID: 1, Channel: make(chan PublishNotificationData, 1)}
	c.subscriptions[sub.SubscriptionID] = sub

	c.notifySubscription(&ua.PublishResponse{
		SubscriptionID: 1,
		NotificationMessage: ua.NotificationMessage{
			NotificationData: []*ua.ExtensionObject{{Value: "not-a-notification"}},
		},
	})

	got := <-sub.Channel
	require.Error(t, got.Error)
}

func TestNewDefaultSubscriptionParameters(t *testing.T) {
	p := NewDefaultSubscriptionParameters()
	assert.Greater(t, p.LifetimeCount, p.MaxKeepAliveCount)
	assert.Positive(t, p.Interval)
}
