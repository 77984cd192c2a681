// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/vwopcua/opcua/debug"
	"github.com/vwopcua/opcua/ua"
)

// publishErrorRetryLimit caps how often PublishLoop re-sends a Publish
// request after an unexpected error, so a downed server or network doesn't
// turn the loop into a busy-wait.
var publishErrorRetryLimit = rate.Limit(5)

// Subscription is a client-side handle on a subscription created on the
// server. Notifications arrive on Channel until Unsubscribe closes it.
type Subscription struct {
	SubscriptionID            uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
	Channel                   chan PublishNotificationData

	stopPublishLoop chan<- struct{}
}

// SubscriptionParameters are the client's requested subscription envelope,
// subject to revision by the server (Part 4, 5.13.2).
type SubscriptionParameters struct {
	Interval                   time.Duration
	LifetimeCount              uint32
	MaxKeepAliveCount          uint32
	MaxNotificationsPerPublish uint32
	Priority                   uint8
	ChannelBufferSize          int
}

// NewDefaultSubscriptionParameters returns parameters suitable for a
// moderate-rate data subscription.
func NewDefaultSubscriptionParameters() *SubscriptionParameters {
	return &SubscriptionParameters{
		MaxNotificationsPerPublish: 10000,
		LifetimeCount:              10000,
		MaxKeepAliveCount:          3000,
		Interval:                   100 * time.Millisecond,
		Priority:                   0,
		ChannelBufferSize:          16,
	}
}

// Subscribe creates a subscription with the given parameters and starts one
// Publish loop to service it. Call Unsubscribe to tear both down.
func (c *Client) Subscribe(params *SubscriptionParameters) (*Subscription, error) {
	req := &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: float64(params.Interval / time.Millisecond),
		RequestedLifetimeCount:      params.LifetimeCount,
		RequestedMaxKeepAliveCount:  params.MaxKeepAliveCount,
		PublishingEnabled:           true,
		MaxNotificationsPerPublish:  params.MaxNotificationsPerPublish,
		Priority:                    params.Priority,
	}

	res, err := c.CreateSubscription(req)
	if err != nil {
		return nil, err
	}
	if res.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, res.ResponseHeader.ServiceResult
	}

	sub := &Subscription{
		SubscriptionID:            res.SubscriptionID,
		RevisedPublishingInterval: res.RevisedPublishingInterval,
		RevisedLifetimeCount:      res.RevisedLifetimeCount,
		RevisedMaxKeepAliveCount:  res.RevisedMaxKeepAliveCount,
		Channel:                   make(chan PublishNotificationData, params.ChannelBufferSize),
		stopPublishLoop:           c.PublishLoop(),
	}

	c.subsMu.Lock()
	c.subscriptions[sub.SubscriptionID] = sub
	c.subsMu.Unlock()

	return sub, nil
}

// CreateSubscription sends the CreateSubscription request directly, without
// registering a Publish loop. See Subscribe for the common case.
func (c *Client) CreateSubscription(req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	var res *ua.CreateSubscriptionResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// Unsubscribe deletes sub from the server and stops the Publish loop that
// Subscribe started for it.
func (c *Client) Unsubscribe(sub *Subscription) error {
	c.subsMu.Lock()
	if registered, ok := c.subscriptions[sub.SubscriptionID]; ok {
		close(registered.stopPublishLoop)
		delete(c.subscriptions, sub.SubscriptionID)
	}
	c.subsMu.Unlock()

	res, err := c.DeleteSubscriptions([]uint32{sub.SubscriptionID})
	if err != nil {
		return err
	}
	if res.ResponseHeader.ServiceResult != ua.StatusOK {
		return res.ResponseHeader.ServiceResult
	}
	return nil
}

// DeleteSubscriptions deletes the named subscriptions (Part 4, 5.13.8).
func (c *Client) DeleteSubscriptions(subIDs []uint32) (*ua.DeleteSubscriptionsResponse, error) {
	req := &ua.DeleteSubscriptionsRequest{SubscriptionIDs: subIDs}
	var res *ua.DeleteSubscriptionsResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// CreateMonitoredItems adds items to an existing subscription (Part 4,
// 5.12.2).
func (c *Client) CreateMonitoredItems(subID uint32, ts ua.TimestampsToReturn, items ...ua.MonitoredItemCreateRequest) (*ua.CreateMonitoredItemsResponse, error) {
	if subID == 0 {
		return nil, ua.StatusBadSubscriptionIDInvalid
	}
	req := &ua.CreateMonitoredItemsRequest{
		SubscriptionID:     subID,
		TimestampsToReturn: ts,
		ItemsToCreate:      items,
	}
	var res *ua.CreateMonitoredItemsResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// DeleteMonitoredItems removes items from a subscription (Part 4, 5.12.5).
func (c *Client) DeleteMonitoredItems(subID uint32, monitoredItemIDs ...uint32) (*ua.DeleteMonitoredItemsResponse, error) {
	req := &ua.DeleteMonitoredItemsRequest{
		SubscriptionID:   subID,
		MonitoredItemIDs: monitoredItemIDs,
	}
	var res *ua.DeleteMonitoredItemsResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// PublishNotificationData is delivered on a Subscription's Channel: either a
// decoded notification body or the error that prevented one.
type PublishNotificationData struct {
	SubscriptionID uint32
	Error          error
	Value          interface{}
}

// Publish sends a single Publish request carrying the given
// acknowledgements (Part 4, 5.13.5).
func (c *Client) Publish(acks []ua.SubscriptionAcknowledgement) (*ua.PublishResponse, error) {
	req := &ua.PublishRequest{SubscriptionAcknowledgements: acks}
	var res *ua.PublishResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// PublishLoop runs Publish in a loop, acknowledging each response's
// available sequence numbers in the next request and routing decoded
// notifications to the Subscription they belong to. It returns a channel
// that stops the loop when closed.
func (c *Client) PublishLoop() chan<- struct{} {
	quit := make(chan struct{})
	go func() {
		errLimiter := rate.NewLimiter(publishErrorRetryLimit, 1)
		acks := make([]ua.SubscriptionAcknowledgement, 0)
		for {
			select {
			case <-quit:
				return
			default:
			}

			res, err := c.Publish(acks)
			if err != nil {
				switch err {
				case ua.StatusBadTimeout, ua.StatusBadNoSubscription:
					// BadTimeout: no notification was ready before the
					// server's own timeout hint elapsed, ask again.
					// BadNoSubscription: all subscriptions were probably
					// just deleted; this loop is about to be stopped.
					continue
				}
				data := PublishNotificationData{Error: err}
				c.subsMu.Lock()
				for _, sub := range c.subscriptions {
					go func(ch chan PublishNotificationData) { ch <- data }(sub.Channel)
				}
				c.subsMu.Unlock()

				select {
				case <-quit:
					return
				case <-time.After(errLimiter.Reserve().Delay()):
				}
				continue
			}

			acks = make([]ua.SubscriptionAcknowledgement, 0, len(res.AvailableSequenceNumbers))
			for _, seq := range res.AvailableSequenceNumbers {
				acks = append(acks, ua.SubscriptionAcknowledgement{
					SubscriptionID: res.SubscriptionID,
					SequenceNumber: seq,
				})
			}

			c.notifySubscription(res)
		}
	}()
	return quit
}

func (c *Client) notifySubscription(res *ua.PublishResponse) {
	c.subsMu.Lock()
	sub, ok := c.subscriptions[res.SubscriptionID]
	c.subsMu.Unlock()
	if !ok {
		debug.Printf("opcua: publish response for unknown subscription %d", res.SubscriptionID)
		return
	}

	for _, status := range res.Results {
		if status.IsBad() {
			sub.Channel <- PublishNotificationData{SubscriptionID: res.SubscriptionID, Error: status}
			return
		}
	}

	// Part 4, 7.21 NotificationMessage
	for _, data := range res.NotificationMessage.NotificationData {
		if data == nil || data.Value == nil {
			sub.Channel <- PublishNotificationData{
				SubscriptionID: res.SubscriptionID,
				Error:          fmt.Errorf("opcua: missing notification data"),
			}
			continue
		}

		// Part 4, 7.20.2/7.20.4 NotificationData parameters this stack
		// decodes eagerly; EventNotificationList is not yet implemented.
		switch data.Value.(type) {
		case *ua.DataChangeNotification, *ua.StatusChangeNotification:
			sub.Channel <- PublishNotificationData{SubscriptionID: res.SubscriptionID, Value: data.Value}
		default:
			sub.Channel <- PublishNotificationData{
				SubscriptionID: res.SubscriptionID,
				Error:          fmt.Errorf("opcua: unknown notification data type %T", data.Value),
			}
		}
	}
}
