// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package config holds the server-side operational limits that bound
// everything a connected client can ask for: decoding caps, session and
// subscription envelopes, per-service operation counts, and continuation
// point and publish-credit pool sizes.
package config

import "time"

// Limits is the full set of server-configurable caps. Every field maps to
// one row of the external-interfaces configuration table; nothing here
// affects wire layout, only admission and revision decisions.
type Limits struct {
	// Decoding caps, shared with ua.DecodingLimits at the codec boundary.
	MaxArrayLength      int
	MaxStringLength     int
	MaxByteStringLength int

	// Framing envelope, negotiated at Hello/Ack via min(client, server)
	// with 0 meaning unlimited.
	MaxMessageSize    uint32
	MaxChunkCount     uint32
	MaxChunkSize      uint32
	SendBufferSize    uint32
	ReceiveBufferSize uint32

	// Secure channel.
	ChannelLifetime time.Duration

	// Session lifecycle.
	SessionTimeout time.Duration
	MaxSessions    int

	// Subscription envelope.
	MaxSubscriptionsPerSession int
	MinPublishingInterval      time.Duration
	MaxPublishingInterval      time.Duration
	MinKeepAliveCount          uint32
	MaxKeepAliveCount          uint32
	MinLifetimeCount           uint32
	MaxLifetimeCount           uint32
	MaxNotificationsPerPublish uint32
	MaxQueuedNotifications     int

	// Per-subscription resource caps.
	MaxMonitoredItemsPerSubscription int
	MaxMonitoredItemQueueSize        uint32
	MinSamplingInterval              time.Duration

	// Per-request service limits. Zero means unlimited.
	MaxNodesPerRead                         int
	MaxNodesPerWrite                        int
	MaxNodesPerBrowse                       int
	MaxNodesPerMethodCall                   int
	MaxNodesPerRegisterNodes                int
	MaxNodesPerTranslateBrowsePathsToNodeIDs int
	MaxNodesPerHistoryReadData              int
	MaxNodesPerHistoryReadEvents            int
	MaxNodesPerHistoryUpdate                int
	MaxNodesPerNodeManagement               int
	MaxNodesPerReferencesManagement         int

	// Per-session continuation-point pools.
	MaxBrowseContinuationPoints int
	MaxHistoryContinuationPoints int
	MaxQueryContinuationPoints  int

	// Publish-credit sizing.
	MaxPendingPublishRequests       int
	MaxPublishRequestsPerSubscription int

	// Adjusts nonce/token validation around clock offset between peers.
	IgnoreClockSkew bool
}

// DefaultLimits returns conservative limits suitable for a server exposed
// to untrusted clients, matching the OPC Foundation's recommended defaults
// where one exists and otherwise picking a value generous enough not to
// reject a well-behaved client.
func DefaultLimits() Limits {
	return Limits{
		MaxArrayLength:      65536,
		MaxStringLength:     131072,
		MaxByteStringLength: 1048576,

		MaxMessageSize:    4 * 1024 * 1024,
		MaxChunkCount:     512,
		MaxChunkSize:      8192,
		SendBufferSize:    65536,
		ReceiveBufferSize: 65536,

		ChannelLifetime: 60 * time.Minute,

		SessionTimeout: 10 * time.Minute,
		MaxSessions:    100,

		MaxSubscriptionsPerSession: 100,
		MinPublishingInterval:      50 * time.Millisecond,
		MaxPublishingInterval:     24 * time.Hour,
		MinKeepAliveCount:         1,
		MaxKeepAliveCount:         10000,
		MinLifetimeCount:          3,
		MaxLifetimeCount:          100000,
		MaxNotificationsPerPublish: 1000,
		MaxQueuedNotifications:    100,

		MaxMonitoredItemsPerSubscription: 10000,
		MaxMonitoredItemQueueSize:        1000,
		MinSamplingInterval:              50 * time.Millisecond,

		MaxNodesPerRead:                          1000,
		MaxNodesPerWrite:                         1000,
		MaxNodesPerBrowse:                        1000,
		MaxNodesPerMethodCall:                    1000,
		MaxNodesPerRegisterNodes:                 1000,
		MaxNodesPerTranslateBrowsePathsToNodeIDs: 1000,
		MaxNodesPerHistoryReadData:               1000,
		MaxNodesPerHistoryReadEvents:             1000,
		MaxNodesPerHistoryUpdate:                 1000,
		MaxNodesPerNodeManagement:                1000,
		MaxNodesPerReferencesManagement:          1000,

		MaxBrowseContinuationPoints:  100,
		MaxHistoryContinuationPoints: 100,
		MaxQueryContinuationPoints:   100,

		MaxPendingPublishRequests:         100,
		MaxPublishRequestsPerSubscription: 20,

		IgnoreClockSkew: false,
	}
}

// ClampKeepAliveCount revises a client-requested keep-alive count into
// [MinKeepAliveCount, MaxKeepAliveCount].
func (l Limits) ClampKeepAliveCount(requested uint32) uint32 {
	return clampU32(requested, l.MinKeepAliveCount, l.MaxKeepAliveCount)
}

// ClampLifetimeCount revises a client-requested lifetime count, first into
// [MinLifetimeCount, MaxLifetimeCount] and then up to at least three times
// the (already revised) keep-alive count, per spec.
func (l Limits) ClampLifetimeCount(requested, revisedKeepAlive uint32) uint32 {
	v := clampU32(requested, l.MinLifetimeCount, l.MaxLifetimeCount)
	if min := 3 * revisedKeepAlive; v < min {
		v = min
	}
	return v
}

// ClampPublishingInterval revises a client-requested publishing interval
// into [MinPublishingInterval, MaxPublishingInterval].
func (l Limits) ClampPublishingInterval(requested time.Duration) time.Duration {
	if requested < l.MinPublishingInterval {
		return l.MinPublishingInterval
	}
	if requested > l.MaxPublishingInterval {
		return l.MaxPublishingInterval
	}
	return requested
}

// ClampSamplingInterval revises a client-requested sampling interval up to
// at least MinSamplingInterval.
func (l Limits) ClampSamplingInterval(requested time.Duration) time.Duration {
	if requested < l.MinSamplingInterval {
		return l.MinSamplingInterval
	}
	return requested
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
