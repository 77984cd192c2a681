// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
)

// cyclicSession answers Browse for a fixed adjacency list, letting tests
// drive an address space that references back on itself, and counts how
// many times each node was actually sent on the wire.
type cyclicSession struct {
	edges map[string][]*ua.NodeID

	mu    sync.Mutex
	calls map[string]int
}

func newCyclicSession(edges map[string][]*ua.NodeID) *cyclicSession {
	return &cyclicSession{edges: edges, calls: make(map[string]int)}
}

func (s *cyclicSession) Browse(_ context.Context, req *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]ua.BrowseResult, len(req.NodesToBrowse))
	for i, d := range req.NodesToBrowse {
		key := d.NodeID.String()
		s.calls[key]++
		var refs []ua.ReferenceDescription
		for _, target := range s.edges[key] {
			refs = append(refs, ua.ReferenceDescription{NodeID: &ua.ExpandedNodeID{NodeID: target}})
		}
		results[i] = ua.BrowseResult{StatusCode: ua.StatusOK, References: refs}
	}
	return &ua.BrowseResponse{Results: results}, nil
}

func (s *cyclicSession) BrowseNext(context.Context, *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	return &ua.BrowseNextResponse{}, nil
}

func (s *cyclicSession) callCount(id *ua.NodeID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id.String()]
}

func TestBrowserVisitsEachNodeDirectionAtMostOnceInACyclicGraph(t *testing.T) {
	a := ua.NewStringNodeID(1, "a")
	b := ua.NewStringNodeID(1, "b")
	c := ua.NewStringNodeID(1, "c")

	// a -> b -> c -> a, a three-node cycle back to the root.
	sess := newCyclicSession(map[string][]*ua.NodeID{
		a.String(): {b},
		b.String(): {c},
		c.String(): {a},
	})

	policy := NewHierarchicalFilter()
	roots := []ua.BrowseDescription{{
		NodeID:          a,
		Direction:       policy.Direction,
		ReferenceTypeID: policy.ReferenceTypeID,
		IncludeSubtypes: policy.IncludeSubtypes,
		ResultMask:      policy.ResultMask,
		NodeClassMask:   policy.NodeClassMask,
	}}
	br := New(sess, roots, policy)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var items []*BrowseResultItem
	for {
		item, ok := br.Next(ctx)
		if !ok {
			break
		}
		items = append(items, item)
	}
	require.NoError(t, br.Err())
	require.NoError(t, ctx.Err())

	// Each of the three nodes is browsed exactly once, never revisited once
	// the cycle loops back to a.
	assert.Len(t, items, 3)
	assert.Equal(t, 1, sess.callCount(a))
	assert.Equal(t, 1, sess.callCount(b))
	assert.Equal(t, 1, sess.callCount(c))
}
