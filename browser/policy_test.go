// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vwopcua/opcua/ua"
)

func itemAt(depth int, refs ...ua.ReferenceDescription) *BrowseResultItem {
	return &BrowseResultItem{
		Request:    RequestWithRetries{Depth: depth},
		References: refs,
	}
}

func TestNoneBrowserPolicyNeverRecurses(t *testing.T) {
	item := itemAt(0, ua.ReferenceDescription{NodeID: &ua.ExpandedNodeID{NodeID: ua.NewNumericNodeID(0, 1)}})
	assert.Nil(t, NoneBrowserPolicy{}.Next(item))
}

func TestBrowserPolicyFuncAdaptsPlainFunction(t *testing.T) {
	called := false
	f := BrowserPolicyFunc(func(item *BrowseResultItem) []ua.BrowseDescription {
		called = true
		return nil
	})
	f.Next(itemAt(0))
	assert.True(t, called)
}

func TestHierarchicalFilterFollowsLocalReferencesOnly(t *testing.T) {
	f := NewHierarchicalFilter()
	local := ua.ReferenceDescription{NodeID: &ua.ExpandedNodeID{NodeID: ua.NewNumericNodeID(1, 100)}}
	remote := ua.ReferenceDescription{NodeID: &ua.ExpandedNodeID{NodeID: ua.NewNumericNodeID(1, 200), ServerIndex: 1}}
	nilRef := ua.ReferenceDescription{}

	out := f.Next(itemAt(0, local, remote, nilRef))
	assert.Len(t, out, 1)
	assert.Equal(t, local.NodeID.NodeID, out[0].NodeID)
	assert.Equal(t, ua.BrowseDirectionForward, out[0].Direction)
}

func TestBrowseFilterStopsAtMaxDepth(t *testing.T) {
	f := NewFilter(ua.NewNumericNodeID(0, 1), true)
	f.MaxDepth = 2

	ref := ua.ReferenceDescription{NodeID: &ua.ExpandedNodeID{NodeID: ua.NewNumericNodeID(1, 1)}}
	assert.NotEmpty(t, f.Next(itemAt(0, ref)))
	assert.Nil(t, f.Next(itemAt(1, ref)))
}

func TestBrowseResultItemHelpers(t *testing.T) {
	item := &BrowseResultItem{
		Request:           RequestWithRetries{Request: ua.BrowseDescription{NodeID: ua.NewNumericNodeID(0, 85)}, Depth: 1},
		ContinuationPoint: ua.NewByteString([]byte{1}),
	}
	assert.Equal(t, ua.NewNumericNodeID(0, 85), item.ParentID())
	assert.True(t, item.IsBrowseNext())
	assert.Equal(t, 2, item.Depth())

	firstPage := &BrowseResultItem{ContinuationPoint: ua.NullByteString()}
	assert.False(t, firstPage.IsBrowseNext())
}
