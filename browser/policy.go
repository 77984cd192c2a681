// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package browser implements a recursive node-hierarchy walk on top of the
// Browse and BrowseNext services: it turns the request/response/
// continuation-point dance of Part 4, 5.8 into a pull-based iterator, and
// releases any continuation points still open if the caller cancels early.
package browser

import (
	"github.com/vwopcua/opcua/id"
	"github.com/vwopcua/opcua/ua"
)

// BrowserConfig bounds how a Browser batches and paginates its requests.
type BrowserConfig struct {
	// MaxNodesPerRequest caps how many BrowseDescriptions are sent in a
	// single wire Browse/BrowseNext call. 0 means no cap.
	MaxNodesPerRequest int

	// MaxReferencesPerNode is RequestedMaxReferencesPerNode on the wire; 0
	// lets the server choose.
	MaxReferencesPerNode uint32

	// MaxConcurrentRequests bounds how many Browse/BrowseNext calls are
	// in flight at once.
	MaxConcurrentRequests int

	// MaxContinuationPointRetries is how many times a node is restarted
	// from scratch after the server reports BadContinuationPointInvalid
	// before giving up and surfacing the error.
	MaxContinuationPointRetries int
}

// DefaultBrowserConfig returns reasonable defaults: small batches, one
// request in flight, no automatic continuation-point retry.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		MaxNodesPerRequest:          100,
		MaxReferencesPerNode:        1000,
		MaxConcurrentRequests:       1,
		MaxContinuationPointRetries: 0,
	}
}

// RequestWithRetries is one node queued for browsing: the description to
// send, how many times it has already been restarted after an invalid
// continuation point, and its depth in the recursive walk.
type RequestWithRetries struct {
	Request ua.BrowseDescription
	Retries int
	Depth   int
}

// BrowseResultItem is the result of one Browse or BrowseNext wire call made
// on behalf of a single node.
type BrowseResultItem struct {
	Request RequestWithRetries

	References []ua.ReferenceDescription
	Status     ua.StatusCode

	// ContinuationPoint is the continuation point this call consumed, if
	// it was a BrowseNext call continuing an earlier page. It is the null
	// byte string for the first page of a node.
	ContinuationPoint ua.ByteString
}

// ParentID is the node this result was browsed from.
func (i *BrowseResultItem) ParentID() *ua.NodeID {
	return i.Request.Request.NodeID
}

// IsBrowseNext reports whether this page came from a BrowseNext call
// continuing a previous Browse, rather than the first page for its node.
func (i *BrowseResultItem) IsBrowseNext() bool {
	return len(i.ContinuationPoint.Value()) > 0
}

// Depth is this result's depth in the recursive walk. Depth 1 is a root
// node passed to New.
func (i *BrowseResultItem) Depth() int {
	return i.Request.Depth + 1
}

// BrowserPolicy decides, given the result of browsing one node, which
// further nodes (if any) to browse next.
type BrowserPolicy interface {
	Next(item *BrowseResultItem) []ua.BrowseDescription
}

// BrowserPolicyFunc adapts a plain function to a BrowserPolicy.
type BrowserPolicyFunc func(item *BrowseResultItem) []ua.BrowseDescription

func (f BrowserPolicyFunc) Next(item *BrowseResultItem) []ua.BrowseDescription {
	return f(item)
}

// NoneBrowserPolicy browses nothing beyond the root nodes passed to New.
type NoneBrowserPolicy struct{}

func (NoneBrowserPolicy) Next(*BrowseResultItem) []ua.BrowseDescription { return nil }

// BrowseFilter recursively follows one reference type (and, by default, its
// subtypes) from every reference returned so far, the common case of
// walking the hierarchical address space.
type BrowseFilter struct {
	Direction       ua.BrowseDirection
	IncludeSubtypes bool
	ResultMask      ua.BrowseResultMask
	NodeClassMask   ua.NodeClassMask
	ReferenceTypeID *ua.NodeID

	// MaxDepth bounds recursion; 0 means unbounded.
	MaxDepth int
}

// NewHierarchicalFilter returns a filter that follows HierarchicalReferences
// forward, the default for walking the Objects/Types address space.
func NewHierarchicalFilter() *BrowseFilter {
	return &BrowseFilter{
		Direction:       ua.BrowseDirectionForward,
		ReferenceTypeID: ua.NewNumericNodeID(0, uint32(id.HierarchicalReferences)),
		IncludeSubtypes: true,
		ResultMask:      ua.BrowseResultMaskAll,
		NodeClassMask:   ua.NodeClassMaskAll,
	}
}

// NewFilter returns a filter for the given reference type.
func NewFilter(referenceTypeID *ua.NodeID, includeSubtypes bool) *BrowseFilter {
	return &BrowseFilter{
		Direction:       ua.BrowseDirectionForward,
		ReferenceTypeID: referenceTypeID,
		IncludeSubtypes: includeSubtypes,
		ResultMask:      ua.BrowseResultMaskAll,
		NodeClassMask:   ua.NodeClassMaskAll,
	}
}

func (f *BrowseFilter) describe(nodeID *ua.NodeID) ua.BrowseDescription {
	return ua.BrowseDescription{
		NodeID:          nodeID,
		Direction:       f.Direction,
		ReferenceTypeID: f.ReferenceTypeID,
		IncludeSubtypes: f.IncludeSubtypes,
		NodeClassMask:   f.NodeClassMask,
		ResultMask:      f.ResultMask,
	}
}

// Next implements BrowserPolicy.
func (f *BrowseFilter) Next(item *BrowseResultItem) []ua.BrowseDescription {
	if f.MaxDepth > 0 && item.Depth() >= f.MaxDepth {
		return nil
	}
	var out []ua.BrowseDescription
	for _, r := range item.References {
		if r.NodeID == nil || r.NodeID.ServerIndex != 0 {
			continue // a reference into another server's address space
		}
		out = append(out, f.describe(r.NodeID.NodeID))
	}
	return out
}
