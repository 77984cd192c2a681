// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package browser

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vwopcua/opcua/ua"
)

// Browser recursively discovers nodes starting from a set of root
// descriptions, driven one result at a time through Next. It does not spawn
// any goroutine until the first call to Next, and it does not browse a
// given node in a given direction more than once.
type Browser struct {
	session Session
	policy  BrowserPolicy
	config  BrowserConfig
	roots   []ua.BrowseDescription

	startOnce sync.Once
	results   chan *BrowseResultItem

	mu  sync.Mutex
	err error

	cpMu    sync.Mutex
	liveCPs map[string]ua.ByteString

	seenMu sync.Mutex
	seen   map[seenKey]bool
}

// seenKey identifies one (node, direction) pair already queued for
// browsing, so a cyclic reference graph cannot resend the same
// BrowseDescription forever.
type seenKey struct {
	nodeID    string
	direction ua.BrowseDirection
}

// New creates a Browser over roots using policy to discover further nodes
// from each result. Call Config to override BrowserConfig defaults before
// the first call to Next.
func New(session Session, roots []ua.BrowseDescription, policy BrowserPolicy) *Browser {
	if policy == nil {
		policy = NoneBrowserPolicy{}
	}
	return &Browser{
		session: session,
		policy:  policy,
		config:  DefaultBrowserConfig(),
		roots:   roots,
		liveCPs: make(map[string]ua.ByteString),
		seen:    make(map[seenKey]bool),
	}
}

// Config overrides the default BrowserConfig. It has no effect once Next
// has been called.
func (b *Browser) Config(cfg BrowserConfig) *Browser {
	b.config = cfg
	return b
}

// Next blocks until a result is available, the browse completes, or ctx is
// done. The returned bool is false once the walk is exhausted; call Err
// afterwards to check whether it stopped because of an error. The context
// passed on the first call governs the lifetime of the whole walk,
// including the cleanup that releases any continuation points left open if
// it is cancelled.
func (b *Browser) Next(ctx context.Context) (*BrowseResultItem, bool) {
	b.startOnce.Do(func() {
		b.results = make(chan *BrowseResultItem, 16)
		go b.run(ctx)
	})
	select {
	case item, ok := <-b.results:
		return item, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Err returns the first error encountered, if any, once Next has returned
// false.
func (b *Browser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Browser) run(ctx context.Context) {
	defer close(b.results)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.MaxConcurrentRequests)

	var dispatch func(batch []RequestWithRetries)
	dispatch = func(batch []RequestWithRetries) {
		for len(batch) > 0 {
			n := len(batch)
			if b.config.MaxNodesPerRequest > 0 && n > b.config.MaxNodesPerRequest {
				n = b.config.MaxNodesPerRequest
			}
			chunk := batch[:n]
			batch = batch[n:]
			g.Go(func() error {
				return b.browseChunk(gctx, chunk, dispatch)
			})
		}
	}

	dispatch(b.filterUnseen(b.roots))

	err := g.Wait()
	if err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
	}
	if err != nil || ctx.Err() != nil {
		b.releaseOutstanding()
	}
}

// browseChunk sends a fresh Browse for chunk and processes the results,
// following up with BrowseNext for any node whose references did not fit
// in one response and recursing into dispatch for any children the policy
// wants browsed next.
func (b *Browser) browseChunk(ctx context.Context, chunk []RequestWithRetries, dispatch func([]RequestWithRetries)) error {
	descs := make([]ua.BrowseDescription, len(chunk))
	for i, r := range chunk {
		descs[i] = r.Request
	}
	resp, err := b.session.Browse(ctx, &ua.BrowseRequest{
		RequestedMaxReferencesPerNode: b.config.MaxReferencesPerNode,
		NodesToBrowse:                 descs,
	})
	if err != nil {
		return err
	}
	return b.handleResults(ctx, chunk, resp.Results, nil, dispatch)
}

func (b *Browser) browseNextChunk(ctx context.Context, chunk []RequestWithRetries, cps []ua.ByteString, dispatch func([]RequestWithRetries)) error {
	resp, err := b.session.BrowseNext(ctx, &ua.BrowseNextRequest{ContinuationPoints: cps})
	if err != nil {
		return err
	}
	return b.handleResults(ctx, chunk, resp.Results, cps, dispatch)
}

// handleResults matches chunk (the requests just sent) against results (the
// BrowseResults that came back, same order), in three ways: a result can be
// a dead end (status not good, or continuation point exhausted), need a
// BrowseNext follow-up (non-empty ContinuationPoint), or need the whole
// node restarted (BadContinuationPointInvalid, within the retry budget).
func (b *Browser) handleResults(ctx context.Context, chunk []RequestWithRetries, results []ua.BrowseResult, consumedCPs []ua.ByteString, dispatch func([]RequestWithRetries)) error {
	var continuing []RequestWithRetries
	var cps []ua.ByteString
	var restart []RequestWithRetries

	for i, res := range results {
		req := chunk[i]
		var consumed ua.ByteString
		if consumedCPs != nil {
			consumed = consumedCPs[i]
		}

		if res.StatusCode == ua.StatusBadContinuationPointInvalid && req.Retries < b.config.MaxContinuationPointRetries {
			b.trackContinuationPoint(consumed, ua.NullByteString())
			restart = append(restart, RequestWithRetries{Request: req.Request, Retries: req.Retries + 1, Depth: req.Depth})
			continue
		}

		item := &BrowseResultItem{
			Request:           req,
			References:        res.References,
			Status:            res.StatusCode,
			ContinuationPoint: consumed,
		}
		b.trackContinuationPoint(consumed, res.ContinuationPoint)
		b.emit(ctx, item)

		if res.StatusCode.IsGood() {
			if children := b.policy.Next(item); len(children) > 0 {
				next := make([]RequestWithRetries, len(children))
				for j, c := range children {
					next[j] = RequestWithRetries{Request: c, Depth: item.Depth()}
				}
				if next = b.filterUnseen(next); len(next) > 0 {
					dispatch(next)
				}
			}
		}

		if len(res.ContinuationPoint.Value()) > 0 {
			continuing = append(continuing, req)
			cps = append(cps, res.ContinuationPoint)
		}
	}

	if len(restart) > 0 {
		dispatch(restart)
	}
	if len(continuing) > 0 {
		return b.browseNextChunk(ctx, continuing, cps, dispatch)
	}
	return nil
}

// filterUnseen drops any request whose (NodeID, Direction) has already been
// dispatched, recording the rest as seen. Restarted continuation-point
// retries never pass through here, since they revisit a node already
// marked seen rather than discovering a new one.
func (b *Browser) filterUnseen(batch []RequestWithRetries) []RequestWithRetries {
	b.seenMu.Lock()
	defer b.seenMu.Unlock()
	out := batch[:0]
	for _, r := range batch {
		key := seenKey{nodeID: r.Request.NodeID.String(), direction: r.Request.Direction}
		if b.seen[key] {
			continue
		}
		b.seen[key] = true
		out = append(out, r)
	}
	return out
}

func (b *Browser) emit(ctx context.Context, item *BrowseResultItem) {
	select {
	case b.results <- item:
	case <-ctx.Done():
	}
}

// trackContinuationPoint drops prevConsumed (it no longer needs releasing,
// either because it was just consumed by a follow-up call or because the
// server already discarded it) and records cp as still open, if non-empty.
func (b *Browser) trackContinuationPoint(prevConsumed, cp ua.ByteString) {
	b.cpMu.Lock()
	defer b.cpMu.Unlock()
	if len(prevConsumed.Value()) > 0 {
		delete(b.liveCPs, string(prevConsumed.Value()))
	}
	if len(cp.Value()) > 0 {
		b.liveCPs[string(cp.Value())] = cp
	}
}

// releaseOutstanding sends a single ReleaseContinuationPoints BrowseNext for
// every continuation point still open, best effort, after an error or
// cancellation stops the walk short.
func (b *Browser) releaseOutstanding() {
	b.cpMu.Lock()
	cps := make([]ua.ByteString, 0, len(b.liveCPs))
	for _, cp := range b.liveCPs {
		cps = append(cps, cp)
	}
	b.liveCPs = nil
	b.cpMu.Unlock()
	if len(cps) == 0 {
		return
	}
	_, _ = b.session.BrowseNext(context.Background(), &ua.BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        cps,
	})
}
