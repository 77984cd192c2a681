// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// TypeLoader resolves an ExtensionObject's binary-encoded body given its
// namespace URI and numeric data-type id. Loaders are tried in registration
// order; the first one that recognizes the (namespaceURI, id) pair wins, per
// A loader that does not recognize the id returns (nil, false).
type TypeLoader interface {
	Load(namespaceURI string, numericID uint32, body []byte, ctx *Context) (interface{}, bool, error)
}

// TypeLoaderFunc adapts a function to a TypeLoader.
type TypeLoaderFunc func(namespaceURI string, numericID uint32, body []byte, ctx *Context) (interface{}, bool, error)

// Load implements TypeLoader.
func (f TypeLoaderFunc) Load(namespaceURI string, numericID uint32, body []byte, ctx *Context) (interface{}, bool, error) {
	return f(namespaceURI, numericID, body, ctx)
}

// Context carries everything a Decoder/Encoder needs that isn't part of the
// value being encoded: the namespace table used to resolve
// ExpandedNodeIDs, the decoding caps configured by the caller, a depth budget that is
// decremented on every nested Variant/ExtensionObject, and the
// priority-ordered ExtensionObject type loader chain and
// design note "dynamic dispatch for extension objects".
type Context struct {
	NamespaceURIs []string
	Limits        DecodingLimits
	TypeLoaders   []TypeLoader

	depthBudget int
}

// NewContext creates a Context with the default namespace table (namespace
// 0 is always "http://opcfoundation.org/UA/") and the given limits.
func NewContext(namespaceURIs []string, limits DecodingLimits) *Context {
	ns := append([]string{"http://opcfoundation.org/UA/"}, namespaceURIs...)
	return &Context{
		NamespaceURIs: ns,
		Limits:        limits,
		depthBudget:   limits.MaxNestingDepth,
	}
}

// RegisterTypeLoader appends a TypeLoader to the resolution chain.
func (c *Context) RegisterTypeLoader(l TypeLoader) {
	c.TypeLoaders = append(c.TypeLoaders, l)
}

// NamespaceIndex returns the index of uri in the namespace table, or false
// if it is not registered. Used by ExpandedNodeID resolution.
func (c *Context) NamespaceIndex(uri string) (uint16, bool) {
	for i, u := range c.NamespaceURIs {
		if u == uri {
			return uint16(i), true
		}
	}
	return 0, false
}

// enterNested decrements the recursion budget and fails with
// BadDecodingError at zero.
func (c *Context) enterNested() error {
	if c.depthBudget <= 0 {
		return StatusBadDecodingError
	}
	c.depthBudget--
	return nil
}

func (c *Context) exitNested() {
	c.depthBudget++
}
