// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"github.com/vwopcua/opcua/id"
	"github.com/vwopcua/opcua/ua"
)

// Node accesses a single node's attributes and references through a
// Client's session.
type Node struct {
	ID *ua.NodeID
	c  *Client
}

// Value reads the node's Value attribute.
func (n *Node) Value() (*ua.Variant, error) {
	dv, err := n.Attribute(ua.AttributeIDValue)
	if err != nil {
		return nil, err
	}
	return dv.Value, nil
}

// Attribute reads a single attribute of the node.
func (n *Node) Attribute(attr ua.AttributeID) (*ua.DataValue, error) {
	req := &ua.ReadRequest{
		TimestampsToReturn: ua.TimestampsToReturnBoth,
		NodesToRead:        []ua.ReadValueID{{NodeID: n.ID, AttributeID: attr}},
	}
	res, err := n.c.Read(req)
	if err != nil {
		return nil, err
	}
	if len(res.Results) != 1 {
		return nil, ua.StatusBadUnexpectedError
	}
	dv := res.Results[0]
	if dv.Status.IsBad() {
		return nil, dv.Status
	}
	return &dv, nil
}

// SetValue writes the node's Value attribute.
func (n *Node) SetValue(v *ua.Variant) error {
	req := &ua.WriteRequest{
		NodesToWrite: []ua.WriteValue{{
			NodeID:      n.ID,
			AttributeID: ua.AttributeIDValue,
			Value:       ua.DataValue{Value: v},
		}},
	}
	res, err := n.c.Write(req)
	if err != nil {
		return err
	}
	if len(res.Results) != 1 {
		return ua.StatusBadUnexpectedError
	}
	return statusOrNil(res.Results[0])
}

// Children returns the nodes reachable from n by a hierarchical forward
// reference (Organizes, HasComponent, and their subtypes).
func (n *Node) Children() ([]*Node, error) {
	return n.References(ua.NewNumericNodeID(0, uint32(id.HierarchicalReferences)), ua.BrowseDirectionForward)
}

// References browses n for targets of refType (and its subtypes) in the
// given direction.
func (n *Node) References(refType *ua.NodeID, dir ua.BrowseDirection) ([]*Node, error) {
	req := &ua.BrowseRequest{
		RequestedMaxReferencesPerNode: 0,
		NodesToBrowse: []ua.BrowseDescription{{
			NodeID:          n.ID,
			Direction:       dir,
			ReferenceTypeID: refType,
			IncludeSubtypes: true,
			NodeClassMask:   0,
			ResultMask:      0,
		}},
	}
	res, err := n.c.Browse(req)
	if err != nil {
		return nil, err
	}
	if len(res.Results) != 1 {
		return nil, ua.StatusBadUnexpectedError
	}
	if res.Results[0].StatusCode.IsBad() {
		return nil, res.Results[0].StatusCode
	}

	nodes := make([]*Node, 0, len(res.Results[0].References))
	for _, ref := range res.Results[0].References {
		nodeID, err := ref.NodeID.Resolve(n.c.ctx)
		if err != nil {
			continue
		}
		nodes = append(nodes, n.c.Node(nodeID))
	}
	return nodes, nil
}

func statusOrNil(s ua.StatusCode) error {
	if s.IsBad() {
		return s
	}
	return nil
}
