// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// MonitoringMode controls whether a monitored item reports notifications
// (Part 4, 7.20).
type MonitoringMode uint32

const (
	MonitoringModeDisabled MonitoringMode = 0
	MonitoringModeSampling MonitoringMode = 1
	MonitoringModeReporting MonitoringMode = 2
)

// MonitoringParameters configures sampling and queueing for one monitored
// item (Part 4, 7.21).
type MonitoringParameters struct {
	ClientHandle     uint32
	SamplingInterval float64
	Filter           *ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool
}

func (p *MonitoringParameters) Encode() ([]byte, error) {
	var b buffer
	b.writeUint32(p.ClientHandle)
	b.writeFloat64(p.SamplingInterval)
	filter := p.Filter
	if filter == nil {
		filter = &ExtensionObject{}
	}
	fb, err := filter.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(fb)
	b.writeUint32(p.QueueSize)
	b.writeBool(p.DiscardOldest)
	return b.Bytes(), nil
}

func (p *MonitoringParameters) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	handle, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	interval, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	var filter ExtensionObject
	n, err := filter.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	queue, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	discard, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	*p = MonitoringParameters{
		ClientHandle:     handle,
		SamplingInterval: interval,
		Filter:           &filter,
		QueueSize:        queue,
		DiscardOldest:    discard,
	}
	return c.pos, nil
}

// MonitoredItemCreateRequest pairs a node attribute with the monitoring
// parameters to apply to it (Part 4, 7.19).
type MonitoredItemCreateRequest struct {
	ItemToMonitor  ReadValueID
	MonitoringMode MonitoringMode
	RequestedParameters MonitoringParameters
}

// NewMonitoredItemCreateRequestWithDefaults builds a MonitoredItemCreateRequest
// with reporting enabled and an unfiltered, single-slot queue, mirroring the
// defaults a minimal OPC-UA client reaches for.
func NewMonitoredItemCreateRequestWithDefaults(nodeID *NodeID, attributeID AttributeID, clientHandle uint32) *MonitoredItemCreateRequest {
	return &MonitoredItemCreateRequest{
		ItemToMonitor:  ReadValueID{NodeID: nodeID, AttributeID: attributeID},
		MonitoringMode: MonitoringModeReporting,
		RequestedParameters: MonitoringParameters{
			ClientHandle:     clientHandle,
			SamplingInterval: 0,
			QueueSize:        1,
			DiscardOldest:    true,
		},
	}
}

func (r *MonitoredItemCreateRequest) Encode() ([]byte, error) {
	var b buffer
	ib, err := r.ItemToMonitor.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(ib)
	b.writeUint32(uint32(r.MonitoringMode))
	pb, err := r.RequestedParameters.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(pb)
	return b.Bytes(), nil
}

func (r *MonitoredItemCreateRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var item ReadValueID
	n, err := item.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	mode, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var params MonitoringParameters
	n, err = params.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = MonitoredItemCreateRequest{ItemToMonitor: item, MonitoringMode: MonitoringMode(mode), RequestedParameters: params}
	return c.pos, nil
}

// MonitoredItemCreateResult carries the server-revised parameters for one
// newly created monitored item (Part 4, 7.18).
type MonitoredItemCreateResult struct {
	StatusCode                StatusCode
	MonitoredItemID           uint32
	RevisedSamplingInterval   float64
	RevisedQueueSize          uint32
	FilterResult              *ExtensionObject
}

func (r *MonitoredItemCreateResult) Encode() ([]byte, error) {
	var b buffer
	b.writeUint32(uint32(r.StatusCode))
	b.writeUint32(r.MonitoredItemID)
	b.writeFloat64(r.RevisedSamplingInterval)
	b.writeUint32(r.RevisedQueueSize)
	filter := r.FilterResult
	if filter == nil {
		filter = &ExtensionObject{}
	}
	fb, err := filter.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(fb)
	return b.Bytes(), nil
}

func (r *MonitoredItemCreateResult) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	status, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	id, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	interval, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	queue, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var filter ExtensionObject
	n, err := filter.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = MonitoredItemCreateResult{
		StatusCode:              StatusCode(status),
		MonitoredItemID:         id,
		RevisedSamplingInterval: interval,
		RevisedQueueSize:        queue,
		FilterResult:            &filter,
	}
	return c.pos, nil
}

// CreateMonitoredItemsRequest creates a batch of monitored items under one
// subscription (Part 4, 5.14.2).
type CreateMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToCreate      []MonitoredItemCreateRequest
}

func (r *CreateMonitoredItemsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	b.writeUint32(uint32(r.TimestampsToReturn))
	if r.ItemsToCreate == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.ItemsToCreate)))
	for i := range r.ItemsToCreate {
		ib, err := r.ItemsToCreate[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(ib)
	}
	return b.Bytes(), nil
}

func (r *CreateMonitoredItemsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	subID, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	tsReturn, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var items []MonitoredItemCreateRequest
	if !isNull {
		items = make([]MonitoredItemCreateRequest, length)
		for i := range items {
			n, err := items[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = CreateMonitoredItemsRequest{RequestHeader: hdr, SubscriptionID: subID, TimestampsToReturn: TimestampsToReturn(tsReturn), ItemsToCreate: items}
	return c.pos, nil
}

// CreateMonitoredItemsResponse answers a CreateMonitoredItemsRequest
// (Part 4, 5.14.2).
type CreateMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []MonitoredItemCreateResult
}

func (r *CreateMonitoredItemsResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Results == nil {
		b.writeInt32(-1)
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.Results)))
	for i := range r.Results {
		rb, err := r.Results[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(rb)
	}
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *CreateMonitoredItemsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var results []MonitoredItemCreateResult
	if !isNull {
		results = make([]MonitoredItemCreateResult, length)
		for i := range results {
			n, err := results[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = CreateMonitoredItemsResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// MonitoredItemModifyRequest changes the parameters of an existing
// monitored item (Part 4, 7.22).
type MonitoredItemModifyRequest struct {
	MonitoredItemID     uint32
	RequestedParameters MonitoringParameters
}

func (r *MonitoredItemModifyRequest) Encode() ([]byte, error) {
	var b buffer
	b.writeUint32(r.MonitoredItemID)
	pb, err := r.RequestedParameters.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(pb)
	return b.Bytes(), nil
}

func (r *MonitoredItemModifyRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	id, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var params MonitoringParameters
	n, err := params.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = MonitoredItemModifyRequest{MonitoredItemID: id, RequestedParameters: params}
	return c.pos, nil
}

// MonitoredItemModifyResult carries the server-revised parameters for one
// modified monitored item (Part 4, 7.23).
type MonitoredItemModifyResult struct {
	StatusCode              StatusCode
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
	FilterResult            *ExtensionObject
}

func (r *MonitoredItemModifyResult) Encode() ([]byte, error) {
	var b buffer
	b.writeUint32(uint32(r.StatusCode))
	b.writeFloat64(r.RevisedSamplingInterval)
	b.writeUint32(r.RevisedQueueSize)
	filter := r.FilterResult
	if filter == nil {
		filter = &ExtensionObject{}
	}
	fb, err := filter.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(fb)
	return b.Bytes(), nil
}

func (r *MonitoredItemModifyResult) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	status, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	interval, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	queue, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	var filter ExtensionObject
	n, err := filter.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*r = MonitoredItemModifyResult{StatusCode: StatusCode(status), RevisedSamplingInterval: interval, RevisedQueueSize: queue, FilterResult: &filter}
	return c.pos, nil
}

// ModifyMonitoredItemsRequest changes a batch of monitored items under one
// subscription (Part 4, 5.14.3).
type ModifyMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToModify      []MonitoredItemModifyRequest
}

func (r *ModifyMonitoredItemsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	b.writeUint32(uint32(r.TimestampsToReturn))
	if r.ItemsToModify == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.ItemsToModify)))
	for i := range r.ItemsToModify {
		ib, err := r.ItemsToModify[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(ib)
	}
	return b.Bytes(), nil
}

func (r *ModifyMonitoredItemsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	subID, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	tsReturn, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var items []MonitoredItemModifyRequest
	if !isNull {
		items = make([]MonitoredItemModifyRequest, length)
		for i := range items {
			n, err := items[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	*r = ModifyMonitoredItemsRequest{RequestHeader: hdr, SubscriptionID: subID, TimestampsToReturn: TimestampsToReturn(tsReturn), ItemsToModify: items}
	return c.pos, nil
}

// ModifyMonitoredItemsResponse answers a ModifyMonitoredItemsRequest
// (Part 4, 5.14.3).
type ModifyMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []MonitoredItemModifyResult
}

func (r *ModifyMonitoredItemsResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.Results == nil {
		b.writeInt32(-1)
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.Results)))
	for i := range r.Results {
		rb, err := r.Results[i].Encode()
		if err != nil {
			return nil, err
		}
		b.Write(rb)
	}
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *ModifyMonitoredItemsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var results []MonitoredItemModifyResult
	if !isNull {
		results = make([]MonitoredItemModifyResult, length)
		for i := range results {
			n, err := results[i].DecodeWithContext(buf[c.pos:], ctx)
			if err != nil {
				return c.pos, err
			}
			c.pos += n
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = ModifyMonitoredItemsResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// SetMonitoringModeRequest changes the MonitoringMode of a batch of
// monitored items (Part 4, 5.14.4).
type SetMonitoringModeRequest struct {
	RequestHeader   RequestHeader
	SubscriptionID  uint32
	MonitoringMode  MonitoringMode
	MonitoredItemIDs []uint32
}

func (r *SetMonitoringModeRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	b.writeUint32(uint32(r.MonitoringMode))
	encodeUint32Array(&b, r.MonitoredItemIDs)
	return b.Bytes(), nil
}

func (r *SetMonitoringModeRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	subID, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	mode, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	ids, err := decodeUint32Array(c)
	if err != nil {
		return c.pos, err
	}
	*r = SetMonitoringModeRequest{RequestHeader: hdr, SubscriptionID: subID, MonitoringMode: MonitoringMode(mode), MonitoredItemIDs: ids}
	return c.pos, nil
}

// SetMonitoringModeResponse answers a SetMonitoringModeRequest (Part 4,
// 5.14.4).
type SetMonitoringModeResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *SetMonitoringModeResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	encodeStatusCodeArray(&b, r.Results)
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *SetMonitoringModeResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	results, err := decodeStatusCodeArray(c)
	if err != nil {
		return c.pos, err
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = SetMonitoringModeResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// DeleteMonitoredItemsRequest deletes a batch of monitored items (Part 4,
// 5.14.5).
type DeleteMonitoredItemsRequest struct {
	RequestHeader    RequestHeader
	SubscriptionID   uint32
	MonitoredItemIDs []uint32
}

func (r *DeleteMonitoredItemsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	encodeUint32Array(&b, r.MonitoredItemIDs)
	return b.Bytes(), nil
}

func (r *DeleteMonitoredItemsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	subID, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	ids, err := decodeUint32Array(c)
	if err != nil {
		return c.pos, err
	}
	*r = DeleteMonitoredItemsRequest{RequestHeader: hdr, SubscriptionID: subID, MonitoredItemIDs: ids}
	return c.pos, nil
}

// DeleteMonitoredItemsResponse answers a DeleteMonitoredItemsRequest
// (Part 4, 5.14.5).
type DeleteMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteMonitoredItemsResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	encodeStatusCodeArray(&b, r.Results)
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *DeleteMonitoredItemsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	results, err := decodeStatusCodeArray(c)
	if err != nil {
		return c.pos, err
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = DeleteMonitoredItemsResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}
