// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// CreateSubscriptionRequest creates a new subscription on a session
// (Part 4, 5.13.2).
type CreateSubscriptionRequest struct {
	RequestHeader                   RequestHeader
	RequestedPublishingInterval     float64
	RequestedLifetimeCount          uint32
	RequestedMaxKeepAliveCount      uint32
	MaxNotificationsPerPublish      uint32
	PublishingEnabled               bool
	Priority                        byte
}

func (r *CreateSubscriptionRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeFloat64(r.RequestedPublishingInterval)
	b.writeUint32(r.RequestedLifetimeCount)
	b.writeUint32(r.RequestedMaxKeepAliveCount)
	b.writeUint32(r.MaxNotificationsPerPublish)
	b.writeBool(r.PublishingEnabled)
	b.writeUint8(r.Priority)
	return b.Bytes(), nil
}

func (r *CreateSubscriptionRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	interval, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	lifetime, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	keepAlive, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	maxNotif, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	enabled, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	priority, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}
	*r = CreateSubscriptionRequest{
		RequestHeader:                hdr,
		RequestedPublishingInterval:  interval,
		RequestedLifetimeCount:       lifetime,
		RequestedMaxKeepAliveCount:   keepAlive,
		MaxNotificationsPerPublish:   maxNotif,
		PublishingEnabled:            enabled,
		Priority:                     priority,
	}
	return c.pos, nil
}

// CreateSubscriptionResponse answers a CreateSubscriptionRequest with the
// revised (server-clamped) parameters (Part 4, 5.13.2).
type CreateSubscriptionResponse struct {
	ResponseHeader              ResponseHeader
	SubscriptionID              uint32
	RevisedPublishingInterval   float64
	RevisedLifetimeCount        uint32
	RevisedMaxKeepAliveCount    uint32
}

func (r *CreateSubscriptionResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	b.writeFloat64(r.RevisedPublishingInterval)
	b.writeUint32(r.RevisedLifetimeCount)
	b.writeUint32(r.RevisedMaxKeepAliveCount)
	return b.Bytes(), nil
}

func (r *CreateSubscriptionResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	id, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	interval, err := c.readFloat64()
	if err != nil {
		return c.pos, err
	}
	lifetime, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	keepAlive, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*r = CreateSubscriptionResponse{
		ResponseHeader:            hdr,
		SubscriptionID:            id,
		RevisedPublishingInterval: interval,
		RevisedLifetimeCount:      lifetime,
		RevisedMaxKeepAliveCount:  keepAlive,
	}
	return c.pos, nil
}

func encodeUint32Array(b *buffer, arr []uint32) {
	if arr == nil {
		b.writeInt32(-1)
		return
	}
	b.writeInt32(int32(len(arr)))
	for _, v := range arr {
		b.writeUint32(v)
	}
}

func decodeUint32Array(c *cursor) ([]uint32, error) {
	length, isNull, err := c.readLength(c.ctx.Limits.MaxArrayLength)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}
	out := make([]uint32, length)
	for i := range out {
		if out[i], err = c.readUint32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeStatusCodeArray(b *buffer, arr []StatusCode) {
	if arr == nil {
		b.writeInt32(-1)
		return
	}
	b.writeInt32(int32(len(arr)))
	for _, v := range arr {
		b.writeUint32(uint32(v))
	}
}

func decodeStatusCodeArray(c *cursor) ([]StatusCode, error) {
	length, isNull, err := c.readLength(c.ctx.Limits.MaxArrayLength)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}
	out := make([]StatusCode, length)
	for i := range out {
		v, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		out[i] = StatusCode(v)
	}
	return out, nil
}

// DeleteSubscriptionsRequest deletes a set of subscriptions (Part 4,
// 5.13.8).
type DeleteSubscriptionsRequest struct {
	RequestHeader    RequestHeader
	SubscriptionIDs  []uint32
}

func (r *DeleteSubscriptionsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	encodeUint32Array(&b, r.SubscriptionIDs)
	return b.Bytes(), nil
}

func (r *DeleteSubscriptionsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	ids, err := decodeUint32Array(c)
	if err != nil {
		return c.pos, err
	}
	*r = DeleteSubscriptionsRequest{RequestHeader: hdr, SubscriptionIDs: ids}
	return c.pos, nil
}

// DeleteSubscriptionsResponse answers a DeleteSubscriptionsRequest (Part 4,
// 5.13.8).
type DeleteSubscriptionsResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteSubscriptionsResponse) Encode() ([]byte, error) {
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

func (r *DeleteSubscriptionsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
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
	*r = DeleteSubscriptionsResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}

// TransferSubscriptionsRequest moves ownership of subscriptions to the
// session issuing this request, typically after a client reconnects
// (Part 4, 5.13.7).
type TransferSubscriptionsRequest struct {
	RequestHeader   RequestHeader
	SubscriptionIDs []uint32
	SendInitialValues bool
}

func (r *TransferSubscriptionsRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	encodeUint32Array(&b, r.SubscriptionIDs)
	b.writeBool(r.SendInitialValues)
	return b.Bytes(), nil
}

func (r *TransferSubscriptionsRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	ids, err := decodeUint32Array(c)
	if err != nil {
		return c.pos, err
	}
	send, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	*r = TransferSubscriptionsRequest{RequestHeader: hdr, SubscriptionIDs: ids, SendInitialValues: send}
	return c.pos, nil
}

// TransferResult carries the outcome of transferring one subscription
// (Part 4, 7.39).
type TransferResult struct {
	StatusCode         StatusCode
	AvailableSequenceNumbers []uint32
}

// TransferSubscriptionsResponse answers a TransferSubscriptionsRequest
// (Part 4, 5.13.7).
type TransferSubscriptionsResponse struct {
	ResponseHeader ResponseHeader
	Results        []TransferResult
}

func (r *TransferSubscriptionsResponse) Encode() ([]byte, error) {
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
	for _, res := range r.Results {
		b.writeUint32(uint32(res.StatusCode))
		encodeUint32Array(&b, res.AvailableSequenceNumbers)
	}
	b.writeInt32(-1)
	return b.Bytes(), nil
}

func (r *TransferSubscriptionsResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
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
	var results []TransferResult
	if !isNull {
		results = make([]TransferResult, length)
		for i := range results {
			status, err := c.readUint32()
			if err != nil {
				return c.pos, err
			}
			seqs, err := decodeUint32Array(c)
			if err != nil {
				return c.pos, err
			}
			results[i] = TransferResult{StatusCode: StatusCode(status), AvailableSequenceNumbers: seqs}
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = TransferSubscriptionsResponse{ResponseHeader: hdr, Results: results}
	return c.pos, nil
}
