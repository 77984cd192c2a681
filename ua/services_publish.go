// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "github.com/vwopcua/opcua/id"

// SubscriptionAcknowledgement tells the server that a client has received a
// NotificationMessage, allowing the server to release it from its
// retransmission queue (Part 4, 7.37).
type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

func (a *SubscriptionAcknowledgement) encode(b *buffer) {
	b.writeUint32(a.SubscriptionID)
	b.writeUint32(a.SequenceNumber)
}

func (a *SubscriptionAcknowledgement) decode(c *cursor) error {
	var err error
	if a.SubscriptionID, err = c.readUint32(); err != nil {
		return err
	}
	if a.SequenceNumber, err = c.readUint32(); err != nil {
		return err
	}
	return nil
}

// PublishRequest asks the server for the next NotificationMessage, and
// acknowledges previously delivered ones (Part 4, 5.13.5). A session keeps
// several of these outstanding at once to avoid blocking the flow of
// notifications on a single round trip.
type PublishRequest struct {
	RequestHeader                RequestHeader
	SubscriptionAcknowledgements []SubscriptionAcknowledgement
}

func (r *PublishRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if r.SubscriptionAcknowledgements == nil {
		b.writeInt32(-1)
		return b.Bytes(), nil
	}
	b.writeInt32(int32(len(r.SubscriptionAcknowledgements)))
	for i := range r.SubscriptionAcknowledgements {
		r.SubscriptionAcknowledgements[i].encode(&b)
	}
	return b.Bytes(), nil
}

func (r *PublishRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr RequestHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return c.pos, err
	}
	var acks []SubscriptionAcknowledgement
	if !isNull {
		acks = make([]SubscriptionAcknowledgement, length)
		for i := range acks {
			if err := acks[i].decode(c); err != nil {
				return c.pos, err
			}
		}
	}
	*r = PublishRequest{RequestHeader: hdr, SubscriptionAcknowledgements: acks}
	return c.pos, nil
}

// NotificationMessage carries one batch of DataChangeNotification,
// EventNotificationList or StatusChangeNotification payloads for a single
// subscription (Part 4, 7.26).
type NotificationMessage struct {
	SequenceNumber uint32
	PublishTime    int64
	NotificationData []*ExtensionObject
}

func (m *NotificationMessage) encode(b *buffer) error {
	b.writeUint32(m.SequenceNumber)
	b.writeInt64(m.PublishTime)
	if m.NotificationData == nil {
		b.writeInt32(-1)
		return nil
	}
	b.writeInt32(int32(len(m.NotificationData)))
	for _, eo := range m.NotificationData {
		if eo == nil {
			eo = &ExtensionObject{}
		}
		eb, err := eo.Encode()
		if err != nil {
			return err
		}
		b.Write(eb)
	}
	return nil
}

func (m *NotificationMessage) decode(c *cursor) error {
	var err error
	if m.SequenceNumber, err = c.readUint32(); err != nil {
		return err
	}
	if m.PublishTime, err = c.readInt64(); err != nil {
		return err
	}
	length, isNull, err := c.readLength(c.ctx.Limits.MaxArrayLength)
	if err != nil {
		return err
	}
	if !isNull {
		m.NotificationData = make([]*ExtensionObject, length)
		for i := range m.NotificationData {
			var eo ExtensionObject
			n, err := eo.DecodeWithContext(c.b[c.pos:], c.ctx)
			if err != nil {
				return err
			}
			c.pos += n
			m.NotificationData[i] = &eo
		}
	}
	return nil
}

// PublishResponse delivers the next NotificationMessage for one
// subscription, along with the set of subscriptions that still have data
// pending (Part 4, 5.13.5).
type PublishResponse struct {
	ResponseHeader           ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      NotificationMessage
	Results                  []StatusCode
}

func (r *PublishResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	encodeUint32Array(&b, r.AvailableSequenceNumbers)
	b.writeBool(r.MoreNotifications)
	if err := r.NotificationMessage.encode(&b); err != nil {
		return nil, err
	}
	encodeStatusCodeArray(&b, r.Results)
	b.writeInt32(-1) // diagnostic infos
	return b.Bytes(), nil
}

func (r *PublishResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	subID, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	avail, err := decodeUint32Array(c)
	if err != nil {
		return c.pos, err
	}
	more, err := c.readBool()
	if err != nil {
		return c.pos, err
	}
	var notif NotificationMessage
	if err := notif.decode(c); err != nil {
		return c.pos, err
	}
	results, err := decodeStatusCodeArray(c)
	if err != nil {
		return c.pos, err
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return c.pos, err
	}
	*r = PublishResponse{
		ResponseHeader:           hdr,
		SubscriptionID:           subID,
		AvailableSequenceNumbers: avail,
		MoreNotifications:        more,
		NotificationMessage:      notif,
		Results:                  results,
	}
	return c.pos, nil
}

// RepublishRequest asks the server to resend a NotificationMessage that was
// acknowledged too late or lost in transit (Part 4, 5.13.6).
type RepublishRequest struct {
	RequestHeader  RequestHeader
	SubscriptionID uint32
	RetransmitSequenceNumber uint32
}

func (r *RepublishRequest) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.RequestHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	b.writeUint32(r.SubscriptionID)
	b.writeUint32(r.RetransmitSequenceNumber)
	return b.Bytes(), nil
}

func (r *RepublishRequest) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
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
	seq, err := c.readUint32()
	if err != nil {
		return c.pos, err
	}
	*r = RepublishRequest{RequestHeader: hdr, SubscriptionID: subID, RetransmitSequenceNumber: seq}
	return c.pos, nil
}

// RepublishResponse answers a RepublishRequest (Part 4, 5.13.6).
type RepublishResponse struct {
	ResponseHeader       ResponseHeader
	NotificationMessage  NotificationMessage
}

func (r *RepublishResponse) Encode() ([]byte, error) {
	var b buffer
	hb, err := r.ResponseHeader.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(hb)
	if err := r.NotificationMessage.encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (r *RepublishResponse) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	var hdr ResponseHeader
	n, err := hdr.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	var notif NotificationMessage
	if err := notif.decode(c); err != nil {
		return c.pos, err
	}
	*r = RepublishResponse{ResponseHeader: hdr, NotificationMessage: notif}
	return c.pos, nil
}

// MonitoredItemNotification pairs a ClientHandle with the DataValue sampled
// for it (Part 4, 7.24).
type MonitoredItemNotification struct {
	ClientHandle uint32
	Value        DataValue
}

func (n *MonitoredItemNotification) encode(b *buffer) error {
	b.writeUint32(n.ClientHandle)
	vb, err := n.Value.Encode()
	if err != nil {
		return err
	}
	b.Write(vb)
	return nil
}

func (n *MonitoredItemNotification) decode(c *cursor) error {
	var err error
	if n.ClientHandle, err = c.readUint32(); err != nil {
		return err
	}
	nn, err := n.Value.DecodeWithContext(c.b[c.pos:], c.ctx)
	if err != nil {
		return err
	}
	c.pos += nn
	return nil
}

// DataChangeNotification carries the MonitoredItemNotifications produced by
// a data-change subscription since the last Publish (Part 4, 7.17.1).
type DataChangeNotification struct {
	MonitoredItems []MonitoredItemNotification
}

// Encode wraps the notification body in an ExtensionObject using its
// registered binary encoding id, ready for inclusion in a
// NotificationMessage.
func (d *DataChangeNotification) Encode() (*ExtensionObject, error) {
	var b buffer
	if d.MonitoredItems == nil {
		b.writeInt32(-1)
	} else {
		b.writeInt32(int32(len(d.MonitoredItems)))
		for i := range d.MonitoredItems {
			if err := d.MonitoredItems[i].encode(&b); err != nil {
				return nil, err
			}
		}
	}
	b.writeInt32(-1) // diagnostic infos
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.DataChangeNotification_Encoding_DefaultBinary)), b.Bytes()), nil
}

// DecodeDataChangeNotification decodes a DataChangeNotification body, as
// produced by ExtensionObject.Body for the matching encoding id.
func DecodeDataChangeNotification(buf []byte, ctx *Context) (*DataChangeNotification, error) {
	c := newCursor(buf, ctx)
	length, isNull, err := c.readLength(ctx.Limits.MaxArrayLength)
	if err != nil {
		return nil, err
	}
	var out DataChangeNotification
	if !isNull {
		out.MonitoredItems = make([]MonitoredItemNotification, length)
		for i := range out.MonitoredItems {
			if err := out.MonitoredItems[i].decode(c); err != nil {
				return nil, err
			}
		}
	}
	if _, _, err := c.readLength(ctx.Limits.MaxArrayLength); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatusChangeNotification tells subscribers that a subscription's own
// status changed, e.g. because it timed out or its session closed
// (Part 4, 7.36).
type StatusChangeNotification struct {
	Status           StatusCode
	DiagnosticInfo   DiagnosticInfo
}

// Encode wraps the notification body in an ExtensionObject.
func (s *StatusChangeNotification) Encode() (*ExtensionObject, error) {
	var b buffer
	b.writeUint32(uint32(s.Status))
	b.writeUint8(0) // DiagnosticInfo encoding mask: none present
	return NewExtensionObject(NewFourByteExpandedNodeID(0, uint16(id.StatusChangeNotification_Encoding_DefaultBinary)), b.Bytes()), nil
}

// DecodeStatusChangeNotification decodes a StatusChangeNotification body.
func DecodeStatusChangeNotification(buf []byte, ctx *Context) (*StatusChangeNotification, error) {
	c := newCursor(buf, ctx)
	status, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	if _, err := c.readUint8(); err != nil {
		return nil, err
	}
	return &StatusChangeNotification{Status: StatusCode(status)}, nil
}
