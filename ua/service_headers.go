// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// Request is implemented by every service request struct so a secure
// channel can stamp the common RequestHeader fields without knowing the
// concrete service.
type Request interface {
	ServiceEncoder
	Header() *RequestHeader
	SetHeader(*RequestHeader)
}

// Response is implemented by every service response struct so a secure
// channel can read the common ResponseHeader fields without knowing the
// concrete service.
type Response interface {
	ServiceDecoder
	Header() *ResponseHeader
}

func (r *OpenSecureChannelRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *OpenSecureChannelRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *OpenSecureChannelResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *CloseSecureChannelRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *CloseSecureChannelRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *CloseSecureChannelResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *GetEndpointsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *GetEndpointsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *GetEndpointsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *CreateSessionRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *CreateSessionRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *CreateSessionResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *ActivateSessionRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *ActivateSessionRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *ActivateSessionResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *CloseSessionRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *CloseSessionRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *CloseSessionResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *ReadRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *ReadRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *ReadResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *WriteRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *WriteRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *WriteResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *BrowseRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *BrowseRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *BrowseResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *BrowseNextRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *BrowseNextRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *BrowseNextResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *CreateSubscriptionRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *CreateSubscriptionRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *CreateSubscriptionResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *DeleteSubscriptionsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *DeleteSubscriptionsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *DeleteSubscriptionsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *TransferSubscriptionsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *TransferSubscriptionsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *TransferSubscriptionsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *CreateMonitoredItemsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *CreateMonitoredItemsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *CreateMonitoredItemsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *ModifyMonitoredItemsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *ModifyMonitoredItemsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *ModifyMonitoredItemsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *SetMonitoringModeRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *SetMonitoringModeRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *SetMonitoringModeResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *DeleteMonitoredItemsRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *DeleteMonitoredItemsRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *DeleteMonitoredItemsResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *PublishRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *PublishRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *PublishResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (r *RepublishRequest) Header() *RequestHeader    { return &r.RequestHeader }
func (r *RepublishRequest) SetHeader(h *RequestHeader) { r.RequestHeader = *h }
func (r *RepublishResponse) Header() *ResponseHeader  { return &r.ResponseHeader }

func (f *ServiceFaultMessage) Header() *ResponseHeader { return &f.ResponseHeader }
