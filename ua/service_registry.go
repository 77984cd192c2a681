// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"github.com/vwopcua/opcua/errors"
	"github.com/vwopcua/opcua/id"
)

// ServiceDecoder is implemented by every service request/response struct
// carried inside a secure channel MSG chunk body.
type ServiceDecoder interface {
	DecodeWithContext(buf []byte, ctx *Context) (int, error)
}

// ServiceEncoder is implemented by every service request/response struct.
type ServiceEncoder interface {
	Encode() ([]byte, error)
}

var serviceFactory = map[uint32]func() ServiceDecoder{
	id.OpenSecureChannelRequest_Encoding_DefaultBinary:      func() ServiceDecoder { return new(OpenSecureChannelRequest) },
	id.OpenSecureChannelResponse_Encoding_DefaultBinary:     func() ServiceDecoder { return new(OpenSecureChannelResponse) },
	id.CloseSecureChannelRequest_Encoding_DefaultBinary:     func() ServiceDecoder { return new(CloseSecureChannelRequest) },
	id.CloseSecureChannelResponse_Encoding_DefaultBinary:    func() ServiceDecoder { return new(CloseSecureChannelResponse) },
	id.GetEndpointsRequest_Encoding_DefaultBinary:           func() ServiceDecoder { return new(GetEndpointsRequest) },
	id.GetEndpointsResponse_Encoding_DefaultBinary:          func() ServiceDecoder { return new(GetEndpointsResponse) },
	id.CreateSessionRequest_Encoding_DefaultBinary:          func() ServiceDecoder { return new(CreateSessionRequest) },
	id.CreateSessionResponse_Encoding_DefaultBinary:         func() ServiceDecoder { return new(CreateSessionResponse) },
	id.ActivateSessionRequest_Encoding_DefaultBinary:        func() ServiceDecoder { return new(ActivateSessionRequest) },
	id.ActivateSessionResponse_Encoding_DefaultBinary:       func() ServiceDecoder { return new(ActivateSessionResponse) },
	id.CloseSessionRequest_Encoding_DefaultBinary:           func() ServiceDecoder { return new(CloseSessionRequest) },
	id.CloseSessionResponse_Encoding_DefaultBinary:          func() ServiceDecoder { return new(CloseSessionResponse) },
	id.ReadRequest_Encoding_DefaultBinary:                   func() ServiceDecoder { return new(ReadRequest) },
	id.ReadResponse_Encoding_DefaultBinary:                  func() ServiceDecoder { return new(ReadResponse) },
	id.WriteRequest_Encoding_DefaultBinary:                  func() ServiceDecoder { return new(WriteRequest) },
	id.WriteResponse_Encoding_DefaultBinary:                 func() ServiceDecoder { return new(WriteResponse) },
	id.BrowseRequest_Encoding_DefaultBinary:                 func() ServiceDecoder { return new(BrowseRequest) },
	id.BrowseResponse_Encoding_DefaultBinary:                func() ServiceDecoder { return new(BrowseResponse) },
	id.BrowseNextRequest_Encoding_DefaultBinary:             func() ServiceDecoder { return new(BrowseNextRequest) },
	id.BrowseNextResponse_Encoding_DefaultBinary:            func() ServiceDecoder { return new(BrowseNextResponse) },
	id.CreateSubscriptionRequest_Encoding_DefaultBinary:     func() ServiceDecoder { return new(CreateSubscriptionRequest) },
	id.CreateSubscriptionResponse_Encoding_DefaultBinary:    func() ServiceDecoder { return new(CreateSubscriptionResponse) },
	id.DeleteSubscriptionsRequest_Encoding_DefaultBinary:    func() ServiceDecoder { return new(DeleteSubscriptionsRequest) },
	id.DeleteSubscriptionsResponse_Encoding_DefaultBinary:   func() ServiceDecoder { return new(DeleteSubscriptionsResponse) },
	id.TransferSubscriptionsRequest_Encoding_DefaultBinary:  func() ServiceDecoder { return new(TransferSubscriptionsRequest) },
	id.TransferSubscriptionsResponse_Encoding_DefaultBinary: func() ServiceDecoder { return new(TransferSubscriptionsResponse) },
	id.CreateMonitoredItemsRequest_Encoding_DefaultBinary:   func() ServiceDecoder { return new(CreateMonitoredItemsRequest) },
	id.CreateMonitoredItemsResponse_Encoding_DefaultBinary:  func() ServiceDecoder { return new(CreateMonitoredItemsResponse) },
	id.ModifyMonitoredItemsRequest_Encoding_DefaultBinary:   func() ServiceDecoder { return new(ModifyMonitoredItemsRequest) },
	id.ModifyMonitoredItemsResponse_Encoding_DefaultBinary:  func() ServiceDecoder { return new(ModifyMonitoredItemsResponse) },
	id.SetMonitoringModeRequest_Encoding_DefaultBinary:      func() ServiceDecoder { return new(SetMonitoringModeRequest) },
	id.SetMonitoringModeResponse_Encoding_DefaultBinary:     func() ServiceDecoder { return new(SetMonitoringModeResponse) },
	id.DeleteMonitoredItemsRequest_Encoding_DefaultBinary:   func() ServiceDecoder { return new(DeleteMonitoredItemsRequest) },
	id.DeleteMonitoredItemsResponse_Encoding_DefaultBinary:  func() ServiceDecoder { return new(DeleteMonitoredItemsResponse) },
	id.PublishRequest_Encoding_DefaultBinary:                func() ServiceDecoder { return new(PublishRequest) },
	id.PublishResponse_Encoding_DefaultBinary:               func() ServiceDecoder { return new(PublishResponse) },
	id.RepublishRequest_Encoding_DefaultBinary:              func() ServiceDecoder { return new(RepublishRequest) },
	id.RepublishResponse_Encoding_DefaultBinary:             func() ServiceDecoder { return new(RepublishResponse) },
	id.ServiceFault_Encoding_DefaultBinary:                  func() ServiceDecoder { return new(ServiceFaultMessage) },
}

// ServiceTypeID returns the binary encoding id for a service struct pointer.
func ServiceTypeID(v interface{}) (uint32, error) {
	switch v.(type) {
	case *OpenSecureChannelRequest:
		return id.OpenSecureChannelRequest_Encoding_DefaultBinary, nil
	case *OpenSecureChannelResponse:
		return id.OpenSecureChannelResponse_Encoding_DefaultBinary, nil
	case *CloseSecureChannelRequest:
		return id.CloseSecureChannelRequest_Encoding_DefaultBinary, nil
	case *CloseSecureChannelResponse:
		return id.CloseSecureChannelResponse_Encoding_DefaultBinary, nil
	case *GetEndpointsRequest:
		return id.GetEndpointsRequest_Encoding_DefaultBinary, nil
	case *GetEndpointsResponse:
		return id.GetEndpointsResponse_Encoding_DefaultBinary, nil
	case *CreateSessionRequest:
		return id.CreateSessionRequest_Encoding_DefaultBinary, nil
	case *CreateSessionResponse:
		return id.CreateSessionResponse_Encoding_DefaultBinary, nil
	case *ActivateSessionRequest:
		return id.ActivateSessionRequest_Encoding_DefaultBinary, nil
	case *ActivateSessionResponse:
		return id.ActivateSessionResponse_Encoding_DefaultBinary, nil
	case *CloseSessionRequest:
		return id.CloseSessionRequest_Encoding_DefaultBinary, nil
	case *CloseSessionResponse:
		return id.CloseSessionResponse_Encoding_DefaultBinary, nil
	case *ReadRequest:
		return id.ReadRequest_Encoding_DefaultBinary, nil
	case *ReadResponse:
		return id.ReadResponse_Encoding_DefaultBinary, nil
	case *WriteRequest:
		return id.WriteRequest_Encoding_DefaultBinary, nil
	case *WriteResponse:
		return id.WriteResponse_Encoding_DefaultBinary, nil
	case *BrowseRequest:
		return id.BrowseRequest_Encoding_DefaultBinary, nil
	case *BrowseResponse:
		return id.BrowseResponse_Encoding_DefaultBinary, nil
	case *BrowseNextRequest:
		return id.BrowseNextRequest_Encoding_DefaultBinary, nil
	case *BrowseNextResponse:
		return id.BrowseNextResponse_Encoding_DefaultBinary, nil
	case *CreateSubscriptionRequest:
		return id.CreateSubscriptionRequest_Encoding_DefaultBinary, nil
	case *CreateSubscriptionResponse:
		return id.CreateSubscriptionResponse_Encoding_DefaultBinary, nil
	case *DeleteSubscriptionsRequest:
		return id.DeleteSubscriptionsRequest_Encoding_DefaultBinary, nil
	case *DeleteSubscriptionsResponse:
		return id.DeleteSubscriptionsResponse_Encoding_DefaultBinary, nil
	case *TransferSubscriptionsRequest:
		return id.TransferSubscriptionsRequest_Encoding_DefaultBinary, nil
	case *TransferSubscriptionsResponse:
		return id.TransferSubscriptionsResponse_Encoding_DefaultBinary, nil
	case *CreateMonitoredItemsRequest:
		return id.CreateMonitoredItemsRequest_Encoding_DefaultBinary, nil
	case *CreateMonitoredItemsResponse:
		return id.CreateMonitoredItemsResponse_Encoding_DefaultBinary, nil
	case *ModifyMonitoredItemsRequest:
		return id.ModifyMonitoredItemsRequest_Encoding_DefaultBinary, nil
	case *ModifyMonitoredItemsResponse:
		return id.ModifyMonitoredItemsResponse_Encoding_DefaultBinary, nil
	case *SetMonitoringModeRequest:
		return id.SetMonitoringModeRequest_Encoding_DefaultBinary, nil
	case *SetMonitoringModeResponse:
		return id.SetMonitoringModeResponse_Encoding_DefaultBinary, nil
	case *DeleteMonitoredItemsRequest:
		return id.DeleteMonitoredItemsRequest_Encoding_DefaultBinary, nil
	case *DeleteMonitoredItemsResponse:
		return id.DeleteMonitoredItemsResponse_Encoding_DefaultBinary, nil
	case *PublishRequest:
		return id.PublishRequest_Encoding_DefaultBinary, nil
	case *PublishResponse:
		return id.PublishResponse_Encoding_DefaultBinary, nil
	case *RepublishRequest:
		return id.RepublishRequest_Encoding_DefaultBinary, nil
	case *RepublishResponse:
		return id.RepublishResponse_Encoding_DefaultBinary, nil
	case *ServiceFaultMessage:
		return id.ServiceFault_Encoding_DefaultBinary, nil
	default:
		return 0, errors.Errorf("ua: no binary encoding id registered for %T", v)
	}
}

// DecodeService looks up typeID in the service registry, decodes buf into a
// freshly allocated instance, and returns it. Callers that need the
// resolved Go type typically type-switch on the result.
func DecodeService(typeID uint32, buf []byte, ctx *Context) (ServiceDecoder, error) {
	factory, ok := serviceFactory[typeID]
	if !ok {
		return nil, errors.Errorf("ua: unknown service binary encoding id %d", typeID)
	}
	v := factory()
	if _, err := v.DecodeWithContext(buf, ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// ServiceFaultMessage is returned by a server in place of any response when
// the corresponding request fails before dispatch (Part 4, 5.5.7).
type ServiceFaultMessage struct {
	ResponseHeader ResponseHeader
}

// Encode implements the binary ServiceFault encoding.
func (f *ServiceFaultMessage) Encode() ([]byte, error) {
	return f.ResponseHeader.Encode()
}

// DecodeWithContext implements the binary ServiceFault decoding.
func (f *ServiceFaultMessage) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	return f.ResponseHeader.DecodeWithContext(buf, ctx)
}
