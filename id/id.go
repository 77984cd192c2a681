// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package id holds the numeric node identifiers assigned by the OPC
// Foundation to the well-known types used by this stack. The full address
// space has tens of thousands of these; this package only carries the ones
// exercised by the hand-written service layer in ua, uasc and server — the
// rest are produced by a schema code generator in a full OPC-UA stack,
// which this stack does not implement.
package id

// Binary encoding ids for the request/response and structure types this
// stack encodes or decodes. Values match the OPC Foundation's standard
// NodeId assignments in namespace 0.
const (
	OpenSecureChannelRequest_Encoding_DefaultBinary  uint32 = 446
	OpenSecureChannelResponse_Encoding_DefaultBinary uint32 = 449
	CloseSecureChannelRequest_Encoding_DefaultBinary uint32 = 452
	CloseSecureChannelResponse_Encoding_DefaultBinary uint32 = 455

	GetEndpointsRequest_Encoding_DefaultBinary  uint32 = 428
	GetEndpointsResponse_Encoding_DefaultBinary uint32 = 431

	CreateSessionRequest_Encoding_DefaultBinary  uint32 = 461
	CreateSessionResponse_Encoding_DefaultBinary uint32 = 464

	ActivateSessionRequest_Encoding_DefaultBinary  uint32 = 467
	ActivateSessionResponse_Encoding_DefaultBinary uint32 = 470

	CloseSessionRequest_Encoding_DefaultBinary  uint32 = 473
	CloseSessionResponse_Encoding_DefaultBinary uint32 = 476

	ReadRequest_Encoding_DefaultBinary  uint32 = 631
	ReadResponse_Encoding_DefaultBinary uint32 = 634

	WriteRequest_Encoding_DefaultBinary  uint32 = 673
	WriteResponse_Encoding_DefaultBinary uint32 = 676

	BrowseRequest_Encoding_DefaultBinary  uint32 = 527
	BrowseResponse_Encoding_DefaultBinary uint32 = 530

	BrowseNextRequest_Encoding_DefaultBinary  uint32 = 533
	BrowseNextResponse_Encoding_DefaultBinary uint32 = 536

	CreateSubscriptionRequest_Encoding_DefaultBinary  uint32 = 787
	CreateSubscriptionResponse_Encoding_DefaultBinary uint32 = 790

	DeleteSubscriptionsRequest_Encoding_DefaultBinary  uint32 = 847
	DeleteSubscriptionsResponse_Encoding_DefaultBinary uint32 = 850

	TransferSubscriptionsRequest_Encoding_DefaultBinary  uint32 = 841
	TransferSubscriptionsResponse_Encoding_DefaultBinary uint32 = 844

	CreateMonitoredItemsRequest_Encoding_DefaultBinary  uint32 = 751
	CreateMonitoredItemsResponse_Encoding_DefaultBinary uint32 = 754

	ModifyMonitoredItemsRequest_Encoding_DefaultBinary  uint32 = 763
	ModifyMonitoredItemsResponse_Encoding_DefaultBinary uint32 = 766

	SetMonitoringModeRequest_Encoding_DefaultBinary  uint32 = 769
	SetMonitoringModeResponse_Encoding_DefaultBinary uint32 = 772

	DeleteMonitoredItemsRequest_Encoding_DefaultBinary  uint32 = 781
	DeleteMonitoredItemsResponse_Encoding_DefaultBinary uint32 = 784

	PublishRequest_Encoding_DefaultBinary  uint32 = 826
	PublishResponse_Encoding_DefaultBinary uint32 = 829

	RepublishRequest_Encoding_DefaultBinary  uint32 = 832
	RepublishResponse_Encoding_DefaultBinary uint32 = 835

	ServiceFault_Encoding_DefaultBinary uint32 = 397

	AnonymousIdentityToken_Encoding_DefaultBinary  uint32 = 321
	UserNameIdentityToken_Encoding_DefaultBinary   uint32 = 324
	X509IdentityToken_Encoding_DefaultBinary       uint32 = 327
	IssuedIdentityToken_Encoding_DefaultBinary     uint32 = 940

	ReadRawModifiedDetails_Encoding_DefaultBinary uint32 = 649

	DataChangeNotification_Encoding_DefaultBinary   uint32 = 811
	EventNotificationList_Encoding_DefaultBinary    uint32 = 916
	StatusChangeNotification_Encoding_DefaultBinary uint32 = 820
)

// Well-known NodeIds in namespace 0, the subset the browser and type tree
// walk needs: reference types, a handful of folder objects, and the root of
// the DataType hierarchy.
const (
	References                ObjectID = 31
	HierarchicalReferences    ObjectID = 33
	NonHierarchicalReferences ObjectID = 32
	HasChild                  ObjectID = 34
	Organizes                 ObjectID = 35
	HasTypeDefinition         ObjectID = 40
	Aggregates                ObjectID = 44
	HasSubtype                ObjectID = 45
	HasProperty               ObjectID = 46
	HasComponent              ObjectID = 47

	RootFolder   ObjectID = 84
	ObjectsFolder ObjectID = 85
	TypesFolder  ObjectID = 86
	ViewsFolder  ObjectID = 87

	BaseDataType ObjectID = 24
	Structure    ObjectID = 22
	Enumeration  ObjectID = 29
)

// ObjectID is a namespace-0 numeric identifier, the common case for
// referencing a well-known type or folder without building a NodeID by hand.
type ObjectID uint32
