// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "github.com/vwopcua/opcua/id"

// notificationLoader decodes the NotificationData payloads carried inside a
// PublishResponse's NotificationMessage, so the caller gets decoded values
// rather than raw ExtensionObject bytes. identityTokenLoader does the same
// for UserIdentityTokens.
type notificationLoader struct{}

func (notificationLoader) Load(namespaceURI string, numericID uint32, body []byte, ctx *Context) (interface{}, bool, error) {
	if namespaceURI != "" && namespaceURI != "http://opcfoundation.org/UA/" {
		return nil, false, nil
	}
	switch numericID {
	case id.DataChangeNotification_Encoding_DefaultBinary:
		v, err := DecodeDataChangeNotification(body, ctx)
		return v, err == nil, err
	case id.StatusChangeNotification_Encoding_DefaultBinary:
		v, err := DecodeStatusChangeNotification(body, ctx)
		return v, err == nil, err
	default:
		return nil, false, nil
	}
}

// RegisterNotificationLoader wires the built-in NotificationData decoders
// (DataChangeNotification, StatusChangeNotification) into ctx, so Publish
// responses expose already-decoded Go values in ExtensionObject.Value.
func RegisterNotificationLoader(ctx *Context) {
	ctx.RegisterTypeLoader(notificationLoader{})
}
