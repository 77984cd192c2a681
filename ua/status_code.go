// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "fmt"

// StatusCode is a numeric code describing the outcome of an operation, per
// OPC-UA Part 4, 7.34. A status with the high bit (0x80000000) set is "Bad"
// and fatal to whatever scope it was reported at; 0x40000000 means
// "Uncertain"; everything else is "Good".
type StatusCode uint32

// StatusOK is the zero value and indicates success.
const StatusOK StatusCode = 0

// Status codes used throughout the stack. Values match the OPC Foundation's
// assignments; only the subset exercised by this implementation is listed,
// the full table lives in a schema the code generator (out of scope, see
// code comparisons would otherwise produce.
const (
	StatusBadDecodingError              StatusCode = 0x80060000
	StatusBadEncodingError              StatusCode = 0x80058000
	StatusBadEncodingLimitsExceeded     StatusCode = 0x80080000
	StatusBadUnexpectedError            StatusCode = 0x80010000
	StatusBadTcpInternalError           StatusCode = 0x807A0000
	StatusBadTcpEndpointURLInvalid      StatusCode = 0x807B0000
	StatusBadSequenceNumberInvalid      StatusCode = 0x80470000
	StatusBadSecurityChecksFailed       StatusCode = 0x80130000
	StatusBadSecureChannelIDInvalid     StatusCode = 0x80220000
	StatusBadSecureChannelTokenUnknown  StatusCode = 0x80460000
	StatusBadSecureChannelClosed        StatusCode = 0x80310000
	StatusBadCertificateInvalid         StatusCode = 0x80120000
	StatusBadRequestTooLarge            StatusCode = 0x80B80000
	StatusBadResponseTooLarge           StatusCode = 0x80B90000
	StatusBadTimeout                    StatusCode = 0x800A0000
	StatusBadTooManySessions            StatusCode = 0x80560000
	StatusBadTooManyOperations          StatusCode = 0x80170000
	StatusBadTooManyMonitoredItems      StatusCode = 0x80DB0000
	StatusBadSessionIDInvalid           StatusCode = 0x80250000
	StatusBadSessionClosed              StatusCode = 0x80260000
	StatusBadSessionNotActivated        StatusCode = 0x80270000
	StatusBadIdentityTokenInvalid       StatusCode = 0x80200000
	StatusBadIdentityTokenRejected      StatusCode = 0x80210000
	StatusBadUserSignatureInvalid       StatusCode = 0x80400000
	StatusBadSubscriptionIDInvalid      StatusCode = 0x80280000
	StatusBadMessageNotAvailable        StatusCode = 0x80710000
	StatusBadNoSubscription             StatusCode = 0x80700000
	StatusBadContinuationPointInvalid   StatusCode = 0x80450000
	StatusBadNothingToDo                StatusCode = 0x80140000
	StatusBadInvalidState               StatusCode = 0x80150000
	StatusBadNoCommunication            StatusCode = 0x80310000
	StatusBadServerHalted               StatusCode = 0x800E0000
	StatusBadConnectionClosed           StatusCode = 0x80AE0000
	StatusBadNotConnected               StatusCode = 0x80AD0000
	StatusGoodSubscriptionTransferred   StatusCode = 0x002D0000
	StatusBadMonitoredItemIDInvalid     StatusCode = 0x80480000
	StatusBadNodeIDUnknown              StatusCode = 0x80340000
	StatusBadNodeIDInvalid              StatusCode = 0x80330000
	StatusBadTooManySubscriptions       StatusCode = 0x80C70000
	StatusBadMonitoringModeInvalid      StatusCode = 0x80420000
	StatusBadFilterNotAllowed           StatusCode = 0x80D70000
	StatusGoodMoreData                  StatusCode = 0x00DB0000
	StatusBadTooManyPublishRequests     StatusCode = 0x80C60000
)

// IsBad reports whether the status code indicates failure.
func (s StatusCode) IsBad() bool { return uint32(s)&0x80000000 != 0 }

// IsGood reports whether the status code indicates success.
func (s StatusCode) IsGood() bool { return uint32(s)&0xC0000000 == 0 }

// IsUncertain reports whether the status code indicates an uncertain result.
func (s StatusCode) IsUncertain() bool { return uint32(s)&0xC0000000 == 0x40000000 }

// Error implements the error interface so a StatusCode can be returned and
// compared directly (`err ==
// ua.StatusBadTimeout`).
func (s StatusCode) Error() string {
	if name, ok := statusCodeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(0x%08X)", uint32(s))
}

var statusCodeNames = map[StatusCode]string{
	StatusOK:                          "Good",
	StatusBadDecodingError:             "BadDecodingError",
	StatusBadEncodingError:             "BadEncodingError",
	StatusBadEncodingLimitsExceeded:    "BadEncodingLimitsExceeded",
	StatusBadUnexpectedError:           "BadUnexpectedError",
	StatusBadTcpInternalError:          "BadTcpInternalError",
	StatusBadTcpEndpointURLInvalid:     "BadTcpEndpointUrlInvalid",
	StatusBadSecurityChecksFailed:      "BadSecurityChecksFailed",
	StatusBadSecureChannelIDInvalid:    "BadSecureChannelIdInvalid",
	StatusBadSecureChannelTokenUnknown: "BadSecureChannelTokenUnknown",
	StatusBadSecureChannelClosed:       "BadSecureChannelClosed",
	StatusBadCertificateInvalid:        "BadCertificateInvalid",
	StatusBadRequestTooLarge:           "BadRequestTooLarge",
	StatusBadResponseTooLarge:          "BadResponseTooLarge",
	StatusBadTimeout:                   "BadTimeout",
	StatusBadTooManySessions:           "BadTooManySessions",
	StatusBadTooManyOperations:         "BadTooManyOperations",
	StatusBadTooManyMonitoredItems:     "BadTooManyMonitoredItems",
	StatusBadSessionIDInvalid:          "BadSessionIdInvalid",
	StatusBadSessionClosed:             "BadSessionClosed",
	StatusBadSessionNotActivated:       "BadSessionNotActivated",
	StatusBadIdentityTokenInvalid:      "BadIdentityTokenInvalid",
	StatusBadIdentityTokenRejected:     "BadIdentityTokenRejected",
	StatusBadUserSignatureInvalid:      "BadUserSignatureInvalid",
	StatusBadSubscriptionIDInvalid:     "BadSubscriptionIdInvalid",
	StatusBadMessageNotAvailable:       "BadMessageNotAvailable",
	StatusBadNoSubscription:            "BadNoSubscription",
	StatusBadContinuationPointInvalid:  "BadContinuationPointInvalid",
	StatusBadNothingToDo:               "BadNothingToDo",
	StatusBadInvalidState:              "BadInvalidState",
	StatusBadServerHalted:              "BadServerHalted",
	StatusBadConnectionClosed:          "BadConnectionClosed",
	StatusBadNotConnected:              "BadNotConnected",
	StatusGoodSubscriptionTransferred:  "GoodSubscriptionTransferred",
	StatusBadMonitoredItemIDInvalid:    "BadMonitoredItemIdInvalid",
	StatusBadNodeIDUnknown:             "BadNodeIdUnknown",
	StatusBadNodeIDInvalid:             "BadNodeIdInvalid",
	StatusBadTooManySubscriptions:      "BadTooManySubscriptions",
	StatusBadMonitoringModeInvalid:     "BadMonitoringModeInvalid",
	StatusBadFilterNotAllowed:          "BadFilterNotAllowed",
	StatusGoodMoreData:                 "GoodMoreData",
	StatusBadTooManyPublishRequests:    "BadTooManyPublishRequests",
}

func (s StatusCode) String() string { return s.Error() }
