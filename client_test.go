// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vwopcua/opcua/ua"
	"github.com/vwopcua/opcua/uapolicy"
)

func TestAnonymousPolicyIDPrefersNoneSecurityEndpoint(t *testing.T) {
	endpoints := []ua.EndpointDescription{
		{
			SecurityMode:      ua.MessageSecurityModeSignAndEncrypt,
			SecurityPolicyURI: ua.NewString(string(uapolicy.URINone)),
			UserIdentityTokens: []ua.UserTokenPolicy{
				{TokenType: ua.UserTokenTypeAnonymous, PolicyID: ua.NewString("wrong-endpoint")},
			},
		},
		{
			SecurityMode:      ua.MessageSecurityModeNone,
			SecurityPolicyURI: ua.NewString(string(uapolicy.URINone)),
			UserIdentityTokens: []ua.UserTokenPolicy{
				{TokenType: ua.UserTokenTypeUserName, PolicyID: ua.NewString("username")},
				{TokenType: ua.UserTokenTypeAnonymous, PolicyID: ua.NewString("anon-policy")},
			},
		},
	}

	assert.Equal(t, "anon-policy", anonymousPolicyID(endpoints))
}

func TestAnonymousPolicyIDFallsBackWhenNoneAbsent(t *testing.T) {
	endpoints := []ua.EndpointDescription{
		{
			SecurityMode:      ua.MessageSecurityModeSign,
			SecurityPolicyURI: ua.NewString("http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"),
			UserIdentityTokens: []ua.UserTokenPolicy{
				{TokenType: ua.UserTokenTypeAnonymous, PolicyID: ua.NewString("ignored")},
			},
		},
	}

	assert.Equal(t, defaultAnonymousPolicyID, anonymousPolicyID(endpoints))
}

func TestSafeAssignRejectsMismatchedType(t *testing.T) {
	var res *ua.ReadResponse
	err := safeAssign(&ua.WriteResponse{}, &res)
	require.Error(t, err)

	var invalid InvalidResponseTypeError
	require.ErrorAs(t, err, &invalid)
}

func TestSafeAssignCopiesMatchingType(t *testing.T) {
	var res *ua.GetEndpointsResponse
	want := &ua.GetEndpointsResponse{Endpoints: []ua.EndpointDescription{{SecurityLevel: 1}}}
	require.NoError(t, safeAssign(want, &res))
	assert.Same(t, want, res)
}
