// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vwopcua/opcua/ua"
)

func TestDefaultSessionConfigHasNoIdentityTokenSet(t *testing.T) {
	cfg := DefaultSessionConfig()
	assert.Nil(t, cfg.UserIdentityToken)
	assert.Equal(t, DefaultLifetime, cfg.SessionTimeout)
	assert.Equal(t, ua.ApplicationTypeClient, cfg.ClientDescription.ApplicationType)
}
