// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package browser

import (
	"context"

	"github.com/vwopcua/opcua/ua"
)

// Session is the collaborator a Browser needs: something that can issue
// Browse and BrowseNext service calls over an already-open channel. A
// top-level client/session type satisfies this without the browser package
// needing to know anything about secure channels or chunking.
type Session interface {
	Browse(ctx context.Context, req *ua.BrowseRequest) (*ua.BrowseResponse, error)
	BrowseNext(ctx context.Context, req *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error)
}
