// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package debug implements a tiny opt-in logger used throughout the stack
// for wire-level tracing. It is disabled by default so that importing the
// library does not produce any output.
package debug

import (
	"fmt"
	"log"
	"sync/atomic"
)

var enabled int32

// Enable turns on debug logging.
func Enable() {
	atomic.StoreInt32(&enabled, 1)
}

// Disable turns off debug logging.
func Disable() {
	atomic.StoreInt32(&enabled, 0)
}

// Enabled reports whether debug logging is currently active.
func Enabled() bool {
	return atomic.LoadInt32(&enabled) == 1
}

// Printf logs a debug message if logging is enabled.
func Printf(format string, a ...interface{}) {
	if !Enabled() {
		return
	}
	log.Print(fmt.Sprintf(format, a...))
}
