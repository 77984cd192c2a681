// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package errors provides helpers for constructing plain errors without
// having to import both "errors" and "fmt" at every call site.
package errors

import "fmt"

// Errorf creates a new error from the given format and arguments, exactly
// like fmt.Errorf, but without requiring callers to import "fmt" just for
// error construction.
func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}

// New creates a new error from a plain string.
func New(text string) error {
	return fmt.Errorf("%s", text)
}

// Wrap annotates err with a message. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), err)
}
