// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package wamsgtest provides utilities for testing stanza handling.
package wamsgtest // import "mellium.im/wamsg/internal/wamsgtest"

import (
	"context"
	"encoding/xml"
	"strings"
	"sync"

	"mellium.im/wamsg/stanza"
)

// Decode returns the first element in s as a node.
//
// Decode panics on error for ease of use in testing, where a panic is
// acceptable.
func Decode(s string) stanza.Node {
	n, err := stanza.Decode(xml.NewDecoder(strings.NewReader(s)))
	if err != nil {
		panic(err)
	}
	return n
}

// Recorder is a sender that keeps every stanza sent through it.
// The zero value is ready to use.
type Recorder struct {
	m    sync.Mutex
	sent []stanza.Node
	err  error
}

// Send records n, or returns the error set with Fail.
func (r *Recorder) Send(_ context.Context, n stanza.Node) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

// Fail causes all future calls to Send to return err.
func (r *Recorder) Fail(err error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.err = err
}

// Sent returns the stanzas sent so far.
func (r *Recorder) Sent() []stanza.Node {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]stanza.Node(nil), r.sent...)
}
