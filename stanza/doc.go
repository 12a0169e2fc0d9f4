// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package stanza contains the tree model used for every protocol message and
// functions that build the stanzas sent by a client.
//
// A Node is a tag with an ordered list of attributes and an ordered list of
// child nodes (or, for leaf payloads, raw content).
// Nodes are immutable: the accessors return copies and every "modification"
// returns a new node.
//
// The builders in this package are pure.
// Ambient values such as the server address, the current timestamp, and
// freshly allocated message identifiers are passed in by the caller (normally
// a wamsg.Session) so that the output is fully determined by the input.
package stanza // import "mellium.im/wamsg/stanza"
