// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ns provides namespace constants that are used by the wamsg package
// and other internal packages.
package ns // import "mellium.im/wamsg/internal/ns"

// List of commonly used namespaces.
const (
	Account = "urn:xmpp:whatsapp:account"
	Dirty   = "urn:xmpp:whatsapp:dirty"
	Ping    = "urn:xmpp:ping"
	Props   = "w"
)
