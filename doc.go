// Copyright 2014 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package wamsg builds the stanzas of a mobile messaging client and matches
// the replies that arrive for them.
//
// A Session owns the ambient configuration (such as the server address), the
// generator for message identifiers, and the registry of requests that are
// waiting on a reply.
// Outgoing stanzas are handed to a Sender supplied by the transport, and every
// inbound stanza read by the transport is passed to Session.Handle which
// either completes a pending request or answers the stanza (pings,
// notifications, receipts, and messages).
//
// The transport, the binary wire codec, and authentication are not part of
// this package.
package wamsg // import "mellium.im/wamsg"
