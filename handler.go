// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"context"
	"sync"

	"mellium.im/wamsg/stanza"
	"mellium.im/xmlstream"
)

// A Sender delivers stanzas to the transport.
// Send must be safe for concurrent use by multiple goroutines.
type Sender interface {
	Send(ctx context.Context, n stanza.Node) error
}

// The SenderFunc type is an adapter to allow the use of ordinary functions as
// senders.
// If f is a function with the appropriate signature, SenderFunc(f) is a
// Sender that calls f.
type SenderFunc func(ctx context.Context, n stanza.Node) error

// Send calls f(ctx, n).
func (f SenderFunc) Send(ctx context.Context, n stanza.Node) error {
	return f(ctx, n)
}

// TokenSender returns a Sender that writes the XML form of each stanza to w.
// If w is an xmlstream.Flusher it is flushed after every stanza.
// It is mostly useful for debugging and tests since the wire encoding is
// handled by the transport's own codec.
func TokenSender(w xmlstream.TokenWriter) Sender {
	var m sync.Mutex
	return SenderFunc(func(ctx context.Context, n stanza.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Lock()
		defer m.Unlock()
		_, err := n.WriteXML(w)
		if err != nil {
			return err
		}
		if wf, ok := w.(xmlstream.Flusher); ok {
			return wf.Flush()
		}
		return nil
	})
}

// A Handler responds to inbound stanzas that are neither replies to a pending
// request nor one of the stanzas that the session answers itself.
type Handler interface {
	HandleNode(ctx context.Context, n stanza.Node) error
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions as
// handlers.
// If f is a function with the appropriate signature, HandlerFunc(f) is a
// Handler that calls f.
type HandlerFunc func(ctx context.Context, n stanza.Node) error

// HandleNode calls f(ctx, n).
func (f HandlerFunc) HandleNode(ctx context.Context, n stanza.Node) error {
	return f(ctx, n)
}
