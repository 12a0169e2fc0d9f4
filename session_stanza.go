// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"context"

	"mellium.im/wamsg/stanza"
)

// ClearDirty sends a request that clears the dirty categories listed by the
// "category" children of in.
// It returns the message id of the request.
func (s *Session) ClearDirty(ctx context.Context, in stanza.Node) (string, error) {
	id := s.NextID(stanza.PrefixClearDirty)
	return id, s.Send(ctx, stanza.ClearDirty(s.cfg.Server, id, in))
}

// Pong replies to the ping with the provided message id.
func (s *Session) Pong(ctx context.Context, id string) error {
	return s.Send(ctx, stanza.Pong(s.cfg.Server, id))
}

// SendReceipt sends a delivery receipt for the inbound message msg.
// If msg has no "from" or "id" attribute a *UsageError is returned and nothing
// is sent.
func (s *Session) SendReceipt(ctx context.Context, msg stanza.Node) error {
	return s.sendReceipt(ctx, msg, false)
}

// SendReadReceipt is like SendReceipt except that the receipt marks the
// message as read.
func (s *Session) SendReadReceipt(ctx context.Context, msg stanza.Node) error {
	return s.sendReceipt(ctx, msg, true)
}

func (s *Session) sendReceipt(ctx context.Context, msg stanza.Node, read bool) error {
	n, err := stanza.Receipt(msg, s.Timestamp(), read)
	if err != nil {
		return usage("receipt", err)
	}
	return s.Send(ctx, n)
}

// AckNotification acknowledges the inbound notification n.
// If n has no "from" or "id" attribute a *UsageError is returned and nothing
// is sent.
func (s *Session) AckNotification(ctx context.Context, n stanza.Node) error {
	ack, err := stanza.NotificationAck(n)
	if err != nil {
		return usage("notification ack", err)
	}
	return s.Send(ctx, ack)
}

// AckReceipt acknowledges the inbound receipt n.
// If n has no "from" or "id" attribute a *UsageError is returned and nothing
// is sent.
func (s *Session) AckReceipt(ctx context.Context, n stanza.Node) error {
	ack, err := stanza.Ack(n, s.Timestamp())
	if err != nil {
		return usage("receipt ack", err)
	}
	return s.Send(ctx, ack)
}
