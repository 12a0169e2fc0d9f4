// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"context"
	"errors"

	"mellium.im/wamsg/internal/log"
	"mellium.im/wamsg/stanza"
)

// Handle processes an inbound stanza read by the transport.
//
// If the stanza carries the id of a pending request, the continuation of that
// request is run.
// Otherwise the session answers it:
//
//   - pings are answered with a pong
//   - notifications are acknowledged
//   - receipts are acknowledged
//   - messages are answered with a delivery receipt if AutoReceipt is set
//   - "dirty" children of an "ib" stanza are cleared
//
// Anything else is passed to the fallback handler or, if there is none, logged
// and dropped.
// Stanzas that cannot be answered because they lack addressing attributes are
// logged and dropped; they are not returned as errors since they originate
// from the remote side.
func (s *Session) Handle(ctx context.Context, n stanza.Node) error {
	logger := s.logger.With(log.Fields{"tag": n.Tag(), "id": n.Attr("id")})
	if id, ok := n.Get("id"); ok && s.reqs.Resolve(id, n) {
		logger.Debug("resolved pending request")
		return nil
	}

	var err error
	switch {
	case stanza.IsPing(n):
		err = s.Pong(ctx, n.Attr("id"))
	case n.Tag() == "notification":
		err = s.AckNotification(ctx, n)
	case n.Tag() == "receipt":
		err = s.AckReceipt(ctx, n)
	case n.Tag() == "message" && s.cfg.AutoReceipt:
		err = s.SendReceipt(ctx, n)
	case n.Tag() == "ib":
		err = s.handleIB(ctx, n)
	case n.Tag() == "iq" && n.Attr("type") == string(stanza.ResultIQ),
		n.Tag() == "iq" && n.Attr("type") == string(stanza.ErrorIQ):
		// A reply that did not match anything pending is unsolicited, a
		// duplicate, or arrived after its request was canceled.
		logger.Debug("dropping unsolicited reply")
		return nil
	case s.fallback != nil:
		return s.fallback.HandleNode(ctx, n)
	default:
		logger.Debug("dropping unhandled stanza")
		return nil
	}

	var uErr *UsageError
	if errors.As(err, &uErr) {
		logger.WithError(err).Warn("dropping malformed stanza")
		return nil
	}
	return err
}

func (s *Session) handleIB(ctx context.Context, n stanza.Node) error {
	handled := false
	for _, c := range n.Children() {
		if c.Tag() != "dirty" {
			continue
		}
		handled = true
		if _, err := s.ClearDirty(ctx, c); err != nil {
			return err
		}
	}
	if !handled && s.fallback != nil {
		return s.fallback.HandleNode(ctx, n)
	}
	return nil
}
