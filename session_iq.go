// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"mellium.im/wamsg/internal/log"
	"mellium.im/wamsg/pending"
	"mellium.im/wamsg/stanza"
)

// Request sends n and arranges for f to be called with the reply.
// If n has no id, one is allocated using the tag of n as the prefix.
// The id of the request is returned.
//
// If another request with the same id is still pending a *UsageError is
// returned and nothing is sent.
// If sending fails the request is canceled and f is never called, unless the
// reply was already handled before the sender reported the failure, in which
// case the request succeeded and no error is returned.
// Request does not wait for the reply; f is run on the goroutine that passes
// the reply to Handle.
func (s *Session) Request(ctx context.Context, n stanza.Node, f pending.Func) (string, error) {
	id, ok := n.Get("id")
	if !ok || id == "" {
		id = s.NextID(n.Tag())
		n = n.WithAttr("id", id)
	}
	err := s.reqs.Register(id, f)
	if err != nil {
		return id, usage("request", err)
	}
	err = s.Send(ctx, n)
	if err != nil {
		if !s.reqs.Cancel(id) {
			s.logger.With(log.Fields{"id": id}).WithError(err).Debug("reply handled before send failed")
			return id, nil
		}
		return id, fmt.Errorf("wamsg: error sending request %s: %w", id, err)
	}
	return id, nil
}

// RequestServerProperties requests the server properties and arranges for f
// to be called with the reply.
// For more information see Request.
func (s *Session) RequestServerProperties(ctx context.Context, f pending.Func) (string, error) {
	id := s.NextID(stanza.PrefixProperties)
	return s.Request(ctx, stanza.ServerProperties(s.cfg.Server, id), f)
}

// RequestServicePricing requests the service pricing for the provided
// language (ISO 639) and country (ISO 3166) codes and arranges for f to be
// called with the reply.
// Empty codes default to stanza.DefaultLanguage and stanza.DefaultCountry.
// Codes that are not well formed result in a *UsageError.
// For more information see Request.
func (s *Session) RequestServicePricing(ctx context.Context, lang, country string, f pending.Func) (string, error) {
	if lang != "" {
		if _, err := language.ParseBase(lang); err != nil {
			return "", usage("service pricing", fmt.Errorf("bad language %q: %w", lang, err))
		}
	}
	if country != "" {
		if _, err := language.ParseRegion(country); err != nil {
			return "", usage("service pricing", fmt.Errorf("bad country %q: %w", country, err))
		}
	}
	id := s.NextID(stanza.PrefixServicePricing)
	return s.Request(ctx, stanza.ServicePricing(s.cfg.Server, id, lang, country), f)
}

// ServerProperties requests the server properties and blocks until they are
// received or the context is done.
func (s *Session) ServerProperties(ctx context.Context) ([]stanza.Property, error) {
	reply, err := s.wait(ctx, func(ctx context.Context, f pending.Func) (string, error) {
		return s.RequestServerProperties(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return stanza.ParseProperties(reply), nil
}

// ServicePricing requests the service pricing and blocks until it is received
// or the context is done.
// For more information see RequestServicePricing.
func (s *Session) ServicePricing(ctx context.Context, lang, country string) (stanza.Pricing, error) {
	reply, err := s.wait(ctx, func(ctx context.Context, f pending.Func) (string, error) {
		return s.RequestServicePricing(ctx, lang, country, f)
	})
	if err != nil {
		return stanza.Pricing{}, err
	}
	p, ok := stanza.ParsePricing(reply)
	if !ok {
		return p, fmt.Errorf("wamsg: no pricing in reply %s", reply.Attr("id"))
	}
	return p, nil
}

// wait issues a request and blocks until the reply arrives.
// If the context is done first the request is canceled, any reply received
// later will be treated as unsolicited.
// Error replies are returned as a stanza.Error.
func (s *Session) wait(ctx context.Context, req func(context.Context, pending.Func) (string, error)) (stanza.Node, error) {
	if _, ok := ctx.Deadline(); !ok && s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	c := make(chan stanza.Node, 1)
	id, err := req(ctx, func(reply stanza.Node) {
		c <- reply
	})
	if err != nil {
		return stanza.Node{}, err
	}

	select {
	case reply := <-c:
		return reply, replyErr(reply)
	case <-s.done:
		select {
		case reply := <-c:
			return reply, replyErr(reply)
		default:
			return stanza.Node{}, ErrSessionClosed
		}
	case <-ctx.Done():
		if s.reqs.Cancel(id) {
			s.logger.With(log.Fields{"id": id}).Debug("request canceled before a reply arrived")
			return stanza.Node{}, ctx.Err()
		}
		// The reply may have won the race with cancelation.
		select {
		case reply := <-c:
			return reply, replyErr(reply)
		default:
			return stanza.Node{}, ctx.Err()
		}
	}
}

func replyErr(reply stanza.Node) error {
	if e, ok := stanza.ParseError(reply); ok {
		return e
	}
	return nil
}
