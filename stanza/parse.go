// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"mellium.im/wamsg/internal/ns"
)

// IsPing reports whether n is a ping request from the server.
// The ping namespace may be carried by the iq itself or by a "ping" child.
func IsPing(n Node) bool {
	if n.tag != "iq" || n.Attr("type") != string(GetIQ) {
		return false
	}
	if n.Attr("xmlns") == ns.Ping {
		return true
	}
	p, ok := n.First("ping")
	return ok && p.Attr("xmlns") == ns.Ping
}

// Property is a single server property.
type Property struct {
	Name  string
	Value string
}

// ParseProperties returns the properties from a server properties reply in
// the order they were received.
// n may either be the iq reply or its "props" child.
// Children of the props element that are not "prop" elements or have no name
// are skipped.
func ParseProperties(n Node) []Property {
	if n.tag != "props" {
		props, ok := n.First("props")
		if !ok {
			return nil
		}
		n = props
	}
	var out []Property
	for _, c := range n.children {
		if c.tag != "prop" {
			continue
		}
		name, ok := c.Get("name")
		if !ok {
			continue
		}
		out = append(out, Property{Name: name, Value: c.Attr("value")})
	}
	return out
}

// Pricing is the service pricing returned by the server.
type Pricing struct {
	Price      string
	Cost       string
	Currency   string
	Expiration string
}

// ParsePricing returns the pricing from a service pricing reply.
// n may either be the iq reply or its "pricing" child.
// If no pricing element is present, ok is false.
func ParsePricing(n Node) (p Pricing, ok bool) {
	if n.tag != "pricing" {
		n, ok = n.First("pricing")
		if !ok {
			return p, false
		}
	}
	return Pricing{
		Price:      n.Attr("price"),
		Cost:       n.Attr("cost"),
		Currency:   n.Attr("currency"),
		Expiration: n.Attr("expiration"),
	}, true
}

// Error is the error carried by an iq reply of type "error".
type Error struct {
	Code string
	Text string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	switch {
	case e.Code == "" && e.Text == "":
		return "stanza: error reply"
	case e.Text == "":
		return "stanza: error reply " + e.Code
	case e.Code == "":
		return "stanza: error reply: " + e.Text
	}
	return "stanza: error reply " + e.Code + ": " + e.Text
}

// ParseError returns the error from an iq reply.
// If n is not an error reply, ok is false.
// An error reply without an "error" child returns the zero Error.
func ParseError(n Node) (e Error, ok bool) {
	if n.tag != "iq" || n.Attr("type") != string(ErrorIQ) {
		return e, false
	}
	errNode, found := n.First("error")
	if !found {
		return e, true
	}
	return Error{
		Code: errNode.Attr("code"),
		Text: errNode.Attr("text"),
	}, true
}
