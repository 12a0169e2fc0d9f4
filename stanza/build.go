// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"

	"mellium.im/wamsg/internal/ns"
)

// Message id prefixes used for requests that are built by this package.
const (
	PrefixClearDirty     = "cleardirty"
	PrefixProperties     = "getproperties"
	PrefixServicePricing = "get_service_pricing_"
)

// Default values for the service pricing query.
const (
	DefaultLanguage = "en"
	DefaultCountry  = "us"
)

// IQType is the type of an IQ stanza.
type IQType string

const (
	// GetIQ is used to query another entity for information.
	GetIQ IQType = "get"

	// SetIQ is used to provide data to another entity, set new values, and
	// replace existing values.
	SetIQ IQType = "set"

	// ResultIQ is sent in response to a successful get or set IQ.
	ResultIQ IQType = "result"

	// ErrorIQ is sent to report that an error occurred during the delivery or
	// processing of a get or set IQ.
	ErrorIQ IQType = "error"
)

// IQ returns an iq node with the provided id, type, and destination.
func IQ(id string, typ IQType, to string, payload ...Node) Node {
	return New("iq", []xml.Attr{
		Attr("id", id),
		Attr("type", string(typ)),
		Attr("to", to),
	}, payload...)
}

// ClearDirty builds a request that clears the dirty categories listed by the
// "category" children of in.
// Children with any other tag are ignored and an input without categories
// results in an empty (but valid) request.
func ClearDirty(server, id string, in Node) Node {
	var categories []Node
	for _, child := range in.children {
		if child.tag != "category" {
			continue
		}
		// Rules without required attributes never fail.
		attrs, _ := copyAttrs(nil, child, categoryRules)
		categories = append(categories, New("category", attrs))
	}
	clean := New("clean", []xml.Attr{Attr("xmlns", ns.Dirty)}, categories...)
	return IQ(id, SetIQ, server, clean)
}

// Pong builds the reply to a ping.
// The id of the ping is reused verbatim since this is a response and not a
// new request.
func Pong(server, id string) Node {
	return New("iq", []xml.Attr{
		Attr("to", server),
		Attr("id", id),
		Attr("type", string(ResultIQ)),
	})
}

// Receipt builds a receipt for the inbound message in.
// t is the protocol timestamp (seconds since the Unix epoch).
// If read is true the receipt is marked as a read receipt, otherwise it is a
// plain delivery receipt.
// The participant attribute is only included if in carries one.
func Receipt(in Node, t string, read bool) (Node, error) {
	attrs, err := copyAttrs(nil, in, receiptRules(t, read))
	if err != nil {
		return Node{}, err
	}
	return New("receipt", attrs), nil
}

// NotificationAck builds the acknowledgement for the inbound notification in.
func NotificationAck(in Node) (Node, error) {
	attrs, err := copyAttrs(nil, in, notificationAckRules)
	if err != nil {
		return Node{}, err
	}
	return New("ack", attrs), nil
}

// Ack builds the acknowledgement for the inbound receipt in.
// t is the protocol timestamp (seconds since the Unix epoch).
// The type attribute is only included if in carries one.
func Ack(in Node, t string) (Node, error) {
	attrs, err := copyAttrs(nil, in, ackRules(t))
	if err != nil {
		return Node{}, err
	}
	return New("ack", attrs), nil
}

// ServerProperties builds a request for the server properties.
func ServerProperties(server, id string) Node {
	return IQ(id, GetIQ, server,
		New("props", []xml.Attr{Attr("xmlns", ns.Props)}),
	)
}

// ServicePricing builds a request for the service pricing.
// If lang or country are empty, DefaultLanguage and DefaultCountry are used.
func ServicePricing(server, id, lang, country string) Node {
	if lang == "" {
		lang = DefaultLanguage
	}
	if country == "" {
		country = DefaultCountry
	}
	return IQ(id, GetIQ, server,
		New("pricing", []xml.Attr{
			Attr("xmlns", ns.Account),
			Attr("lg", lang),
			Attr("lc", country),
		}),
	)
}
