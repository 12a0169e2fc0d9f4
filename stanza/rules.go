// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"fmt"
)

// MissingAttrError is returned by builders when the inbound node lacks an
// attribute that the reply cannot be addressed or correlated without.
type MissingAttrError struct {
	Tag  string
	Attr string
}

// Error satisfies the error interface.
func (e MissingAttrError) Error() string {
	return fmt.Sprintf("stanza: inbound %q node has no %q attribute", e.Tag, e.Attr)
}

// copyRule moves one attribute from an inbound node to an outbound node.
// A rule without a source emits value instead.
// Optional attributes are omitted from the output when absent on the input (or
// when value is empty), they are never defaulted.
// Rules are applied in order, which is the order of the outbound attributes.
type copyRule struct {
	from     string
	to       string
	value    string
	optional bool
}

var (
	categoryRules = []copyRule{
		{from: "name", to: "name", optional: true},
	}
	// The acknowledgement is sent by the original recipient, so the inbound
	// "to" (if any) becomes the outbound "from".
	notificationAckRules = []copyRule{
		{from: "from", to: "to"},
		{to: "class", value: "notification"},
		{from: "id", to: "id"},
		{from: "type", to: "type", optional: true},
		{from: "to", to: "from", optional: true},
		{from: "participant", to: "participant", optional: true},
	}
)

func receiptRules(t string, read bool) []copyRule {
	var typ string
	if read {
		typ = "read"
	}
	return []copyRule{
		{from: "from", to: "to"},
		{to: "type", value: typ, optional: true},
		{from: "id", to: "id"},
		{to: "t", value: t},
		{from: "participant", to: "participant", optional: true},
	}
}

// A type is only present on acks of read receipts.
func ackRules(t string) []copyRule {
	return []copyRule{
		{from: "from", to: "to"},
		{from: "id", to: "id"},
		{to: "t", value: t},
		{from: "type", to: "type", optional: true},
	}
}

func copyAttrs(dst []xml.Attr, in Node, rules []copyRule) ([]xml.Attr, error) {
	for _, r := range rules {
		if r.from == "" {
			if r.value != "" || !r.optional {
				dst = append(dst, Attr(r.to, r.value))
			}
			continue
		}
		v, ok := in.Get(r.from)
		if !ok {
			if r.optional {
				continue
			}
			return nil, MissingAttrError{Tag: in.Tag(), Attr: r.from}
		}
		dst = append(dst, Attr(r.to, v))
	}
	return dst, nil
}
