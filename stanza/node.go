// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"bytes"
	"encoding/xml"

	"mellium.im/wamsg/internal/attr"
)

// Node is a single element of a stanza tree.
// The zero value is a node with no tag, attributes, or children.
type Node struct {
	tag      string
	attrs    []xml.Attr
	children []Node
	content  []byte
}

// New creates a node with the provided tag, attributes, and children.
//
// Only the local part of each attribute name is used.
// If the same attribute name appears more than once the first occurrence keeps
// its position and the last value wins.
// The attribute and child slices are copied so that later changes by the
// caller are not visible in the node.
func New(tag string, attrs []xml.Attr, children ...Node) Node {
	n := Node{
		tag:   tag,
		attrs: attr.Unique(attrs),
	}
	if len(children) > 0 {
		n.children = make([]Node, len(children))
		copy(n.children, children)
	}
	return n
}

// NewContent creates a leaf node carrying a raw payload.
func NewContent(tag string, attrs []xml.Attr, content []byte) Node {
	n := New(tag, attrs)
	if content != nil {
		n.content = append([]byte(nil), content...)
	}
	return n
}

// Attr is a convenience function for building the attribute list passed to
// New.
func Attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Tag returns the tag name of the node.
func (n Node) Tag() string {
	return n.tag
}

// Get returns the value of the named attribute.
// If the attribute is not present, ok is false and the value is empty.
// An attribute that is present but empty returns ok == true.
func (n Node) Get(name string) (value string, ok bool) {
	idx, v := attr.Get(n.attrs, name)
	return v, idx != -1
}

// Attr returns the value of the named attribute or an empty string if it is
// not present.
// To distinguish an absent attribute from an empty one, use Get.
func (n Node) Attr(name string) string {
	_, v := attr.Get(n.attrs, name)
	return v
}

// Has reports whether the named attribute is present.
func (n Node) Has(name string) bool {
	idx, _ := attr.Get(n.attrs, name)
	return idx != -1
}

// Attrs returns a copy of the attributes in insertion order.
func (n Node) Attrs() []xml.Attr {
	if len(n.attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Children returns a copy of the child nodes in order.
func (n Node) Children() []Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]Node, len(n.children))
	copy(out, n.children)
	return out
}

// Len returns the number of children.
func (n Node) Len() int {
	return len(n.children)
}

// Child returns the child at index i.
// If i is out of range, ok is false.
func (n Node) Child(i int) (child Node, ok bool) {
	if i < 0 || i >= len(n.children) {
		return Node{}, false
	}
	return n.children[i], true
}

// First returns the first child with the provided tag.
func (n Node) First(tag string) (child Node, ok bool) {
	for _, c := range n.children {
		if c.tag == tag {
			return c, true
		}
	}
	return Node{}, false
}

// Content returns a copy of the raw payload of a leaf node.
func (n Node) Content() []byte {
	if n.content == nil {
		return nil
	}
	return append([]byte(nil), n.content...)
}

// WithAttr returns a copy of n where the named attribute has the given value.
// An existing attribute keeps its position, a new one is appended.
func (n Node) WithAttr(name, value string) Node {
	n.attrs = attr.Set(n.attrs, name, value)
	return n
}

// WithoutAttr returns a copy of n with the named attribute removed.
func (n Node) WithoutAttr(name string) Node {
	n.attrs = attr.Remove(n.attrs, name)
	return n
}

// WithChildren returns a copy of n with its children replaced.
func (n Node) WithChildren(children ...Node) Node {
	n.children = nil
	if len(children) > 0 {
		n.children = make([]Node, len(children))
		copy(n.children, children)
	}
	return n
}

// Equal reports whether n and o have the same tag, attributes (in the same
// order), content, and recursively equal children.
func (n Node) Equal(o Node) bool {
	if n.tag != o.tag || len(n.attrs) != len(o.attrs) || len(n.children) != len(o.children) {
		return false
	}
	for i, a := range n.attrs {
		if a.Name.Local != o.attrs[i].Name.Local || a.Value != o.attrs[i].Value {
			return false
		}
	}
	if !bytes.Equal(n.content, o.content) {
		return false
	}
	for i, c := range n.children {
		if !c.Equal(o.children[i]) {
			return false
		}
	}
	return true
}
