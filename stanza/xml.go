// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"mellium.im/wamsg/internal/attr"
	"mellium.im/xmlstream"
)

// ErrNoElement is returned by Decode if the token stream ends before a start
// element is read.
var ErrNoElement = errors.New("stanza: no element found in token stream")

// TokenReader returns a stream of XML tokens representing n.
// It satisfies the xmlstream.Marshaler interface.
//
// The XML form is meant for logging, debugging, and tests; the wire encoding
// is handled by a separate codec.
func (n Node) TokenReader() xml.TokenReader {
	start := xml.StartElement{Name: xml.Name{Local: n.tag}, Attr: n.Attrs()}
	inner := make([]xml.TokenReader, 0, len(n.children)+1)
	if len(n.content) > 0 {
		inner = append(inner, xmlstream.Token(xml.CharData(n.Content())))
	}
	for _, c := range n.children {
		inner = append(inner, c.TokenReader())
	}
	return xmlstream.Wrap(xmlstream.MultiReader(inner...), start)
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (n Node) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, n.TokenReader())
}

// MarshalXML satisfies the xml.Marshaler interface.
// The provided start element is ignored, the node's own tag is always used.
func (n Node) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := n.WriteXML(e)
	if err != nil {
		return err
	}
	return e.Flush()
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	node, err := decodeElement(d, start, nil)
	if err != nil {
		return err
	}
	*n = node
	return nil
}

// String returns the XML form of n.
func (n Node) String() string {
	var buf strings.Builder
	e := xml.NewEncoder(&buf)
	if _, err := n.WriteXML(e); err != nil {
		return ""
	}
	if err := e.Flush(); err != nil {
		return ""
	}
	return buf.String()
}

// Decode reads the first element from r and returns it as a node.
// Tokens before the first start element (such as a declaration or whitespace)
// are skipped.
// Character data that consists only of whitespace is dropped, any other
// character data becomes the node content.
func Decode(r xml.TokenReader) (Node, error) {
	for {
		tok, err := r.Token()
		if tok == nil && err != nil {
			if err == io.EOF {
				return Node{}, ErrNoElement
			}
			return Node{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeElement(r, start, nil)
		}
		if err != nil {
			if err == io.EOF {
				return Node{}, ErrNoElement
			}
			return Node{}, err
		}
	}
}

// xmlURL is the namespace that the reserved "xml" prefix is bound to.
const xmlURL = "http://www.w3.org/XML/1998/namespace"

// nsDecl is a namespace declaration in scope of an element.
// The prefix is empty for a default namespace.
type nsDecl struct {
	prefix string
	uri    string
}

// declare returns scope extended with the declarations in attrs.
// The result never shares storage with scope so that siblings do not see each
// other's declarations.
func declare(scope []nsDecl, attrs []xml.Attr) []nsDecl {
	scope = scope[:len(scope):len(scope)]
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			scope = append(scope, nsDecl{prefix: a.Name.Local, uri: a.Value})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope = append(scope, nsDecl{uri: a.Value})
		}
	}
	return scope
}

// qualify returns the name as it was written in the document.
// Decoders replace prefixes with the namespace they are bound to, so the prefix
// is looked up again by namespace in the declarations in scope.
// Attributes are never in the default namespace.
func qualify(scope []nsDecl, name xml.Name, element bool) string {
	switch name.Space {
	case "":
		return name.Local
	case "xmlns", "xml":
		return name.Space + ":" + name.Local
	case xmlURL:
		return "xml:" + name.Local
	}
	if element && defaultSpace(scope) == name.Space {
		return name.Local
	}
	for i := len(scope) - 1; i >= 0; i-- {
		d := scope[i]
		if d.prefix == "" || d.uri != name.Space || shadowed(scope[i+1:], d.prefix) {
			continue
		}
		return d.prefix + ":" + name.Local
	}
	// An undeclared prefix is left untranslated by the decoder.
	if strings.ContainsAny(name.Space, ":/") {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func defaultSpace(scope []nsDecl) string {
	for i := len(scope) - 1; i >= 0; i-- {
		if scope[i].prefix == "" {
			return scope[i].uri
		}
	}
	return ""
}

func shadowed(inner []nsDecl, prefix string) bool {
	for _, d := range inner {
		if d.prefix == prefix {
			return true
		}
	}
	return false
}

func decodeElement(r xml.TokenReader, start xml.StartElement, scope []nsDecl) (Node, error) {
	scope = declare(scope, start.Attr)
	n := Node{
		tag:   qualify(scope, start.Name, true),
		attrs: decodeAttrs(scope, start.Attr),
	}
	var content []byte
	for {
		tok, err := r.Token()
		if tok == nil && err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Node{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(r, t, scope)
			if err != nil {
				return Node{}, err
			}
			n.children = append(n.children, child)
		case xml.CharData:
			content = append(content, t...)
		case xml.EndElement:
			if len(bytes.TrimSpace(content)) > 0 {
				n.content = content
			}
			return n, nil
		}
	}
}

func decodeAttrs(scope []nsDecl, in []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, 0, len(in))
	for _, a := range in {
		out = append(out, xml.Attr{Name: xml.Name{Local: qualify(scope, a.Name, false)}, Value: a.Value})
	}
	out = attr.Unique(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
