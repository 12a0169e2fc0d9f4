// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package attr contains unexported functionality related to XML attributes.
package attr // import "mellium.im/wamsg/internal/attr"

import (
	"encoding/xml"
)

// Get returns the index and value of the first attribute with the provided
// local name from a list of attributes.
// If no such attribute exists, the index is -1 and the value is empty.
func Get(attr []xml.Attr, local string) (int, string) {
	for i, a := range attr {
		if a.Name.Local == local {
			return i, a.Value
		}
	}
	return -1, ""
}

// Set returns a copy of attr where the first attribute with the provided local
// name has the given value.
// If no such attribute exists it is appended, so the original order of the
// remaining attributes is preserved.
func Set(attr []xml.Attr, local, value string) []xml.Attr {
	out := make([]xml.Attr, len(attr), len(attr)+1)
	copy(out, attr)
	if idx, _ := Get(out, local); idx != -1 {
		out[idx].Value = value
		return out
	}
	return append(out, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// Remove returns a copy of attr with every attribute with the provided local
// name removed.
func Remove(attr []xml.Attr, local string) []xml.Attr {
	out := make([]xml.Attr, 0, len(attr))
	for _, a := range attr {
		if a.Name.Local != local {
			out = append(out, a)
		}
	}
	return out
}

// Unique returns a copy of attr with duplicate local names collapsed.
// The first occurrence keeps its position and takes the value of the last
// occurrence.
func Unique(attr []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, 0, len(attr))
	for _, a := range attr {
		if a.Name.Local == "" {
			continue
		}
		if idx, _ := Get(out, a.Name.Local); idx != -1 {
			out[idx].Value = a.Value
			continue
		}
		out = append(out, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
	}
	return out
}
