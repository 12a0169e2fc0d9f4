// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package attr

import (
	"math"
	"strconv"
	"sync"
	"time"
)

// IDGen generates message identifiers of the form prefix-timestamp-counter.
// The timestamp is the generation time in seconds and only aids debugging;
// uniqueness comes from the counter.
// The zero value is ready to use and an IDGen is safe for concurrent use by
// multiple goroutines.
type IDGen struct {
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	m sync.Mutex
	n uint64
}

// Next returns an identifier that starts with prefix and that has never been
// returned by g before.
// If the counter is exhausted, Next panics.
func (g *IDGen) Next(prefix string) string {
	g.m.Lock()
	if g.n >= math.MaxUint64-1 {
		g.m.Unlock()
		panic("attr: message id counter exhausted")
	}
	g.n++
	n := g.n
	g.m.Unlock()

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	b := make([]byte, 0, len(prefix)+32)
	b = append(b, prefix...)
	b = append(b, '-')
	b = strconv.AppendInt(b, now().Unix(), 10)
	b = append(b, '-')
	b = strconv.AppendUint(b, n, 10)
	return string(b)
}
