// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package attr

import (
	"math"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNextFormat(t *testing.T) {
	g := IDGen{Now: func() time.Time { return time.Unix(1400000000, 0) }}
	if id := g.Next("getproperties"); id != "getproperties-1400000000-1" {
		t.Errorf("Wrong id: want=%q, got=%q", "getproperties-1400000000-1", id)
	}
	if id := g.Next("cleardirty"); id != "cleardirty-1400000000-2" {
		t.Errorf("Wrong id: want=%q, got=%q", "cleardirty-1400000000-2", id)
	}
}

func TestNextSameSecondDistinct(t *testing.T) {
	g := IDGen{Now: func() time.Time { return time.Unix(0, 0) }}
	a, b := g.Next("x"), g.Next("x")
	if a == b {
		t.Errorf("Expected distinct ids, got %q twice", a)
	}
}

func TestNextConcurrent(t *testing.T) {
	const n = 500
	var (
		g   IDGen
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id := g.Next("x")
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
			if !strings.HasPrefix(id, "x") {
				t.Errorf("Expected prefix x, got %q", id)
			}
		}()
	}
	wg.Wait()
	if len(ids) != n {
		t.Errorf("Expected %d distinct ids, got %d", n, len(ids))
	}
}

func TestNextPanicsOnExhaustion(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Next to panic when the counter is exhausted")
		}
	}()
	g := IDGen{n: math.MaxUint64 - 1}
	g.Next("x")
}
