// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package pending matches replies to the requests that are waiting on them.
//
// Each outstanding request is registered under its message id together with a
// continuation.
// When a node carrying the same id arrives the continuation is removed and run
// exactly once.
// Replies may arrive in any order; they are matched solely by id.
package pending // import "mellium.im/wamsg/pending"

import (
	"errors"
	"sort"
	"sync"
	"time"

	"mellium.im/wamsg/stanza"
)

// ErrDuplicateID is returned by Register if a request with the same id is
// already pending.
var ErrDuplicateID = errors.New("pending: a request with this id is already pending")

// Func is a continuation that is run with the reply to a request.
type Func func(reply stanza.Node)

type entry struct {
	f       Func
	created time.Time
}

// Registry holds the continuations of requests that are awaiting a reply.
// The zero value is ready to use and a Registry is safe for concurrent use by
// multiple goroutines.
type Registry struct {
	// Now returns the current time and is used to timestamp new entries.
	// If nil, time.Now is used.
	Now func() time.Time

	m       sync.Mutex
	entries map[string]entry
}

func (r *Registry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Register stores f under id.
// If a request with the same id is still pending, ErrDuplicateID is returned
// and the existing entry is left untouched.
// A nil f is allowed; the reply is then simply discarded.
func (r *Registry) Register(id string, f Func) error {
	created := r.now()

	r.m.Lock()
	defer r.m.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]entry)
	}
	if _, ok := r.entries[id]; ok {
		return ErrDuplicateID
	}
	r.entries[id] = entry{f: f, created: created}
	return nil
}

// Resolve removes the entry for id and runs its continuation with reply.
// It reports whether an entry was found.
// If no entry exists (the reply was unsolicited, a duplicate, or arrived after
// the request was canceled) Resolve does nothing and returns false.
//
// The entry is removed before the continuation is run, and the continuation is
// run on the calling goroutine without any locks held, so it may safely
// register new requests.
func (r *Registry) Resolve(id string, reply stanza.Node) bool {
	r.m.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.m.Unlock()

	if !ok {
		return false
	}
	if e.f != nil {
		e.f(reply)
	}
	return true
}

// Cancel removes the entry for id without running its continuation and
// reports whether an entry was present.
func (r *Registry) Cancel(id string) bool {
	r.m.Lock()
	defer r.m.Unlock()
	_, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return ok
}

// Pending reports whether a request with the given id is awaiting a reply.
func (r *Registry) Pending(id string) bool {
	r.m.Lock()
	defer r.m.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of pending requests.
func (r *Registry) Len() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.entries)
}

// Expire cancels every request registered before the provided time and returns
// their ids, oldest first.
func (r *Registry) Expire(before time.Time) []string {
	type expired struct {
		id      string
		created time.Time
	}
	var out []expired

	r.m.Lock()
	for id, e := range r.entries {
		if e.created.Before(before) {
			out = append(out, expired{id: id, created: e.created})
			delete(r.entries, id)
		}
	}
	r.m.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].created.Equal(out[j].created) {
			return out[i].id < out[j].id
		}
		return out[i].created.Before(out[j].created)
	})
	ids := make([]string, 0, len(out))
	for _, e := range out {
		ids = append(ids, e.id)
	}
	return ids
}

// CancelAll cancels every pending request and returns how many there were.
func (r *Registry) CancelAll() int {
	r.m.Lock()
	defer r.m.Unlock()
	n := len(r.entries)
	r.entries = nil
	return n
}
