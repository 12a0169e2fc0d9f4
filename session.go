// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mellium.im/wamsg/internal/attr"
	"mellium.im/wamsg/internal/log"
	"mellium.im/wamsg/pending"
	"mellium.im/wamsg/stanza"
)

// An Option configures a session.
type Option func(*Session)

// Clock sets the function used for protocol timestamps and for the time that
// pending requests were registered.
// The default is time.Now.
func Clock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Logger replaces the logger built from the session config.
func Logger(l *logrus.Logger) Option {
	return func(s *Session) {
		s.logger = log.Wrap(l)
	}
}

// Fallback sets a handler for inbound stanzas that the session does not
// answer itself.
func Fallback(h Handler) Option {
	return func(s *Session) {
		s.fallback = h
	}
}

// A Session tracks the requests sent over a single connection and answers
// stanzas received on it.
// A Session is safe for concurrent use by multiple goroutines.
type Session struct {
	cfg      Config
	sender   Sender
	fallback Handler
	now      func() time.Time
	logger   *log.Logger

	ids  attr.IDGen
	reqs pending.Registry

	closed struct {
		sync.RWMutex
		b bool
	}
	done chan struct{}
}

// NewSession creates a session that delivers outbound stanzas to sender.
// An empty server in cfg is replaced by DefaultServer.
func NewSession(cfg Config, sender Sender, opts ...Option) (*Session, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		sender: sender,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		if cfg.Log == (LogConfig{}) {
			s.logger = log.Discard()
		} else {
			l, err := log.New(cfg.Log)
			if err != nil {
				return nil, err
			}
			s.logger = l
		}
	}
	s.ids.Now = s.now
	s.reqs.Now = s.now
	return s, nil
}

// Server returns the address that server directed stanzas are sent to.
func (s *Session) Server() string {
	return s.cfg.Server
}

// NextID returns a new message id starting with prefix.
func (s *Session) NextID(prefix string) string {
	return s.ids.Next(prefix)
}

// Timestamp returns the current protocol timestamp, the number of seconds
// since the Unix epoch.
func (s *Session) Timestamp() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}

// Pending returns the registry of requests awaiting a reply.
// It may be used by the transport to cancel or expire requests, for instance
// when the connection is lost.
func (s *Session) Pending() *pending.Registry {
	return &s.reqs
}

// Send hands n to the sender.
func (s *Session) Send(ctx context.Context, n stanza.Node) error {
	s.closed.RLock()
	closed := s.closed.b
	s.closed.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	logger := s.logger.With(log.Fields{"tag": n.Tag(), "id": n.Attr("id")})
	if err := s.sender.Send(ctx, n); err != nil {
		logger.WithError(err).Error("error sending stanza")
		return err
	}
	logger.Debug("sent stanza")
	return nil
}

// Close cancels every pending request and stops the session from sending any
// more stanzas.
// Continuations of canceled requests are never run.
func (s *Session) Close() error {
	s.closed.Lock()
	if s.closed.b {
		s.closed.Unlock()
		return nil
	}
	s.closed.b = true
	close(s.done)
	s.closed.Unlock()

	if n := s.reqs.CancelAll(); n > 0 {
		s.logger.With(log.Fields{"count": n}).Debug("canceled pending requests")
	}
	return s.logger.Close()
}
