// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg_test

import (
	"context"
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"mellium.im/wamsg"
	"mellium.im/wamsg/internal/wamsgtest"
	"mellium.im/wamsg/pending"
	"mellium.im/wamsg/stanza"
)

var epoch = time.Unix(1400000000, 0)

func newSession(t *testing.T, opts ...wamsg.Option) (*wamsg.Session, *wamsgtest.Recorder) {
	t.Helper()
	r := &wamsgtest.Recorder{}
	cfg := wamsg.DefaultConfig()
	cfg.Log = wamsg.LogConfig{}
	opts = append([]wamsg.Option{wamsg.Clock(func() time.Time { return epoch })}, opts...)
	s, err := wamsg.NewSession(cfg, r, opts...)
	if err != nil {
		t.Fatalf("error creating session: %v", err)
	}
	return s, r
}

func TestNewSessionDefaults(t *testing.T) {
	s, err := wamsg.NewSession(wamsg.Config{}, &wamsgtest.Recorder{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Server() != wamsg.DefaultServer {
		t.Errorf("Wrong server: want=%q, got=%q", wamsg.DefaultServer, s.Server())
	}
	if _, err := wamsg.NewSession(wamsg.Config{Server: "bad server!"}, &wamsgtest.Recorder{}); err == nil {
		t.Error("Expected invalid server to be rejected")
	}
}

func TestTimestamp(t *testing.T) {
	s, _ := newSession(t)
	if ts := s.Timestamp(); ts != "1400000000" {
		t.Errorf("Wrong timestamp: want=%q, got=%q", "1400000000", ts)
	}
}

func TestNextIDPrefix(t *testing.T) {
	s, _ := newSession(t)
	const n = 100
	var (
		wg  sync.WaitGroup
		m   sync.Mutex
		ids = make(map[string]struct{})
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id := s.NextID("x")
			if !strings.HasPrefix(id, "x") {
				t.Errorf("Wrong prefix: %q", id)
			}
			m.Lock()
			ids[id] = struct{}{}
			m.Unlock()
		}()
	}
	wg.Wait()
	if len(ids) != n {
		t.Errorf("Expected %d distinct ids, got %d", n, len(ids))
	}
}

var handleTests = [...]struct {
	in  string
	out string
}{
	0: {
		in:  `<iq from="s.whatsapp.net" id="ping-1" type="get" xmlns="urn:xmpp:ping"/>`,
		out: `<iq to="s.whatsapp.net" id="ping-1" type="result"></iq>`,
	},
	1: {
		in:  `<notification from="a" to="b" id="n1" type="t"/>`,
		out: `<ack to="a" class="notification" id="n1" type="t" from="b"></ack>`,
	},
	2: {
		in:  `<receipt from="123" id="m1" type="read"/>`,
		out: `<ack to="123" id="m1" t="1400000000" type="read"></ack>`,
	},
	3: {
		in:  `<message from="123" id="m1" participant="g1"><body>hi</body></message>`,
		out: `<receipt to="123" id="m1" t="1400000000" participant="g1"></receipt>`,
	},
	4: {
		in:  `<ib from="s.whatsapp.net"><dirty><category name="groups"/></dirty></ib>`,
		out: `<iq id="cleardirty-1400000000-1" type="set" to="s.whatsapp.net"><clean xmlns="urn:xmpp:whatsapp:dirty"><category name="groups"></category></clean></iq>`,
	},
	5: {in: `<iq from="s.whatsapp.net" id="late" type="result"/>`},
	6: {in: `<presence from="123" type="available"/>`},
	7: {in: `<notification id="n1" type="t"/>`},
	8: {in: `<ib from="s.whatsapp.net"><offline/></ib>`},
}

func TestHandle(t *testing.T) {
	for i, tc := range handleTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s, r := newSession(t)
			err := s.Handle(context.Background(), wamsgtest.Decode(tc.in))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			sent := r.Sent()
			if tc.out == "" {
				if len(sent) != 0 {
					t.Fatalf("Expected nothing to be sent, got %v", sent)
				}
				return
			}
			if len(sent) != 1 {
				t.Fatalf("Expected one stanza to be sent, got %v", sent)
			}
			if out := sent[0].String(); out != tc.out {
				t.Errorf("Wrong output:\nwant=%s,\n got=%s", tc.out, out)
			}
		})
	}
}

func TestHandleNoAutoReceipt(t *testing.T) {
	r := &wamsgtest.Recorder{}
	var fallback []stanza.Node
	s, err := wamsg.NewSession(wamsg.Config{}, r, wamsg.Fallback(wamsg.HandlerFunc(func(_ context.Context, n stanza.Node) error {
		fallback = append(fallback, n)
		return nil
	})))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err = s.Handle(context.Background(), wamsgtest.Decode(`<message from="123" id="m1"/>`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(r.Sent()) != 0 {
		t.Errorf("Expected no receipt to be sent, got %v", r.Sent())
	}
	if len(fallback) != 1 || fallback[0].Tag() != "message" {
		t.Errorf("Expected message to be passed to the fallback handler, got %v", fallback)
	}
}

func TestRequestServerProperties(t *testing.T) {
	s, r := newSession(t)
	var (
		calls int
		got   stanza.Node
	)
	id, err := s.RequestServerProperties(context.Background(), func(reply stanza.Node) {
		calls++
		got = reply
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, "getproperties") {
		t.Errorf("Wrong id prefix: %q", id)
	}
	sent := r.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected one stanza to be sent, got %v", sent)
	}
	want := `<iq id="` + id + `" type="get" to="s.whatsapp.net"><props xmlns="w"></props></iq>`
	if out := sent[0].String(); out != want {
		t.Errorf("Wrong output:\nwant=%s,\n got=%s", want, out)
	}
	if !s.Pending().Pending(id) {
		t.Fatalf("Expected %s to be pending", id)
	}

	reply := wamsgtest.Decode(`<iq from="s.whatsapp.net" id="`+id+`" type="result"><props><prop name="a" value="b"/></props></iq>`)
	for i := 0; i < 2; i++ {
		if err := s.Handle(context.Background(), reply); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("Continuation ran %d times, want 1", calls)
	}
	if !got.Equal(reply) {
		t.Errorf("Wrong reply: %v", got)
	}
	if len(r.Sent()) != 1 {
		t.Errorf("Replies must not be answered, got %v", r.Sent())
	}
}

var pricingTests = [...]struct {
	lang, country string
	lg, lc        string
	err           bool
}{
	0: {lg: "en", lc: "us"},
	1: {lang: "fr", country: "fr", lg: "fr", lc: "fr"},
	2: {lang: "not a language", err: true},
	3: {country: "nowhere", err: true},
}

func TestRequestServicePricing(t *testing.T) {
	for i, tc := range pricingTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s, r := newSession(t)
			id, err := s.RequestServicePricing(context.Background(), tc.lang, tc.country, nil)
			if tc.err {
				var uErr *wamsg.UsageError
				if !errors.As(err, &uErr) {
					t.Fatalf("Expected a usage error, got %v", err)
				}
				if len(r.Sent()) != 0 || s.Pending().Len() != 0 {
					t.Errorf("Expected no state change on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.HasPrefix(id, "get_service_pricing_") {
				t.Errorf("Wrong id prefix: %q", id)
			}
			sent := r.Sent()
			if len(sent) != 1 {
				t.Fatalf("Expected one stanza to be sent, got %v", sent)
			}
			p, ok := sent[0].First("pricing")
			if !ok {
				t.Fatalf("No pricing child in %v", sent[0])
			}
			if p.Attr("lg") != tc.lg || p.Attr("lc") != tc.lc {
				t.Errorf("Wrong codes: want=(%q, %q), got=(%q, %q)", tc.lg, tc.lc, p.Attr("lg"), p.Attr("lc"))
			}
			if !s.Pending().Pending(id) {
				t.Errorf("Expected %s to be pending", id)
			}
		})
	}
}

func TestRequestDuplicate(t *testing.T) {
	s, r := newSession(t)
	n := stanza.IQ("fixed", stanza.GetIQ, s.Server())
	if _, err := s.Request(context.Background(), n, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err := s.Request(context.Background(), n, nil)
	var uErr *wamsg.UsageError
	if !errors.As(err, &uErr) || !errors.Is(err, pending.ErrDuplicateID) {
		t.Fatalf("Expected a duplicate id usage error, got %v", err)
	}
	if len(r.Sent()) != 1 {
		t.Errorf("Expected the duplicate not to be sent")
	}
}

func TestRequestAllocatesID(t *testing.T) {
	s, r := newSession(t)
	id, err := s.Request(context.Background(), stanza.New("iq", []xml.Attr{stanza.Attr("type", "get")}), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, "iq-") {
		t.Errorf("Wrong id: %q", id)
	}
	if sent := r.Sent(); len(sent) != 1 || sent[0].Attr("id") != id {
		t.Errorf("Expected sent stanza to carry id %q, got %v", id, sent)
	}
}

func TestRequestSendError(t *testing.T) {
	s, r := newSession(t)
	sendErr := errors.New("broken pipe")
	r.Fail(sendErr)
	called := false
	id, err := s.RequestServerProperties(context.Background(), func(stanza.Node) { called = true })
	if !errors.Is(err, sendErr) {
		t.Fatalf("Wrong error: want=%v, got=%v", sendErr, err)
	}
	if s.Pending().Pending(id) {
		t.Errorf("Expected failed request to be canceled")
	}
	reply := stanza.New("iq", []xml.Attr{stanza.Attr("id", id), stanza.Attr("type", "result")})
	if err := s.Handle(context.Background(), reply); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if called {
		t.Errorf("Continuation of a failed request ran")
	}
}

var usageTests = [...]struct {
	name string
	f    func(*wamsg.Session, stanza.Node) error
}{
	0: {name: "receipt", f: func(s *wamsg.Session, n stanza.Node) error { return s.SendReceipt(context.Background(), n) }},
	1: {name: "read receipt", f: func(s *wamsg.Session, n stanza.Node) error { return s.SendReadReceipt(context.Background(), n) }},
	2: {name: "notification", f: func(s *wamsg.Session, n stanza.Node) error { return s.AckNotification(context.Background(), n) }},
	3: {name: "receipt ack", f: func(s *wamsg.Session, n stanza.Node) error { return s.AckReceipt(context.Background(), n) }},
}

func TestUsageErrors(t *testing.T) {
	for i, tc := range usageTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s, r := newSession(t)
			err := tc.f(s, stanza.New("message", []xml.Attr{stanza.Attr("id", "m1")}))
			var uErr *wamsg.UsageError
			if !errors.As(err, &uErr) {
				t.Fatalf("%s: expected a usage error, got %v", tc.name, err)
			}
			var missing stanza.MissingAttrError
			if !errors.As(err, &missing) || missing.Attr != "from" {
				t.Errorf("%s: expected missing from attribute, got %v", tc.name, err)
			}
			if len(r.Sent()) != 0 {
				t.Errorf("%s: expected nothing to be sent", tc.name)
			}
		})
	}
}

func TestReadReceipt(t *testing.T) {
	s, r := newSession(t)
	err := s.SendReadReceipt(context.Background(), wamsgtest.Decode(`<message from="123" id="m1"/>`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	const want = `<receipt to="123" type="read" id="m1" t="1400000000"></receipt>`
	if sent := r.Sent(); len(sent) != 1 || sent[0].String() != want {
		t.Errorf("Wrong output: want=%s, got=%v", want, sent)
	}
}

func TestServerPropertiesBlocking(t *testing.T) {
	r := &wamsgtest.Recorder{}
	var s *wamsg.Session
	// Answer each request as soon as it is sent, from another goroutine.
	sender := wamsg.SenderFunc(func(ctx context.Context, n stanza.Node) error {
		if err := r.Send(ctx, n); err != nil {
			return err
		}
		reply := stanza.New("iq", []xml.Attr{
			stanza.Attr("id", n.Attr("id")),
			stanza.Attr("type", "result"),
		}, stanza.New("props", nil,
			stanza.New("prop", []xml.Attr{stanza.Attr("name", "max_groups"), stanza.Attr("value", "50")}),
		))
		go func() {
			if err := s.Handle(context.Background(), reply); err != nil {
				t.Errorf("error handling reply: %v", err)
			}
		}()
		return nil
	})
	s, err := wamsg.NewSession(wamsg.Config{}, sender)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	props, err := s.ServerProperties(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []stanza.Property{{Name: "max_groups", Value: "50"}}
	if len(props) != 1 || props[0] != want[0] {
		t.Errorf("Wrong properties: want=%v, got=%v", want, props)
	}
	if s.Pending().Len() != 0 {
		t.Errorf("Expected no pending requests")
	}
}

func TestServicePricingErrorReply(t *testing.T) {
	var s *wamsg.Session
	sender := wamsg.SenderFunc(func(ctx context.Context, n stanza.Node) error {
		reply := stanza.New("iq", []xml.Attr{
			stanza.Attr("id", n.Attr("id")),
			stanza.Attr("type", "error"),
		}, stanza.New("error", []xml.Attr{stanza.Attr("code", "404"), stanza.Attr("text", "item-not-found")}))
		go s.Handle(context.Background(), reply)
		return nil
	})
	s, err := wamsg.NewSession(wamsg.Config{}, sender)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = s.ServicePricing(context.Background(), "", "")
	var e stanza.Error
	if !errors.As(err, &e) || e.Code != "404" {
		t.Errorf("Expected error reply, got %v", err)
	}
}

func TestBlockingTimeout(t *testing.T) {
	s, _ := newSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.ServerProperties(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wrong error: want=%v, got=%v", context.DeadlineExceeded, err)
	}
	if s.Pending().Len() != 0 {
		t.Errorf("Expected timed out request to be canceled")
	}
}

func TestClose(t *testing.T) {
	s, r := newSession(t)
	called := false
	id, err := s.RequestServerProperties(context.Background(), func(stanza.Node) { called = true })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := s.ServicePricing(context.Background(), "", "")
		errs <- err
	}()
	// Wait for the blocking request to be sent.
	for len(r.Sent()) < 2 {
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("error closing session: %v", err)
	}
	if err := <-errs; !errors.Is(err, wamsg.ErrSessionClosed) {
		t.Errorf("Wrong error from blocked request: want=%v, got=%v", wamsg.ErrSessionClosed, err)
	}
	reply := stanza.New("iq", []xml.Attr{stanza.Attr("id", id), stanza.Attr("type", "result")})
	if err := s.Handle(context.Background(), reply); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if called {
		t.Error("Continuation ran after close")
	}
	if err := s.Pong(context.Background(), "p"); !errors.Is(err, wamsg.ErrSessionClosed) {
		t.Errorf("Wrong error sending on closed session: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}
}

func TestRequestReplyBeforeSendError(t *testing.T) {
	var s *wamsg.Session
	// The reply is handled synchronously, then the write reports a failure.
	sender := wamsg.SenderFunc(func(ctx context.Context, n stanza.Node) error {
		reply := stanza.New("iq", []xml.Attr{
			stanza.Attr("id", n.Attr("id")),
			stanza.Attr("type", "result"),
		})
		if err := s.Handle(ctx, reply); err != nil {
			t.Errorf("error handling reply: %v", err)
		}
		return errors.New("write: broken pipe")
	})
	s, err := wamsg.NewSession(wamsg.Config{}, sender, wamsg.Clock(func() time.Time { return epoch }))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	called := 0
	id, err := s.RequestServerProperties(context.Background(), func(stanza.Node) { called++ })
	if err != nil {
		t.Errorf("Expected no error once the reply was handled, got %v", err)
	}
	if called != 1 {
		t.Errorf("Expected continuation to run once, ran %d times", called)
	}
	if s.Pending().Pending(id) {
		t.Errorf("Expected %s not to be pending", id)
	}
}

func TestCloseAfterReply(t *testing.T) {
	for i := 0; i < 20; i++ {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var s *wamsg.Session
			// The reply is buffered and the session closed before the blocked
			// request gets to select.
			sender := wamsg.SenderFunc(func(ctx context.Context, n stanza.Node) error {
				reply := stanza.New("iq", []xml.Attr{
					stanza.Attr("id", n.Attr("id")),
					stanza.Attr("type", "result"),
				}, stanza.New("props", nil,
					stanza.New("prop", []xml.Attr{stanza.Attr("name", "max_groups"), stanza.Attr("value", "50")}),
				))
				if err := s.Handle(ctx, reply); err != nil {
					t.Errorf("error handling reply: %v", err)
				}
				return s.Close()
			})
			s, err := wamsg.NewSession(wamsg.Config{}, sender)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			props, err := s.ServerProperties(context.Background())
			if err != nil {
				t.Fatalf("Expected the reply to win over close, got %v", err)
			}
			if len(props) != 1 || props[0].Name != "max_groups" {
				t.Errorf("Wrong properties: %v", props)
			}
		})
	}
}
