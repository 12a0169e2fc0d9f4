// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"mellium.im/wamsg"
)

var decodeConfigTests = [...]struct {
	in  string
	out wamsg.Config
	err bool
}{
	0: {out: wamsg.DefaultConfig()},
	1: {
		in: `
server: c.us
auto_receipt: false
request_timeout: 5s
log:
  level: debug
  format: json
`,
		out: wamsg.Config{
			Server:         "c.us",
			RequestTimeout: 5 * time.Second,
			Log:            wamsg.LogConfig{Level: "debug", Format: "json"},
		},
	},
	2: {
		in:  `server: "not a domain!"`,
		err: true,
	},
	3: {
		in:  `request_timeout: -1s`,
		err: true,
	},
	4: {
		in:  `server: [`,
		err: true,
	},
	5: {
		in:  `server: ""`,
		err: true,
	},
}

func TestDecodeConfig(t *testing.T) {
	for i, tc := range decodeConfigTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			c, err := wamsg.DecodeConfig(strings.NewReader(tc.in))
			if tc.err {
				if err == nil {
					t.Fatalf("Expected an error, got config %+v", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c != tc.out {
				t.Errorf("Wrong config:\nwant=%+v,\n got=%+v", tc.out, c)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wamsg.yml")
	err := os.WriteFile(path, []byte("server: s.whatsapp.net\nrequest_timeout: 1m\n"), 0o600)
	if err != nil {
		t.Fatalf("error writing config: %v", err)
	}
	c, err := wamsg.ParseConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.RequestTimeout != time.Minute || !c.AutoReceipt {
		t.Errorf("Wrong config: %+v", c)
	}
	if _, err := wamsg.ParseConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected missing file to return an error")
	}
}
