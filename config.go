// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/net/idna"
	"gopkg.in/yaml.v2"

	"mellium.im/wamsg/internal/log"
)

// DefaultServer is the server used when none is configured.
const DefaultServer = "s.whatsapp.net"

// LogConfig configures logging.
type LogConfig = log.Config

// Config represents the configuration of a session.
type Config struct {
	// Server is the address that server directed stanzas are sent to.
	Server string `yaml:"server"`

	// AutoReceipt controls whether Handle answers inbound messages with a
	// delivery receipt.
	AutoReceipt bool `yaml:"auto_receipt"`

	// RequestTimeout bounds the blocking request methods when the context
	// passed to them has no deadline.
	// Zero means no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Log configures logging.
	// If it is the zero value nothing is logged.
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns the configuration used for values that are missing
// from a config file.
func DefaultConfig() Config {
	return Config{
		Server:         DefaultServer,
		AutoReceipt:    true,
		RequestTimeout: 30 * time.Second,
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// ParseConfig reads the YAML config file at path.
func ParseConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("wamsg: error reading config file: %w", err)
	}
	/* #nosec */
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig decodes a YAML config from r.
// Fields missing from the input take their value from DefaultConfig.
// The resulting config is validated before it is returned.
func DecodeConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	err := yaml.NewDecoder(r).Decode(&c)
	if err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("wamsg: error decoding config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks that the config can be used to create a session.
func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("wamsg: no server configured")
	}
	if _, err := idna.Lookup.ToASCII(c.Server); err != nil {
		return fmt.Errorf("wamsg: invalid server address %q: %w", c.Server, err)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("wamsg: negative request timeout %v", c.RequestTimeout)
	}
	return nil
}
