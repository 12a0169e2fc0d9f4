// Copyright 2019 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mellium.im/wamsg"
	"mellium.im/wamsg/stanza"
)

type options struct {
	configPath string
	server     string
	logLevel   string
	now        int64
}

func rootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "wamsg",
		Short:        "Build client stanzas and answer inbound ones",
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetIn(in)
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file path")
	flags.StringVar(&opts.server, "server", "", "server address, overrides the config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config file")
	flags.Int64Var(&opts.now, "time", 0, "fixed protocol timestamp (seconds since the epoch)")

	cmd.AddCommand(handleCmd(opts))
	cmd.AddCommand(requestCmd(opts))
	return cmd
}

// session creates a session that writes every outbound stanza as XML to the
// output of cmd, one per line.
func (o *options) session(cmd *cobra.Command) (*wamsg.Session, error) {
	cfg := wamsg.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = wamsg.ParseConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.server != "" {
		cfg.Server = o.server
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	var opts []wamsg.Option
	if o.now != 0 {
		t := time.Unix(o.now, 0)
		opts = append(opts, wamsg.Clock(func() time.Time { return t }))
	}

	w := cmd.OutOrStdout()
	e := xml.NewEncoder(w)
	xmlOut := wamsg.TokenSender(e)
	sender := wamsg.SenderFunc(func(ctx context.Context, n stanza.Node) error {
		if err := xmlOut.Send(ctx, n); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	})
	return wamsg.NewSession(cfg, sender, opts...)
}
