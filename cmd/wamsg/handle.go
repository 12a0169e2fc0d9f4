// Copyright 2019 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package main

import (
	"encoding/xml"
	"errors"

	"github.com/spf13/cobra"

	"mellium.im/wamsg/stanza"
)

func handleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "handle",
		Short: "Read inbound stanzas from stdin and print the replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			/* #nosec */
			defer s.Close()

			d := xml.NewDecoder(cmd.InOrStdin())
			for {
				n, err := stanza.Decode(d)
				switch {
				case errors.Is(err, stanza.ErrNoElement):
					return nil
				case err != nil:
					return err
				}
				if err := s.Handle(cmd.Context(), n); err != nil {
					return err
				}
			}
		},
	}
}
