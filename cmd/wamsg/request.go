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

func requestCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Print outbound requests",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "properties",
		Short: "Print a server properties request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			/* #nosec */
			defer s.Close()
			_, err = s.RequestServerProperties(cmd.Context(), nil)
			return err
		},
	})

	var lang, country string
	pricing := &cobra.Command{
		Use:   "pricing",
		Short: "Print a service pricing request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			/* #nosec */
			defer s.Close()
			_, err = s.RequestServicePricing(cmd.Context(), lang, country, nil)
			return err
		},
	}
	pricing.Flags().StringVar(&lang, "lang", "", "language code (default "+stanza.DefaultLanguage+")")
	pricing.Flags().StringVar(&country, "country", "", "country code (default "+stanza.DefaultCountry+")")
	cmd.AddCommand(pricing)

	cmd.AddCommand(&cobra.Command{
		Use:   "cleardirty",
		Short: "Print a request clearing the categories of the dirty node read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			/* #nosec */
			defer s.Close()
			n, err := stanza.Decode(xml.NewDecoder(cmd.InOrStdin()))
			if err != nil && !errors.Is(err, stanza.ErrNoElement) {
				return err
			}
			_, err = s.ClearDirty(cmd.Context(), n)
			return err
		},
	})
	return cmd
}
