// Copyright 2019 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// The wamsg command builds client stanzas and shows how inbound stanzas are
// answered.
// Stanzas are read from stdin and written to stdout in their XML form.
//
// For more information try running:
//
//     wamsg help
package main

import (
	"context"
	"os"
)

func main() {
	if err := rootCmd(os.Stdin, os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
