/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command bindcheck indexes a function manifest the way a host would at startup and
// reports every binding: its shape, classification and resolved connection, or the rule
// that rejects it. It can also watch the file triggers of a manifest.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
