// Copyright (C) 2018. See AUTHORS.

// Command lfsr prints, stores and serves 16 bit LFSR sequences.
//
// Usage:
//
//	lfsr next --seed 1 --count 4
//	lfsr enumerate --seed 0xace1
//	lfsr check
//	lfsr create counter --seed 1
//	lfsr next --name counter
//	lfsr serve --addr :8080
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
