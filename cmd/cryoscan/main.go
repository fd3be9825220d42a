// Package main provides the entry point for the cryoscan CLI tool.
package main

import (
	"github.com/cryoscan/cryoscan/cmd/cryoscan/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
