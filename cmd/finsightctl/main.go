// Package main is the entry point for the finsightctl CLI.
//
// finsightctl bootstraps the FinSight GitOps stack on an OpenShift cluster:
// it installs the GitOps operator through OLM, grants the Argo CD application
// controller the privileges it needs, verifies the result, and wires the
// audio ingestion pipeline.
//
// Commands: init, bootstrap, verify, status, pipeline.
//
// For detailed usage information, run:
//
//	finsightctl --help
package main

import (
	"fmt"
	"os"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
