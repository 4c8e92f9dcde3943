package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Injected at build time:
//
//	go build -ldflags "-X main.version=... -X main.gitCommit=... -X main.buildTime=..."
var (
	version   = "dev"
	gitCommit = "none"
	buildTime = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("avif-converter %s (commit %s, built %s, %s)\n", version, gitCommit, buildTime, runtime.Version())
		},
	}
}
