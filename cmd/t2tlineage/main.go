// Package main provides the CLI entry point for t2tlineage.
package main

import (
	"os"

	"github.com/oracle-t2t/lineage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
