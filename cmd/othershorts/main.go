// Package main provides the othershorts entry point.
package main

import (
	"os"

	"othershorts-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
