// Package main is the entry point for the bookrag server.
package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/bookrag-io/bookrag/cmd/bookrag/app"
)

func main() {
	if err := app.NewApp().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
