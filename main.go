package main

import (
	"os"
)

// main is the app's entry point.
func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
