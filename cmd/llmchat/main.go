package main

import (
	"fmt"
	"os"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "llmchat:", err)
		os.Exit(1)
	}
}
