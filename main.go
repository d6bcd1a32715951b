package main

import (
	"fmt"
	"os"

	"github.com/glueful/vs-code-extension/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
