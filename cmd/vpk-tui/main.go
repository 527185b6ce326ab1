package main

import (
	"fmt"
	"os"

	"github.com/handiism/l4d2-addon-manager/internal/tui"
)

func main() {
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
