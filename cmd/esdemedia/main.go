package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		// An interrupted run has already reported what it finished.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "esdemedia: %v\n", err)
		}
		os.Exit(1)
	}
}
