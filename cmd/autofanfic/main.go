package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// Interrupts surface as canceled contexts; the shell already shows ^C.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "autofanfic: %v\n", err)
	}
	os.Exit(1)
}
