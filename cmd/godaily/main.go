// Command godaily manages tasks from the terminal, stored on this device or on a
// GoDaily server.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		cancel()
		os.Exit(1)
	}
}
