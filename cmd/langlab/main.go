// Command langlab runs the langlab tutorials from the command line: model
// presets, prompt chains, tool agents, graph workflows, chat with memory and
// small evaluation experiments.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp(os.Stdin, os.Stdout)).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
