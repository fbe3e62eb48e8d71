package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/evyataryagoni/issflyover/internal/cli"
	"github.com/pterm/pterm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewCmd().ExecuteContext(ctx); err != nil {
		pterm.Error.Println("It didn't work!", err)
		stop()
		os.Exit(1)
	}
}
