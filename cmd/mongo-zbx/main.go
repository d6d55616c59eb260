package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/cli"
)

func main() {

	// Cancel the running command on SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := cli.Execute(ctx, os.Args[1:], cli.DefaultDeps())
	stop()
	os.Exit(code)
}
