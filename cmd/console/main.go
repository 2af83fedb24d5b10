package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tellerbank/account-service/internal/client"
	"github.com/tellerbank/account-service/internal/config"
	"github.com/tellerbank/account-service/internal/console"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bank := client.New(cfg.APIURL, cfg.HTTPTimeout)
	if err := console.New(bank, os.Stdin, os.Stdout, os.Stderr).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
