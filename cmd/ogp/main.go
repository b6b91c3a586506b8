package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.tabichina.jp/site/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	defer func() {
		_ = log.L().Sync()
	}()

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
