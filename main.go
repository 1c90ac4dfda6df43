package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/kconf/cli"
	"github.com/ardnew/kconf/log"
)

func main() {
	ctx := context.Background()

	if err := cli.Run(ctx, os.Exit, os.Args[1:]...); err != nil {
		// The error renders its attributes through LogValue.
		log.Error("kconf failed", slog.Any("error", err))
		os.Exit(1)
	}
}
