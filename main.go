// Command enclose compiles closure literals and calls them.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/enclose/cli"
	"github.com/ardnew/enclose/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		// slog resolves LogValue on errors that implement it.
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
