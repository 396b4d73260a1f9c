package main

import (
	"context"
	"io"
	"os"
	"strings"

	"inkwell/app/config"
	"inkwell/service"
)

var exit = os.Exit

func main() {
	exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) int {
	if len(args) > 0 {
		args[0] = strings.ToLower(args[0])
	}
	return service.NewRunner(config.Load(), in, out).HandleCommand(ctx, args)
}
