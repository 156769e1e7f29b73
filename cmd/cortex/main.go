package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/cortex-shell/internal/infrastructure/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	root, closeContainer, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeContainer()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("CORTEX_DEBUG"), "1") || strings.EqualFold(os.Getenv("CORTEX_DEBUG"), "true")
}
