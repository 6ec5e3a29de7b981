package main

import (
	"context"
	"os"

	"github.com/foundryhq/workbay/internal/cli"
	"github.com/charmbracelet/fang"
)

func main() {
	if err := fang.Execute(context.Background(), cli.RootCmd); err != nil {
		os.Exit(1)
	}
}
