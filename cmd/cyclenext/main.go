package main

import (
	"context"
	"os"

	"github.com/grovetools/cyclenext/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background(), os.Args[1:]))
}
