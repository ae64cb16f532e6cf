package display

import (
	"context"
	"io"
	"runtime"

	"github.com/grovetools/cyclenext/command"
)

// Clearer wipes the terminal using the platform's clear command.
type Clearer struct {
	builder *command.SafeBuilder
	name    string
	args    []string
}

// NewClearer returns a Clearer for the running platform.
func NewClearer(builder *command.SafeBuilder) *Clearer {
	return newClearer(builder, runtime.GOOS)
}

func newClearer(builder *command.SafeBuilder, goos string) *Clearer {
	if goos == "windows" {
		return &Clearer{builder: builder, name: "cmd", args: []string{"/c", "cls"}}
	}
	return &Clearer{builder: builder, name: "clear"}
}

// Clear runs the clear command with its output sent to w.
func (c *Clearer) Clear(ctx context.Context, w io.Writer) error {
	cmd, err := c.builder.Build(ctx, c.name, c.args...)
	if err != nil {
		return err
	}
	return cmd.Run(nil, w, io.Discard)
}
