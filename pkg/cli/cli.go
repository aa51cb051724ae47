// Package cli provides the sensei command line interface.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "sensei",
		Usage: "AI tutoring service with conversation memory",
		Commands: []*cli.Command{
			serveCommand(),
			chatCommand(),
			conversationsCommand(),
			statsCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
