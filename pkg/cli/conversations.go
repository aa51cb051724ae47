package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/usecase/conversation"
	"github.com/urfave/cli/v3"
)

func conversationsCommand() *cli.Command {
	var (
		cfg config
		all bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "Include archived conversations",
			Sources:     cli.EnvVars("SENSEI_LIST_ALL"),
			Destination: &all,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "conversations",
		Usage: "List conversations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.newLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			uc := conversation.New(repo, memory.NewStore(), nil)
			convs, err := uc.List(ctx, all)
			if err != nil {
				return goerr.Wrap(err, "failed to list conversations")
			}

			for _, conv := range convs {
				status := "active"
				if conv.Archived {
					status = "archived"
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%d msgs\t%s\n",
					conv.ID, conv.Title, conv.MessageCount, status)
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "stats",
		Usage: "Show conversation statistics",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.newLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			uc := conversation.New(repo, memory.NewStore(), nil)
			stats, err := uc.Stats(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to collect stats")
			}

			fmt.Fprintf(c.Root().Writer, "active conversations:\t%d\n", stats.ActiveConversations)
			fmt.Fprintf(c.Root().Writer, "archived:\t\t%d\n", stats.ArchivedCount)
			fmt.Fprintf(c.Root().Writer, "uploaded files:\t\t%d\n", stats.UploadedFiles)
			fmt.Fprintf(c.Root().Writer, "memory records:\t\t%d\n", stats.MemoryRecords)
			return nil
		},
	}
}
