package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg        config
		subject    string
		difficulty string
		userID     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "subject",
			Aliases:     []string{"s"},
			Usage:       "Subject profile to tutor with",
			Sources:     cli.EnvVars("SENSEI_SUBJECT"),
			Destination: &subject,
		},
		&cli.StringFlag{
			Name:        "difficulty",
			Usage:       "Difficulty level (beginner, intermediate, advanced)",
			Sources:     cli.EnvVars("SENSEI_DIFFICULTY"),
			Destination: &difficulty,
		},
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID attached to the conversation",
			Value:       "local",
			Sources:     cli.EnvVars("SENSEI_USER_ID"),
			Destination: &userID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, serviceFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive tutoring session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.newLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}
			profiles, err := cfg.newProfiles()
			if err != nil {
				return err
			}

			uc := chat.New(chat.NewInput{
				Repo:     repo,
				Gemini:   gemini,
				Store:    memory.NewStore(),
				Profiles: profiles,
				Enhanced: cfg.newEnhanced(),
				Fallback: cfg.fallback,
			})

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				InterruptPrompt: "^C",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Tutoring session started. Type 'exit' to quit.\n")

			var conversationID model.ConversationID
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
					spinner.WithWriter(c.Root().ErrWriter))
				sp.Start()

				out, err := uc.Respond(ctx, &chat.RespondInput{
					Message:        line,
					ConversationID: conversationID,
					UserID:         userID,
					Subject:        subject,
					Difficulty:     difficulty,
				})
				sp.Stop()
				if err != nil {
					fmt.Fprintf(c.Root().Writer, "error: %s\n", chat.FailureMessage(chat.ClassifyFailure(err)))
					continue
				}

				conversationID = out.ConversationID
				fmt.Fprintf(c.Root().Writer, "%s\n", out.Text)
				for _, step := range out.NextSteps {
					fmt.Fprintf(c.Root().Writer, "  next: %s\n", step)
				}
			}

			fmt.Fprintf(c.Root().Writer, "\nSession ended\n")
			return nil
		},
	}
}
