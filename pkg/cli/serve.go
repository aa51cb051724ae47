package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/server"
	"github.com/sensei-tutor/sensei/pkg/usecase/chat"
	"github.com/sensei-tutor/sensei/pkg/usecase/conversation"
	"github.com/sensei-tutor/sensei/pkg/usecase/file"
	"github.com/urfave/cli/v3"
)

const shutdownGrace = 10 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SENSEI_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, serviceFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the tutoring HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := cfg.newLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			storage, err := cfg.newStorage(ctx)
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

			store := memory.NewStore()
			enhanced := cfg.newEnhanced()

			srv := server.New(server.NewInput{
				Logger: logger,
				Chat: chat.New(chat.NewInput{
					Repo:     repo,
					Gemini:   gemini,
					Store:    store,
					Profiles: profiles,
					Enhanced: enhanced,
					Fallback: cfg.fallback,
				}),
				Convs: conversation.New(repo, store, gemini),
				Files: file.New(file.NewInput{
					Repo:    repo,
					Storage: storage,
					Gemini:  gemini,
					Store:   store,
				}),
			})

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			logger.Info("server started", "addr", addr,
				"local", cfg.local, "enhanced", enhanced != nil)

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
				logger.Info("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down server")
			}
			return <-errCh
		},
	}
}
