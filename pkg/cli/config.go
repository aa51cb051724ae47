package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/profile"
	"github.com/sensei-tutor/sensei/pkg/repository"
	"github.com/sensei-tutor/sensei/pkg/service/dspy"
	"github.com/sensei-tutor/sensei/pkg/usecase/chat"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository and storage
	project  string
	database string
	bucket   string

	// local switches to the in-process repository and a directory-backed
	// storage, useful for development without Google Cloud credentials
	local    bool
	localDir string

	// Gemini
	geminiProject   string
	geminiLocation  string
	generativeModel string
	embeddingModel  string
	embeddingDim    int64

	// Enhanced tutoring service
	dspyURL  string
	fallback bool

	// Subject profiles
	profileDir string

	// Logging
	logLevel  string
	logFormat string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for uploaded files",
			Sources:     cli.EnvVars("SENSEI_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.BoolFlag{
			Name:        "local",
			Usage:       "Use in-memory repository and local directory storage",
			Sources:     cli.EnvVars("SENSEI_LOCAL"),
			Destination: &cfg.local,
		},
		&cli.StringFlag{
			Name:        "local-dir",
			Usage:       "Directory for file storage in local mode",
			Value:       "./data",
			Sources:     cli.EnvVars("SENSEI_LOCAL_DIR"),
			Destination: &cfg.localDir,
		},
		&cli.StringFlag{
			Name:        "profile-dir",
			Usage:       "Directory of subject profile YAML files overriding built-ins",
			Sources:     cli.EnvVars("SENSEI_PROFILE_DIR"),
			Destination: &cfg.profileDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("SENSEI_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("SENSEI_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Model used for response generation",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("SENSEI_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Model used for text embeddings",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("SENSEI_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Output dimensionality of embeddings",
			Value:       768,
			Sources:     cli.EnvVars("SENSEI_EMBEDDING_DIMENSION"),
			Destination: &cfg.embeddingDim,
		},
	}
}

// serviceFlags returns flags for the enhanced tutoring service
func serviceFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dspy-url",
			Usage:       "Base URL of the enhanced tutoring service (empty disables it)",
			Sources:     cli.EnvVars("SENSEI_DSPY_URL"),
			Destination: &cfg.dspyURL,
		},
		&cli.BoolFlag{
			Name:        "fallback",
			Usage:       "Fall back to direct generation when the enhanced service fails",
			Value:       true,
			Sources:     cli.EnvVars("SENSEI_FALLBACK"),
			Destination: &cfg.fallback,
		},
	}
}

// newLogger builds the process logger and installs it as the default
func (cfg *config) newLogger() *slog.Logger {
	var logger *slog.Logger
	if cfg.logFormat == "json" {
		logger = logging.NewJSON(cfg.logLevel, os.Stderr)
	} else {
		logger = logging.New(cfg.logLevel, os.Stderr)
	}
	logging.SetDefault(logger)
	return logger
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.local {
		return repository.NewMemory(), nil
	}

	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.local {
		return adapter.NewDirStorage(cfg.localDir)
	}

	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	project := cfg.geminiProject
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	client, err := adapter.NewGemini(ctx, project, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.generativeModel),
		adapter.WithEmbeddingModel(cfg.embeddingModel),
		adapter.WithEmbeddingDimension(int32(cfg.embeddingDim)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return client, nil
}

// newProfiles loads the built-in subject profiles plus any overrides
func (cfg *config) newProfiles() (*profile.Registry, error) {
	registry, err := profile.NewRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.profileDir != "" {
		if err := registry.LoadDir(cfg.profileDir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// newEnhanced returns the enhanced service client, or nil when disabled
func (cfg *config) newEnhanced() chat.EnhancedClient {
	if cfg.dspyURL == "" {
		return nil
	}
	return dspy.New(cfg.dspyURL)
}
