package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/opsconsole/bluegreen-manager/pkg/inspector"
	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
	"github.com/opsconsole/bluegreen-manager/pkg/server"
	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// Config is assembled once at startup and passed into constructors
// explicitly; no package reads the environment after this point.
type Config struct {
	Store StoreConfig

	// App is the application folder name, e.g. "app1".
	App string
	// Environment labels the target environment, e.g. "dev-us".
	Environment string
	// AppsBasePath is the parent folder containing app folders.
	AppsBasePath string
	// ValuesPath is the full repository path of the values file.
	ValuesPath string
	// BaseRef is the branch to base proposals on; empty means the
	// repository default.
	BaseRef string
	// WorkflowID names the CI workflow to dispatch and watch.
	WorkflowID string

	ListenAddr string
	LogLevel   string

	OpenAIKey   string
	OpenAIModel string

	GCPProject string
	GCPRegion  string
}

type StoreConfig struct {
	// Kind selects the backend: "gitea" or "gitlab".
	Kind    string
	BaseURL string
	Token   string
	// Owner and Repo identify a Gitea repository.
	Owner string
	Repo  string
	// Project identifies a GitLab project ("group/name").
	Project string
}

// Load returns config populated from the environment.
func Load() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Kind:    envOr("BG_STORE_KIND", "gitea"),
			BaseURL: os.Getenv("BG_STORE_URL"),
			Token:   os.Getenv("BG_STORE_TOKEN"),
			Owner:   os.Getenv("BG_STORE_OWNER"),
			Repo:    os.Getenv("BG_STORE_REPO"),
			Project: os.Getenv("BG_STORE_PROJECT"),
		},
		App:          envOr("BG_APP", "app1"),
		Environment:  envOr("BG_ENV", "dev-us"),
		AppsBasePath: envOr("BG_APPS_PATH", "apps"),
		ValuesPath:   os.Getenv("BG_VALUES_PATH"),
		BaseRef:      os.Getenv("BG_BASE_REF"),
		WorkflowID:   os.Getenv("BG_WORKFLOW_ID"),
		ListenAddr:   ":" + envOr("PORT", "8080"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		GCPProject:   os.Getenv("BG_GCP_PROJECT"),
		GCPRegion:    envOr("BG_GCP_REGION", "us-central1"),
	}

	return cfg
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

func (c *Config) Validate() error {
	switch c.Store.Kind {
	case "gitea":
		if c.Store.Owner == "" || c.Store.Repo == "" {
			return fmt.Errorf("gitea store requires owner and repo")
		}
	case "gitlab":
		if c.Store.Project == "" {
			return fmt.Errorf("gitlab store requires a project path")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.BaseURL == "" {
		return fmt.Errorf("store base URL must be set")
	}

	return nil
}

// NewDocumentStore builds the configured store backend.
func (c *Config) NewDocumentStore() (store.DocumentStore, error) {
	switch c.Store.Kind {
	case "gitea":
		return store.NewGitea(store.GiteaOptions{
			BaseURL: c.Store.BaseURL,
			Token:   c.Store.Token,
			Owner:   c.Store.Owner,
			Repo:    c.Store.Repo,
		})
	case "gitlab":
		return store.NewGitlab(store.GitlabOptions{
			BaseURL: c.Store.BaseURL,
			Token:   c.Store.Token,
			Project: c.Store.Project,
		})
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
}

// ResolveValuesPath returns the values-file path, defaulting to the
// conventional location under the apps folder.
func (c *Config) ResolveValuesPath() string {
	if c.ValuesPath != "" {
		return c.ValuesPath
	}

	return fmt.Sprintf("%s/%s/values-%s.yaml", c.AppsBasePath, c.App, c.Environment)
}

// NewServer wires the full HTTP server from configuration: document store,
// orchestrator, the workflow runner when the backend has one, and job
// inspection when a GCP project and an OpenAI key are configured.
func (c *Config) NewServer(ctx context.Context) (*server.Server, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	documentStore, err := c.NewDocumentStore()
	if err != nil {
		return nil, err
	}

	runner, err := c.NewWorkflowRunner()
	if err != nil {
		return nil, err
	}

	opts := server.Options{
		Orchestrator: orchestrator.New(documentStore, orchestrator.Options{
			App:         c.App,
			Environment: c.Environment,
			ValuesPath:  c.ResolveValuesPath(),
			BaseRef:     c.BaseRef,
		}),
		Store:        documentStore,
		Runner:       runner,
		AppsBasePath: c.AppsBasePath,
	}

	if c.GCPProject != "" {
		dataflow, err := inspector.NewDataflow(ctx, c.GCPProject, c.GCPRegion)
		if err != nil {
			return nil, err
		}
		opts.Inspector = dataflow
	}
	if c.OpenAIKey != "" {
		opts.Summarizer = inspector.NewOpenAISummarizer(c.OpenAIKey, c.OpenAIModel)
	}

	return server.New(opts), nil
}

// NewWorkflowRunner returns the CI runner for the configured backend, or nil
// when the backend does not expose one.
func (c *Config) NewWorkflowRunner() (store.WorkflowRunner, error) {
	if c.Store.Kind != "gitlab" {
		return nil, nil
	}

	return store.NewGitlab(store.GitlabOptions{
		BaseURL: c.Store.BaseURL,
		Token:   c.Store.Token,
		Project: c.Store.Project,
	})
}

// SetupLogger installs a JSON slog handler at the configured level as the
// default logger.
func (c *Config) SetupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
