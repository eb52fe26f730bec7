package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsconsole/bluegreen-manager/internal/config"
	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

var cfg = config.Load()

var rootCmd = &cobra.Command{
	Use:   "bluegreenctl",
	Short: "Propose blue/green release changes as pull requests",
	Long: `bluegreenctl reads a blue/green values file from a Git host, applies one
release operation (version bump, slot flip, switch toggle) and opens a pull
request encoding the change. Nothing is ever committed to the base branch
directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfg.SetupLogger()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.App, "app", cfg.App, "application folder name")
	pf.StringVar(&cfg.Environment, "env", cfg.Environment, "environment label, e.g. dev-us")
	pf.StringVar(&cfg.AppsBasePath, "apps-path", cfg.AppsBasePath, "parent folder containing app folders")
	pf.StringVar(&cfg.ValuesPath, "values-path", cfg.ValuesPath, "values file path (default <apps-path>/<app>/values-<env>.yaml)")
	pf.StringVar(&cfg.BaseRef, "base-ref", cfg.BaseRef, "base branch (default: repository default branch)")
	pf.StringVar(&cfg.Store.Kind, "store", cfg.Store.Kind, "store backend: gitea or gitlab")
	pf.StringVar(&cfg.Store.BaseURL, "store-url", cfg.Store.BaseURL, "store base URL")
	pf.StringVar(&cfg.Store.Owner, "owner", cfg.Store.Owner, "gitea repository owner")
	pf.StringVar(&cfg.Store.Repo, "repo", cfg.Store.Repo, "gitea repository name")
	pf.StringVar(&cfg.Store.Project, "project", cfg.Store.Project, "gitlab project path")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newDocumentStore() (store.DocumentStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg.NewDocumentStore()
}

func newOrchestrator() (*orchestrator.Orchestrator, store.DocumentStore, error) {
	documentStore, err := newDocumentStore()
	if err != nil {
		return nil, nil, err
	}

	o := orchestrator.New(documentStore, orchestrator.Options{
		App:         cfg.App,
		Environment: cfg.Environment,
		ValuesPath:  cfg.ResolveValuesPath(),
		BaseRef:     cfg.BaseRef,
	})

	return o, documentStore, nil
}

func printProposal(p *orchestrator.Proposal) {
	fmt.Printf("Branch: %s\n", p.Branch)
	fmt.Printf("PR:     %s (%s)\n", p.PullRequest.Title, p.PullRequest.URL)
	if p.NewActive != "" {
		fmt.Printf("Active: %s\n", p.NewActive)
	}
}
