package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsconsole/bluegreen-manager/pkg/store"
	"github.com/opsconsole/bluegreen-manager/pkg/workflow"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Dispatch and watch CI workflow runs",
}

var (
	workflowRef     string
	workflowInputs  []string
	workflowTimeout time.Duration
)

func newRunner() (store.WorkflowRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner, err := cfg.NewWorkflowRunner()
	if err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, fmt.Errorf("workflow runs: %w", store.ErrNotSupported)
	}

	return runner, nil
}

var workflowDispatchCmd = &cobra.Command{
	Use:   "dispatch [workflow-id]",
	Short: "Trigger a workflow run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}

		inputs := make(map[string]string, len(workflowInputs))
		for _, pair := range workflowInputs {
			key, value, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("input %q is not key=value", pair)
			}
			inputs[key] = value
		}

		if err := runner.Dispatch(cmd.Context(), workflowArg(args), workflowRef, inputs); err != nil {
			return err
		}

		fmt.Println("Workflow dispatched.")
		return nil
	},
}

var workflowRunsCmd = &cobra.Command{
	Use:   "runs [workflow-id]",
	Short: "List recent workflow runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}

		runs, err := runner.ListRuns(cmd.Context(), workflowArg(args), workflowRef, 10)
		if err != nil {
			return err
		}

		for _, run := range runs {
			conclusion := run.Conclusion
			if conclusion == "" {
				conclusion = "-"
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", run.ID, run.Status, conclusion, run.URL)
		}
		return nil
	},
}

var workflowWatchCmd = &cobra.Command{
	Use:   "watch [workflow-id]",
	Short: "Wait for the latest run to complete and extract a PR link from its logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), workflowTimeout)
		defer cancel()

		result, err := workflow.NewWatcher(runner).WaitForCompletion(ctx, workflowArg(args), workflowRef)
		if err != nil {
			return err
		}
		if !result.Completed {
			fmt.Println("Run not completed within the wait window.")
			return nil
		}

		fmt.Printf("Run %d finished: %s (%s)\n", result.Run.ID, result.Run.Conclusion, result.Run.URL)

		log, err := runner.RunLog(cmd.Context(), result.Run.ID)
		if err != nil {
			return err
		}
		if url, ok := workflow.ExtractPullRequestURL(log); ok {
			fmt.Printf("PR created: %s\n", url)
		}
		return nil
	},
}

func workflowArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}

	return cfg.WorkflowID
}

func init() {
	workflowCmd.PersistentFlags().StringVar(&workflowRef, "ref", "", "branch or tag to run on")
	workflowDispatchCmd.Flags().StringArrayVar(&workflowInputs, "input", nil, "workflow input as key=value, repeatable")
	workflowWatchCmd.Flags().DurationVar(&workflowTimeout, "timeout", 2*time.Minute, "maximum time to wait for completion")

	workflowCmd.AddCommand(workflowDispatchCmd, workflowRunsCmd, workflowWatchCmd)
	rootCmd.AddCommand(workflowCmd)
}
