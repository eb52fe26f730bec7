package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsconsole/bluegreen-manager/pkg/inspector"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect pipeline jobs and summarise their health",
}

func newInspector(cmd *cobra.Command) (*inspector.Dataflow, error) {
	if cfg.GCPProject == "" {
		return nil, fmt.Errorf("job inspection requires BG_GCP_PROJECT")
	}

	return inspector.NewDataflow(cmd.Context(), cfg.GCPProject, cfg.GCPRegion)
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent pipeline jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataflow, err := newInspector(cmd)
		if err != nil {
			return err
		}

		jobs, err := dataflow.ListJobs(cmd.Context())
		if err != nil {
			return err
		}

		for _, job := range jobs {
			fmt.Printf("%s\t%s\t%s\t%s\n", job.ID, job.Name, job.State, job.CreateTime.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var jobsSummarizeCmd = &cobra.Command{
	Use:   "summarize [job-id]",
	Short: "Generate a health summary for one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.OpenAIKey == "" {
			return fmt.Errorf("job summaries require OPENAI_API_KEY")
		}

		dataflow, err := newInspector(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		jobID := args[0]

		jobs, err := dataflow.ListJobs(ctx)
		if err != nil {
			return err
		}

		var job *inspector.Job
		for i := range jobs {
			if jobs[i].ID == jobID {
				job = &jobs[i]
				break
			}
		}
		if job == nil {
			return fmt.Errorf("job %s not found in the recent job window", jobID)
		}

		metrics, err := dataflow.JobMetrics(ctx, jobID)
		if err != nil {
			return err
		}
		messages, err := dataflow.JobMessages(ctx, jobID, 50)
		if err != nil {
			return err
		}

		summary, err := inspector.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIModel).Summarize(ctx, inspector.Report{
			Job:      *job,
			Metrics:  metrics,
			Messages: messages,
		})
		if err != nil {
			return err
		}

		fmt.Println(summary)
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsSummarizeCmd)
	rootCmd.AddCommand(jobsCmd)
}
