package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Report bundles everything the summariser sees about one job.
type Report struct {
	Job      Job
	Metrics  []Metric
	Messages []Message
}

// Summarizer turns a job report into a short operator-facing health summary.
type Summarizer interface {
	Summarize(ctx context.Context, report Report) (string, error)
}

const summarySystemPrompt = "You are an SRE assistant. Summarise the health of the pipeline job " +
	"below in a few sentences for an operations dashboard. Call out errors and " +
	"warnings explicitly and state whether the job looks healthy."

// OpenAISummarizer implements Summarizer over a chat-completion model.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, report Report) (string, error) {
	slog.Debug("summarising job", "job", report.Job.ID, "model", s.model)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderReport(report)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary request returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func renderReport(report Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job: %s (%s)\nType: %s\nState: %s\nCreated: %s\n",
		report.Job.Name, report.Job.ID, report.Job.Type, report.Job.State,
		report.Job.CreateTime.Format("2006-01-02 15:04:05 UTC"))

	if len(report.Metrics) > 0 {
		b.WriteString("\nMetrics:\n")
		for _, m := range report.Metrics {
			fmt.Fprintf(&b, "- %s = %g\n", m.Name, m.Value)
		}
	}

	if len(report.Messages) > 0 {
		b.WriteString("\nRecent messages:\n")
		for _, m := range report.Messages {
			fmt.Fprintf(&b, "[%s] %s: %s\n", m.Time, m.Importance, m.Text)
		}
	}

	return b.String()
}
