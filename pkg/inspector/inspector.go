package inspector

import (
	"context"
	"fmt"
	"sort"
	"time"

	dataflow "google.golang.org/api/dataflow/v1b3"
	"google.golang.org/api/option"
)

// Job is a pipeline job summary.
type Job struct {
	ID         string
	Name       string
	Type       string
	State      string
	CreateTime time.Time
}

type Metric struct {
	Name       string
	Value      float64
	UpdateTime string
}

type Message struct {
	Time       string
	Importance string
	Text       string
}

// Inspector reads pipeline jobs, their metrics and their recent messages.
// Read-only reporting; nothing here touches the release state machine.
type Inspector interface {
	ListJobs(ctx context.Context) ([]Job, error)
	JobMetrics(ctx context.Context, jobID string) ([]Metric, error)
	JobMessages(ctx context.Context, jobID string, max int64) ([]Message, error)
}

const jobWindow = 7 * 24 * time.Hour

// Dataflow implements Inspector for Google Cloud Dataflow in one project and
// region.
type Dataflow struct {
	service *dataflow.Service
	project string
	region  string
}

func NewDataflow(ctx context.Context, project, region string, opts ...option.ClientOption) (*Dataflow, error) {
	service, err := dataflow.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataflow service: %w", err)
	}

	return &Dataflow{
		service: service,
		project: project,
		region:  region,
	}, nil
}

// ListJobs returns active jobs plus jobs terminated within the last week,
// deduplicated by id, newest first.
func (d *Dataflow) ListJobs(ctx context.Context) ([]Job, error) {
	var all []*dataflow.Job
	for _, filter := range []string{"ACTIVE", "TERMINATED"} {
		jobs, err := d.listFiltered(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, jobs...)
	}

	cutoff := time.Now().UTC().Add(-jobWindow)
	seen := make(map[string]bool)

	var jobs []Job
	for _, j := range all {
		if j.Id == "" || seen[j.Id] {
			continue
		}
		seen[j.Id] = true

		created, err := time.Parse(time.RFC3339, j.CreateTime)
		if err != nil || created.Before(cutoff) {
			continue
		}

		jobs = append(jobs, Job{
			ID:         j.Id,
			Name:       j.Name,
			Type:       j.Type,
			State:      j.CurrentState,
			CreateTime: created,
		})
	}

	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreateTime.After(jobs[k].CreateTime) })

	return jobs, nil
}

func (d *Dataflow) listFiltered(ctx context.Context, filter string) ([]*dataflow.Job, error) {
	var jobs []*dataflow.Job

	pageToken := ""
	for {
		call := d.service.Projects.Locations.Jobs.List(d.project, d.region).
			PageSize(200).
			Filter(filter).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list %s jobs: %w", filter, err)
		}

		jobs = append(jobs, resp.Jobs...)
		if resp.NextPageToken == "" {
			return jobs, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (d *Dataflow) JobMetrics(ctx context.Context, jobID string) ([]Metric, error) {
	resp, err := d.service.Projects.Locations.Jobs.GetMetrics(d.project, d.region, jobID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for job %s: %w", jobID, err)
	}

	var metrics []Metric
	for _, update := range resp.Metrics {
		if update.Name == nil {
			continue
		}
		value, ok := update.Scalar.(float64)
		if !ok {
			continue
		}
		metrics = append(metrics, Metric{
			Name:       update.Name.Name,
			Value:      value,
			UpdateTime: update.UpdateTime,
		})
	}

	return metrics, nil
}

func (d *Dataflow) JobMessages(ctx context.Context, jobID string, max int64) ([]Message, error) {
	resp, err := d.service.Projects.Locations.Jobs.Messages.List(d.project, d.region, jobID).
		MinimumImportance("JOB_MESSAGE_BASIC").
		PageSize(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for job %s: %w", jobID, err)
	}

	messages := make([]Message, 0, len(resp.JobMessages))
	for _, m := range resp.JobMessages {
		messages = append(messages, Message{
			Time:       m.Time,
			Importance: m.MessageImportance,
			Text:       m.MessageText,
		})
	}

	return messages, nil
}
