package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Gitlab implements DocumentStore and WorkflowRunner against a GitLab
// project. CI runs map onto pipelines: a project has a single pipeline
// definition, so the workflowID argument only matters for hosts with multiple
// workflow files and is ignored here.
type Gitlab struct {
	client  *gitlab.Client
	project string
}

type GitlabOptions struct {
	BaseURL string
	Token   string
	Project string
}

func NewGitlab(opts GitlabOptions) (*Gitlab, error) {
	client, err := gitlab.NewClient(opts.Token, gitlab.WithBaseURL(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &Gitlab{
		client:  client,
		project: opts.Project,
	}, nil
}

func (g *Gitlab) DefaultRef(ctx context.Context) (string, error) {
	return retryRead(ctx, func() (string, error) {
		project, resp, err := g.client.Projects.GetProject(g.project, nil, gitlab.WithContext(ctx))
		if err != nil {
			return "", gitlabError("failed to get project", resp, err)
		}

		return project.DefaultBranch, nil
	})
}

func (g *Gitlab) RefHead(ctx context.Context, ref string) (string, error) {
	return retryRead(ctx, func() (string, error) {
		branch, resp, err := g.client.Branches.GetBranch(g.project, ref, gitlab.WithContext(ctx))
		if err != nil {
			return "", gitlabError("failed to get branch head", resp, err)
		}

		return branch.Commit.ID, nil
	})
}

func (g *Gitlab) CreateBranch(ctx context.Context, newRef, fromRef string) error {
	_, resp, err := g.client.Branches.CreateBranch(g.project, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(newRef),
		Ref:    gitlab.Ptr(fromRef),
	}, gitlab.WithContext(ctx))
	if err != nil {
		// GitLab reports an existing branch as 400 rather than 409.
		if resp != nil && resp.StatusCode == http.StatusBadRequest && strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create branch %s: %w: %w", newRef, ErrConflict, err)
		}

		return gitlabError(fmt.Sprintf("failed to create branch %s", newRef), resp, err)
	}

	return nil
}

func (g *Gitlab) ReadFile(ctx context.Context, path, ref string) (*File, error) {
	return retryRead(ctx, func() (*File, error) {
		file, resp, err := g.client.RepositoryFiles.GetFile(g.project, path, &gitlab.GetFileOptions{
			Ref: gitlab.Ptr(ref),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError(fmt.Sprintf("failed to read %s", path), resp, err)
		}

		data, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}

		return &File{Data: data, Revision: file.LastCommitID}, nil
	})
}

func (g *Gitlab) WriteFile(ctx context.Context, path, message string, data []byte, ref, expectedRevision string) (string, error) {
	_, resp, err := g.client.RepositoryFiles.UpdateFile(g.project, path, &gitlab.UpdateFileOptions{
		Branch:        gitlab.Ptr(ref),
		CommitMessage: gitlab.Ptr(message),
		Encoding:      gitlab.Ptr("base64"),
		Content:       gitlab.Ptr(base64.StdEncoding.EncodeToString(data)),
		LastCommitID:  gitlab.Ptr(expectedRevision),
	}, gitlab.WithContext(ctx))
	if err != nil {
		// A stale LastCommitID comes back as 400, not 409.
		if resp != nil && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict) {
			return "", fmt.Errorf("failed to write %s: %w: %w", path, ErrConflict, err)
		}

		return "", gitlabError(fmt.Sprintf("failed to write %s", path), resp, err)
	}

	head, _, err := g.client.Branches.GetBranch(g.project, ref, gitlab.WithContext(ctx))
	if err != nil {
		// The commit landed; only the new revision tag is unknown.
		return "", nil
	}

	return head.Commit.ID, nil
}

func (g *Gitlab) CreatePullRequest(ctx context.Context, headRef, baseRef, title, body string) (*PullRequest, error) {
	mr, resp, err := g.client.MergeRequests.CreateMergeRequest(g.project, &gitlab.CreateMergeRequestOptions{
		SourceBranch: gitlab.Ptr(headRef),
		TargetBranch: gitlab.Ptr(baseRef),
		Title:        gitlab.Ptr(title),
		Description:  gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, gitlabError("failed to create merge request", resp, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("did not receive 201 CREATED status code: got %d", resp.StatusCode)
	}

	return &PullRequest{
		ID:    int64(mr.IID),
		URL:   mr.WebURL,
		Title: mr.Title,
	}, nil
}

func (g *Gitlab) ListDir(ctx context.Context, path, ref string) ([]DirEntry, error) {
	return retryRead(ctx, func() ([]DirEntry, error) {
		tree, resp, err := g.client.Repositories.ListTree(g.project, &gitlab.ListTreeOptions{
			Path: gitlab.Ptr(path),
			Ref:  gitlab.Ptr(ref),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError(fmt.Sprintf("failed to list %s", path), resp, err)
		}

		entries := make([]DirEntry, 0, len(tree))
		for _, node := range tree {
			entries = append(entries, DirEntry{
				Name: node.Name,
				Dir:  node.Type == "tree",
			})
		}

		return entries, nil
	})
}

func (g *Gitlab) Dispatch(ctx context.Context, workflowID, ref string, inputs map[string]string) error {
	variables := make([]*gitlab.PipelineVariableOptions, 0, len(inputs))
	for key, value := range inputs {
		variables = append(variables, &gitlab.PipelineVariableOptions{
			Key:   gitlab.Ptr(key),
			Value: gitlab.Ptr(value),
		})
	}

	_, resp, err := g.client.Pipelines.CreatePipeline(g.project, &gitlab.CreatePipelineOptions{
		Ref:       gitlab.Ptr(ref),
		Variables: &variables,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return gitlabError("failed to create pipeline", resp, err)
	}

	return nil
}

func (g *Gitlab) ListRuns(ctx context.Context, workflowID, ref string, pageSize int) ([]RunSummary, error) {
	opts := &gitlab.ListProjectPipelinesOptions{
		ListOptions: gitlab.ListOptions{PerPage: pageSize},
	}
	if ref != "" {
		opts.Ref = gitlab.Ptr(ref)
	}

	return retryRead(ctx, func() ([]RunSummary, error) {
		pipelines, resp, err := g.client.Pipelines.ListProjectPipelines(g.project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError("failed to list pipelines", resp, err)
		}

		runs := make([]RunSummary, 0, len(pipelines))
		for _, pipeline := range pipelines {
			runs = append(runs, RunSummary{
				ID:         int64(pipeline.ID),
				Status:     pipeline.Status,
				Conclusion: pipelineConclusion(pipeline.Status),
				URL:        pipeline.WebURL,
			})
		}

		return runs, nil
	})
}

func (g *Gitlab) RunLog(ctx context.Context, runID int64) (string, error) {
	return retryRead(ctx, func() (string, error) {
		jobs, resp, err := g.client.Jobs.ListPipelineJobs(g.project, int(runID), nil, gitlab.WithContext(ctx))
		if err != nil {
			return "", gitlabError("failed to list pipeline jobs", resp, err)
		}

		var log strings.Builder
		for _, job := range jobs {
			trace, resp, err := g.client.Jobs.GetTraceFile(g.project, job.ID, gitlab.WithContext(ctx))
			if err != nil {
				return "", gitlabError(fmt.Sprintf("failed to get trace for job %d", job.ID), resp, err)
			}

			data, err := io.ReadAll(trace)
			if err != nil {
				return "", fmt.Errorf("failed to read trace for job %d: %w", job.ID, err)
			}
			log.Write(data)
			log.WriteByte('\n')
		}

		return log.String(), nil
	})
}

// pipelineConclusion maps terminal pipeline statuses to a conclusion; a run
// still in progress has none.
func pipelineConclusion(status string) string {
	switch status {
	case "success", "failed", "canceled", "skipped":
		return status
	default:
		return ""
	}
}

func gitlabError(op string, resp *gitlab.Response, err error) error {
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case resp.StatusCode == http.StatusConflict:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
}
