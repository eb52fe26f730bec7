package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"code.gitea.io/sdk/gitea"
)

// Gitea implements DocumentStore against a Gitea instance. The SDK carries
// the request context on the client rather than per call, so every method
// installs its context before calling out.
type Gitea struct {
	client *gitea.Client
	owner  string
	repo   string
}

type GiteaOptions struct {
	BaseURL string
	Token   string
	Owner   string
	Repo    string
}

func NewGitea(opts GiteaOptions) (*Gitea, error) {
	client, err := gitea.NewClient(opts.BaseURL, gitea.SetToken(opts.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to create gitea client: %w", err)
	}

	return &Gitea{
		client: client,
		owner:  opts.Owner,
		repo:   opts.Repo,
	}, nil
}

func (g *Gitea) DefaultRef(ctx context.Context) (string, error) {
	g.client.SetContext(ctx)

	return retryRead(ctx, func() (string, error) {
		repo, resp, err := g.client.GetRepo(g.owner, g.repo)
		if err != nil {
			return "", giteaError("failed to get repository", resp, err)
		}

		return repo.DefaultBranch, nil
	})
}

func (g *Gitea) RefHead(ctx context.Context, ref string) (string, error) {
	g.client.SetContext(ctx)

	return retryRead(ctx, func() (string, error) {
		branch, resp, err := g.client.GetRepoBranch(g.owner, g.repo, ref)
		if err != nil {
			return "", giteaError("failed to get branch head", resp, err)
		}

		return branch.Commit.ID, nil
	})
}

func (g *Gitea) CreateBranch(ctx context.Context, newRef, fromRef string) error {
	g.client.SetContext(ctx)

	_, resp, err := g.client.CreateBranch(g.owner, g.repo, gitea.CreateBranchOption{
		BranchName:    newRef,
		OldBranchName: fromRef,
	})
	if err != nil {
		return giteaError(fmt.Sprintf("failed to create branch %s", newRef), resp, err)
	}

	return nil
}

func (g *Gitea) ReadFile(ctx context.Context, path, ref string) (*File, error) {
	g.client.SetContext(ctx)

	return retryRead(ctx, func() (*File, error) {
		contents, resp, err := g.client.GetContents(g.owner, g.repo, ref, path)
		if err != nil {
			return nil, giteaError(fmt.Sprintf("failed to read %s", path), resp, err)
		}
		if contents.Content == nil {
			return nil, fmt.Errorf("%s is not a file: %w", path, ErrInvalidArgument)
		}

		data, err := base64.StdEncoding.DecodeString(*contents.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}

		return &File{Data: data, Revision: contents.SHA}, nil
	})
}

func (g *Gitea) WriteFile(ctx context.Context, path, message string, data []byte, ref, expectedRevision string) (string, error) {
	g.client.SetContext(ctx)

	written, resp, err := g.client.UpdateFile(g.owner, g.repo, path, gitea.UpdateFileOptions{
		FileOptions: gitea.FileOptions{
			Message:    message,
			BranchName: ref,
		},
		SHA:     expectedRevision,
		Content: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", giteaError(fmt.Sprintf("failed to write %s", path), resp, err)
	}
	if written.Content == nil {
		return "", nil
	}

	return written.Content.SHA, nil
}

func (g *Gitea) CreatePullRequest(ctx context.Context, headRef, baseRef, title, body string) (*PullRequest, error) {
	g.client.SetContext(ctx)

	pr, resp, err := g.client.CreatePullRequest(g.owner, g.repo, gitea.CreatePullRequestOption{
		Head:  headRef,
		Base:  baseRef,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return nil, giteaError("failed to create pull request", resp, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("did not receive 201 CREATED status code: got %d", resp.StatusCode)
	}

	return &PullRequest{
		ID:    pr.Index,
		URL:   pr.HTMLURL,
		Title: pr.Title,
	}, nil
}

func (g *Gitea) ListDir(ctx context.Context, path, ref string) ([]DirEntry, error) {
	g.client.SetContext(ctx)

	return retryRead(ctx, func() ([]DirEntry, error) {
		contents, resp, err := g.client.ListContents(g.owner, g.repo, ref, path)
		if err != nil {
			return nil, giteaError(fmt.Sprintf("failed to list %s", path), resp, err)
		}

		entries := make([]DirEntry, 0, len(contents))
		for _, item := range contents {
			entries = append(entries, DirEntry{
				Name: item.Name,
				Dir:  item.Type == "dir",
			})
		}

		return entries, nil
	})
}

func giteaError(op string, resp *gitea.Response, err error) error {
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
}
