package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsconsole/bluegreen-manager/pkg/inspector"
	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
	"github.com/opsconsole/bluegreen-manager/pkg/store"
	"github.com/opsconsole/bluegreen-manager/pkg/workflow"
)

type proposeVersionRequest struct {
	// Slot is "blue", "green", or the indirect pickers "active"/"standby".
	Slot    string `json:"slot" binding:"required"`
	Version string `json:"version" binding:"required"`
}

type proposeFlipRequest struct {
	TurnOffStandbySwitch bool `json:"turnOffStandbySwitch"`
}

type proposeSwitchRequest struct {
	Slot  string `json:"slot" binding:"required"`
	State string `json:"state" binding:"required"`
}

type proposalResponse struct {
	Branch      string             `json:"branch"`
	PullRequest *store.PullRequest `json:"pullRequest"`
	NewActive   string             `json:"newActive,omitempty"`
}

func (s *Server) proposeVersion(c *gin.Context) {
	var req proposeVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot := req.Slot
	if picker := orchestrator.TargetPicker(slot); picker == orchestrator.PickActive || picker == orchestrator.PickStandby {
		resolved, err := s.orchestrator.ResolveTarget(c.Request.Context(), picker)
		if err != nil {
			abort(c, err)
			return
		}
		slot = string(resolved)
	}

	proposal, err := s.orchestrator.Propose(c.Request.Context(), orchestrator.VersionUpdate{
		Slot:    slot,
		Version: req.Version,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposalResponse{
		Branch:      proposal.Branch,
		PullRequest: proposal.PullRequest,
	})
}

func (s *Server) proposeFlip(c *gin.Context) {
	var req proposeFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := s.orchestrator.Propose(c.Request.Context(), orchestrator.AutoFlip{
		TurnOffStandbySwitch: req.TurnOffStandbySwitch,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposalResponse{
		Branch:      proposal.Branch,
		PullRequest: proposal.PullRequest,
		NewActive:   string(proposal.NewActive),
	})
}

func (s *Server) proposeSwitch(c *gin.Context) {
	var req proposeSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := s.orchestrator.Propose(c.Request.Context(), orchestrator.SwitchToggle{
		Slot:  req.Slot,
		State: req.State,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposalResponse{
		Branch:      proposal.Branch,
		PullRequest: proposal.PullRequest,
	})
}

func (s *Server) listApps(c *gin.Context) {
	ref, err := s.resolveRef(c)
	if err != nil {
		abort(c, err)
		return
	}

	apps, err := orchestrator.ListApps(c.Request.Context(), s.store, s.appsBasePath, ref)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

func (s *Server) listValues(c *gin.Context) {
	ref, err := s.resolveRef(c)
	if err != nil {
		abort(c, err)
		return
	}

	values, err := orchestrator.ListValuesFiles(c.Request.Context(), s.store, s.appsBasePath, c.Param("app"), ref)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"values": values})
}

func (s *Server) resolveRef(c *gin.Context) (string, error) {
	if ref := c.Query("ref"); ref != "" {
		return ref, nil
	}

	return s.store.DefaultRef(c.Request.Context())
}

type dispatchRequest struct {
	Ref    string            `json:"ref" binding:"required"`
	Inputs map[string]string `json:"inputs"`
}

func (s *Server) dispatchWorkflow(c *gin.Context) {
	if s.runner == nil {
		abort(c, fmt.Errorf("workflow dispatch: %w", store.ErrNotSupported))
		return
	}

	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.runner.Dispatch(c.Request.Context(), c.Param("id"), req.Ref, req.Inputs); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"dispatched": true})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.runner == nil {
		abort(c, fmt.Errorf("workflow runs: %w", store.ErrNotSupported))
		return
	}

	pageSize := 10
	if v := c.Query("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	runs, err := s.runner.ListRuns(c.Request.Context(), c.Param("id"), c.Query("ref"), pageSize)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) watchWorkflow(c *gin.Context) {
	if s.runner == nil {
		abort(c, fmt.Errorf("workflow watch: %w", store.ErrNotSupported))
		return
	}

	timeout := 120 * time.Second
	if v := c.Query("timeoutSeconds"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	result, err := workflow.NewWatcher(s.runner).WaitForCompletion(ctx, c.Param("id"), c.Query("ref"))
	if err != nil {
		abort(c, err)
		return
	}

	resp := gin.H{
		"completed": result.Completed,
		"run":       result.Run,
	}
	if result.Completed {
		log, err := s.runner.RunLog(c.Request.Context(), result.Run.ID)
		if err == nil {
			if url, ok := workflow.ExtractPullRequestURL(log); ok {
				resp["pullRequestUrl"] = url
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) listJobs(c *gin.Context) {
	if s.inspector == nil {
		abort(c, fmt.Errorf("job inspection: %w", store.ErrNotSupported))
		return
	}

	jobs, err := s.inspector.ListJobs(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) summarizeJob(c *gin.Context) {
	if s.inspector == nil || s.summarizer == nil {
		abort(c, fmt.Errorf("job summaries: %w", store.ErrNotSupported))
		return
	}

	jobID := c.Param("id")
	ctx := c.Request.Context()

	jobs, err := s.inspector.ListJobs(ctx)
	if err != nil {
		abort(c, err)
		return
	}

	var job *inspector.Job
	for i := range jobs {
		if jobs[i].ID == jobID {
			job = &jobs[i]
			break
		}
	}
	if job == nil {
		abort(c, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound))
		return
	}

	metrics, err := s.inspector.JobMetrics(ctx, jobID)
	if err != nil {
		abort(c, err)
		return
	}
	messages, err := s.inspector.JobMessages(ctx, jobID, 50)
	if err != nil {
		abort(c, err)
		return
	}

	summary, err := s.summarizer.Summarize(ctx, inspector.Report{
		Job:      *job,
		Metrics:  metrics,
		Messages: messages,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
