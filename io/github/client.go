// Package github wraps the GitHub REST and GraphQL APIs for a single
// owner/repo pair. Every method is one remote call; orchestration lives in
// internal/services.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gogh "github.com/google/go-github/v68/github"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

type Client struct {
	gh      *gogh.Client
	graphql *resty.Client
	config  config.GitHubConfig
	logger  interfaces.Logger
	metrics interfaces.MetricsCollector
}

// NewClient creates a GitHub client authenticated with the given token.
// The publish path uses the bot token from config; admin handlers construct
// one per request from the caller's bearer token.
func NewClient(cfg config.GitHubConfig, token string, logger interfaces.Logger, metrics interfaces.MetricsCollector) *Client {
	gh := gogh.NewClient(nil).WithAuthToken(token)
	if cfg.APIBaseURL != "" && cfg.APIBaseURL != "https://api.github.com" {
		if base, err := url.Parse(strings.TrimSuffix(cfg.APIBaseURL, "/") + "/"); err == nil {
			gh.BaseURL = base
		}
	}

	graphql := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetBaseURL(strings.TrimSuffix(cfg.APIBaseURL, "/"))

	return &Client{
		gh:      gh,
		graphql: graphql,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// GetBranchHead returns the commit SHA the branch ref currently points at.
func (c *Client) GetBranchHead(ctx context.Context, branch string) (string, error) {
	start := time.Now()
	ref, _, err := c.gh.Git.GetRef(ctx, c.config.Owner, c.config.Repo, "heads/"+branch)
	c.recordCall("get_branch_head", start, err)
	if err != nil {
		return "", c.wrapErr(err)
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates a new branch ref pointing at sha. Single-shot; the
// caller never retries a failed create.
func (c *Client) CreateBranch(ctx context.Context, branch, sha string) error {
	start := time.Now()
	_, _, err := c.gh.Git.CreateRef(ctx, c.config.Owner, c.config.Repo, &gogh.Reference{
		Ref:    gogh.Ptr("refs/heads/" + branch),
		Object: &gogh.GitObject{SHA: gogh.Ptr(sha)},
	})
	c.recordCall("create_branch", start, err)
	if err != nil {
		return c.wrapErr(err)
	}
	return nil
}

// CreateFile commits content to path on branch with its own commit message.
func (c *Client) CreateFile(ctx context.Context, branch, path, message string, content []byte) error {
	start := time.Now()
	_, _, err := c.gh.Repositories.CreateFile(ctx, c.config.Owner, c.config.Repo, path, &gogh.RepositoryContentFileOptions{
		Message: gogh.Ptr(message),
		Content: content,
		Branch:  gogh.Ptr(branch),
	})
	c.recordCall("create_file", start, err)
	if err != nil {
		return c.wrapErr(err)
	}
	return nil
}

// CreateDraftPR opens a draft pull request from head into base.
func (c *Client) CreateDraftPR(ctx context.Context, head, base, title, body string) (*models.PullRequestInfo, error) {
	start := time.Now()
	pr, _, err := c.gh.PullRequests.Create(ctx, c.config.Owner, c.config.Repo, &gogh.NewPullRequest{
		Title: gogh.Ptr(title),
		Body:  gogh.Ptr(body),
		Head:  gogh.Ptr(head),
		Base:  gogh.Ptr(base),
		Draft: gogh.Ptr(true),
	})
	c.recordCall("create_draft_pr", start, err)
	if err != nil {
		return nil, c.wrapErr(err)
	}
	return toPullRequestInfo(pr), nil
}

// AddLabels attaches labels to a pull request (via its issue number).
func (c *Client) AddLabels(ctx context.Context, prNumber int, labels []string) error {
	start := time.Now()
	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, c.config.Owner, c.config.Repo, prNumber, labels)
	c.recordCall("add_labels", start, err)
	if err != nil {
		return c.wrapErr(err)
	}
	return nil
}

// ListOpenPRs returns all open pull requests against base, labels included.
func (c *Client) ListOpenPRs(ctx context.Context, base string) ([]models.PullRequestInfo, error) {
	start := time.Now()
	opts := &gogh.PullRequestListOptions{
		State:       "open",
		Base:        base,
		ListOptions: gogh.ListOptions{PerPage: 100},
	}

	var result []models.PullRequestInfo
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.config.Owner, c.config.Repo, opts)
		if err != nil {
			c.recordCall("list_open_prs", start, err)
			return nil, c.wrapErr(err)
		}
		for _, pr := range prs {
			result = append(result, *toPullRequestInfo(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.recordCall("list_open_prs", start, nil)
	return result, nil
}

// GetPR fetches a single pull request by number.
func (c *Client) GetPR(ctx context.Context, prNumber int) (*models.PullRequestInfo, error) {
	start := time.Now()
	pr, _, err := c.gh.PullRequests.Get(ctx, c.config.Owner, c.config.Repo, prNumber)
	c.recordCall("get_pr", start, err)
	if err != nil {
		return nil, c.wrapErr(err)
	}
	return toPullRequestInfo(pr), nil
}

// ListPRFiles returns up to limit changed file paths for a pull request.
func (c *Client) ListPRFiles(ctx context.Context, prNumber, limit int) ([]string, error) {
	start := time.Now()
	files, _, err := c.gh.PullRequests.ListFiles(ctx, c.config.Owner, c.config.Repo, prNumber, &gogh.ListOptions{
		PerPage: limit,
	})
	c.recordCall("list_pr_files", start, err)
	if err != nil {
		return nil, c.wrapErr(err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if len(paths) >= limit {
			break
		}
		paths = append(paths, f.GetFilename())
	}
	return paths, nil
}

// GetFileContent fetches and decodes a file's content at ref.
func (c *Client) GetFileContent(ctx context.Context, path, ref string) ([]byte, error) {
	start := time.Now()
	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.config.Owner, c.config.Repo, path, &gogh.RepositoryContentGetOptions{
		Ref: ref,
	})
	c.recordCall("get_file_content", start, err)
	if err != nil {
		return nil, c.wrapErr(err)
	}
	if file == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("%s is not a file", path))
	}

	// GetContent handles base64 decoding internally.
	content, err := file.GetContent()
	if err != nil {
		return nil, pkgerrors.NewExternalError("github", fmt.Sprintf("decoding content for %s", path)).WithCause(err)
	}
	return []byte(content), nil
}

// PathExists reports whether path exists at ref. A 404 is a definitive no,
// not an error.
func (c *Client) PathExists(ctx context.Context, path, ref string) (bool, error) {
	start := time.Now()
	_, _, resp, err := c.gh.Repositories.GetContents(ctx, c.config.Owner, c.config.Repo, path, &gogh.RepositoryContentGetOptions{
		Ref: ref,
	})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		c.recordCall("path_exists", start, nil)
		return false, nil
	}
	c.recordCall("path_exists", start, err)
	if err != nil {
		return false, c.wrapErr(err)
	}
	return true, nil
}

// AuthenticatedLogin returns the login of the token's user.
func (c *Client) AuthenticatedLogin(ctx context.Context) (string, error) {
	start := time.Now()
	user, _, err := c.gh.Users.Get(ctx, "")
	c.recordCall("authenticated_login", start, err)
	if err != nil {
		return "", c.wrapErr(err)
	}
	return user.GetLogin(), nil
}

// PermissionLevel returns the repository permission of login
// ("admin", "write", "read" or "none").
func (c *Client) PermissionLevel(ctx context.Context, login string) (string, error) {
	start := time.Now()
	level, _, err := c.gh.Repositories.GetPermissionLevel(ctx, c.config.Owner, c.config.Repo, login)
	c.recordCall("permission_level", start, err)
	if err != nil {
		return "", c.wrapErr(err)
	}
	return level.GetPermission(), nil
}

// MarkReadyForReview issues the markPullRequestReadyForReview GraphQL
// mutation. The PR is addressed by its opaque node ID, never computed locally.
func (c *Client) MarkReadyForReview(ctx context.Context, nodeID string) error {
	start := time.Now()

	req := graphqlRequest{
		Query: `mutation($id: ID!) {
  markPullRequestReadyForReview(input: {pullRequestId: $id}) {
    pullRequest { id isDraft }
  }
}`,
		Variables: map[string]interface{}{"id": nodeID},
	}

	var gqlResp graphqlResponse
	resp, err := c.graphql.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&gqlResp).
		Post("/graphql")
	c.recordCall("mark_ready_for_review", start, err)

	if err != nil {
		return pkgerrors.NewExternalError("github", err.Error()).WithCause(err)
	}
	if resp.IsError() {
		return pkgerrors.NewUpstreamError("github", resp.StatusCode(), string(resp.Body()))
	}
	if len(gqlResp.Errors) > 0 {
		return pkgerrors.NewExternalError("github", gqlResp.Errors[0].Message)
	}
	return nil
}

func (c *Client) recordCall(operation string, start time.Time, err error) {
	labels := map[string]string{
		"service":   "github",
		"operation": operation,
	}
	c.metrics.RecordDuration("github_request_duration_seconds", time.Since(start).Seconds(), labels)

	status := "success"
	if err != nil {
		status = "error"
	}
	labels["status"] = status
	c.metrics.IncrementCounter("github_requests_total", labels)
}

// wrapErr maps go-github errors to the AppError taxonomy, preserving the
// remote status code for upstream failures.
func (c *Client) wrapErr(err error) error {
	var rateErr *gogh.RateLimitError
	if errors.As(err, &rateErr) {
		return pkgerrors.NewRateLimitError("github")
	}

	var ghErr *gogh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return pkgerrors.NewUpstreamError("github", ghErr.Response.StatusCode, ghErr.Message).WithCause(err)
	}

	return pkgerrors.NewExternalError("github", err.Error()).WithCause(err)
}
