package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/prbody"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

var slugStripPattern = regexp.MustCompile(`[^a-z0-9\-_]+`)

// PublisherService orchestrates the publish sequence: branch creation, one
// commit per file, then a draft pull request. The sequence is not
// transactional; GitHub offers no way to make it so. A failure partway
// through leaves the branch (and any files committed so far) in place and is
// surfaced immediately. Nothing is retried and nothing is rolled back, so a
// transient failure can never produce duplicate branches or pull requests.
type PublisherService struct {
	github     interfaces.GitHubClient
	githubCfg  config.GitHubConfig
	submission config.SubmissionConfig
	logger     interfaces.Logger
	metrics    interfaces.MetricsCollector

	now func() time.Time
}

// NewPublisherService creates a new publisher service
func NewPublisherService(github interfaces.GitHubClient, githubCfg config.GitHubConfig, submissionCfg config.SubmissionConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *PublisherService {
	return &PublisherService{
		github:     github,
		githubCfg:  githubCfg,
		submission: submissionCfg,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Publish pushes a validated submission to GitHub and opens a draft PR.
// The returned ID is the branch name.
func (s *PublisherService) Publish(ctx context.Context, submission models.Submission) (*models.PublishResult, error) {
	start := time.Now()

	targetPath, err := cleanTargetPath(submission.TargetPath)
	if err != nil {
		return nil, err
	}

	branch := fmt.Sprintf("submission/%s-%d", slugify(submission.Name), s.now().UnixMilli())

	s.logger.Info("Publishing submission",
		"submitter", submission.Name,
		"branch", branch,
		"target_path", targetPath,
		"file_count", len(submission.Files),
	)

	baseSHA, err := s.github.GetBranchHead(ctx, s.githubCfg.BaseBranch)
	if err != nil {
		s.recordPublish(start, "error")
		s.logger.Error("Failed to resolve base branch", err, "base", s.githubCfg.BaseBranch)
		return nil, err
	}

	if err := s.github.CreateBranch(ctx, branch, baseSHA); err != nil {
		s.recordPublish(start, "error")
		s.logger.Error("Failed to create submission branch", err, "branch", branch)
		return nil, err
	}

	var fileNames []string
	for i, file := range submission.Files {
		content, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			s.recordPublish(start, "error")
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s: Content is not valid base64", file.Name))
		}

		path := fmt.Sprintf("%s/%s/%s", s.submission.DataRoot, targetPath, file.Name)
		message := fmt.Sprintf("Add battle results %s/%s", targetPath, file.Name)
		if err := s.github.CreateFile(ctx, branch, path, message, content); err != nil {
			s.recordPublish(start, "error")
			// Files 0..i-1 are already committed; the branch stays behind
			// as-is so a maintainer can inspect or delete it.
			s.logger.Error("Failed to commit submission file", err,
				"branch", branch,
				"path", path,
				"committed_files", i,
			)
			return nil, err
		}
		fileNames = append(fileNames, file.Name)
	}

	title := fmt.Sprintf("Submission from %s (%s)", submission.Name, pluralFiles(len(submission.Files)))
	body := prbody.Encode(prbody.Metadata{
		Submitter:  submission.Name,
		Comments:   submission.Comments,
		TargetPath: targetPath,
		Files:      fileNames,
	})

	pr, err := s.github.CreateDraftPR(ctx, branch, s.githubCfg.BaseBranch, title, body)
	if err != nil {
		s.recordPublish(start, "error")
		s.logger.Error("Failed to open draft pull request", err, "branch", branch)
		return nil, err
	}

	if err := s.github.AddLabels(ctx, pr.Number, []string{s.submission.Label}); err != nil {
		s.recordPublish(start, "error")
		s.logger.Error("Failed to label pull request", err, "pr_number", pr.Number)
		return nil, err
	}

	s.recordPublish(start, "success")
	s.logger.Info("Submission published",
		"branch", branch,
		"pr_number", pr.Number,
		"pr_url", pr.HTMLURL,
	)

	return &models.PublishResult{ID: branch, PRURL: pr.HTMLURL}, nil
}

func (s *PublisherService) recordPublish(start time.Time, status string) {
	labels := map[string]string{"status": status}
	s.metrics.IncrementCounter("submissions_published_total", labels)
	s.metrics.RecordDuration("submission_publish_duration_seconds", time.Since(start).Seconds(), map[string]string{})
}

// slugify normalizes a display name for use in a branch name: lower-case,
// runs of anything outside [a-z0-9-_] collapse to a single hyphen, leading
// and trailing hyphens are trimmed. An empty result falls back to "user".
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "user"
	}
	return slug
}

func cleanTargetPath(targetPath string) (string, error) {
	cleaned := strings.Trim(targetPath, "/")
	if cleaned == "" || strings.Contains(cleaned, "..") {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("Invalid target path %q", targetPath))
	}
	return cleaned, nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
