package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/prbody"
)

// RegistryService is the read path over published submissions: open labeled
// pull requests, their body metadata, and best-effort enrichment from the
// changed files themselves.
type RegistryService struct {
	github     interfaces.GitHubClient
	githubCfg  config.GitHubConfig
	submission config.SubmissionConfig
	logger     interfaces.Logger
	metrics    interfaces.MetricsCollector
}

// NewRegistryService creates a new registry service
func NewRegistryService(github interfaces.GitHubClient, githubCfg config.GitHubConfig, submissionCfg config.SubmissionConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *RegistryService {
	return &RegistryService{
		github:     github,
		githubCfg:  githubCfg,
		submission: submissionCfg,
		logger:     logger,
		metrics:    metrics,
	}
}

// List returns all open submission PRs against the base branch, metadata
// decoded from their bodies. Enrichment failures degrade to a sparser
// record, never to a failed listing.
func (s *RegistryService) List(ctx context.Context) ([]models.SubmissionPR, error) {
	start := time.Now()

	prs, err := s.github.ListOpenPRs(ctx, s.githubCfg.BaseBranch)
	if err != nil {
		s.metrics.IncrementCounter("submission_listings_total", map[string]string{"status": "error"})
		return nil, err
	}

	submissions := make([]models.SubmissionPR, 0)
	for _, pr := range prs {
		if !hasLabel(pr.Labels, s.submission.Label) {
			continue
		}

		meta := prbody.Decode(pr.Body)
		record := models.SubmissionPR{
			Number:     pr.Number,
			Title:      pr.Title,
			URL:        pr.HTMLURL,
			Branch:     pr.Branch,
			CreatedAt:  pr.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  pr.UpdatedAt.UTC().Format(time.RFC3339),
			IsDraft:    pr.Draft,
			State:      pr.State,
			Mergeable:  pr.Mergeable,
			Submitter:  meta.Submitter,
			Comments:   meta.Comments,
			TargetPath: meta.TargetPath,
			FileCount:  len(meta.Files),
			Files:      meta.Files,
		}

		teams, hasConflicts := s.enrich(ctx, pr)
		record.Teams = teams
		record.HasConflicts = hasConflicts

		submissions = append(submissions, record)
	}

	s.metrics.IncrementCounter("submission_listings_total", map[string]string{"status": "success"})
	s.metrics.RecordDuration("submission_listing_duration_seconds", time.Since(start).Seconds(), map[string]string{})
	s.logger.Info("Listed submissions", "open_prs", len(prs), "submissions", len(submissions))

	return submissions, nil
}

// fileFact is the per-file enrichment result. Skipped marks content that
// could not be read or parsed; the conflict check may still have succeeded.
type fileFact struct {
	conflict bool
	teams    []string
	skipped  string
}

// enrich scans a bounded prefix of the PR's changed files concurrently. The
// checks are read-only and independent, so ordering among them does not
// matter; results merge into a set union.
func (s *RegistryService) enrich(ctx context.Context, pr models.PullRequestInfo) ([]string, *bool) {
	paths, err := s.github.ListPRFiles(ctx, pr.Number, s.submission.EnrichmentCap)
	if err != nil {
		s.logger.Warn("Skipping enrichment for PR", "pr_number", pr.Number, "reason", err.Error())
		return nil, nil
	}

	facts := make([]fileFact, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			facts[i] = s.checkFile(ctx, pr, path)
		}(i, path)
	}
	wg.Wait()

	conflict := false
	teamSet := make(map[string]bool)
	for _, fact := range facts {
		if fact.skipped != "" {
			s.logger.Debug("Enrichment skipped for file", "pr_number", pr.Number, "reason", fact.skipped)
		}
		if fact.conflict {
			conflict = true
		}
		for _, team := range fact.teams {
			teamSet[team] = true
		}
	}

	var teams []string
	for team := range teamSet {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	return teams, &conflict
}

// checkFile runs both per-file checks: does the path already exist on the
// base branch, and which team names does the content carry.
func (s *RegistryService) checkFile(ctx context.Context, pr models.PullRequestInfo, path string) fileFact {
	var fact fileFact

	exists, err := s.github.PathExists(ctx, path, s.githubCfg.BaseBranch)
	if err == nil && exists {
		fact.conflict = true
	}

	content, err := s.github.GetFileContent(ctx, path, pr.Branch)
	if err != nil {
		fact.skipped = "unreadable content: " + err.Error()
		return fact
	}

	teams, err := extractTeams(content)
	if err != nil {
		fact.skipped = "unparsable content: " + err.Error()
		return fact
	}
	fact.teams = teams

	return fact
}

// extractTeams pulls team names out of a battle-result file: a "team"
// string, a "teams" array, or a "teams" array nested under the "data"
// wrapper.
func extractTeams(content []byte) ([]string, error) {
	var value map[string]interface{}
	if err := json.Unmarshal(content, &value); err != nil {
		return nil, err
	}

	var teams []string
	teams = append(teams, teamsFromObject(value)...)
	if wrapper, ok := value["data"].(map[string]interface{}); ok {
		teams = append(teams, teamsFromObject(wrapper)...)
	}
	return teams, nil
}

func teamsFromObject(obj map[string]interface{}) []string {
	var teams []string

	if team, ok := obj["team"].(string); ok && team != "" {
		teams = append(teams, team)
	}
	if list, ok := obj["teams"].([]interface{}); ok {
		for _, entry := range list {
			if team, ok := entry.(string); ok && team != "" {
				teams = append(teams, team)
			}
		}
	}

	return teams
}

func hasLabel(labels []string, want string) bool {
	for _, label := range labels {
		if label == want {
			return true
		}
	}
	return false
}
