package github

import (
	gogh "github.com/google/go-github/v68/github"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   map[string]interface{} `json:"data,omitempty"`
	Errors []graphqlError         `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

func toPullRequestInfo(pr *gogh.PullRequest) *models.PullRequestInfo {
	info := &models.PullRequestInfo{
		Number:    pr.GetNumber(),
		NodeID:    pr.GetNodeID(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		HTMLURL:   pr.GetHTMLURL(),
		Branch:    pr.GetHead().GetRef(),
		BaseRef:   pr.GetBase().GetRef(),
		Draft:     pr.GetDraft(),
		State:     pr.GetState(),
		Mergeable: pr.Mergeable,
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}

	for _, label := range pr.Labels {
		info.Labels = append(info.Labels, label.GetName())
	}

	return info
}
