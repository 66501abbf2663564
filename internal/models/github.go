package models

import "time"

// PullRequestInfo is the slice of a GitHub pull request this service reads.
// NodeID is the GraphQL node identifier, distinct from the numeric Number;
// the ready-for-review mutation is addressed by it.
type PullRequestInfo struct {
	Number    int       `json:"number"`
	NodeID    string    `json:"node_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	Branch    string    `json:"branch"`
	BaseRef   string    `json:"base_ref"`
	Draft     bool      `json:"draft"`
	State     string    `json:"state"`
	Mergeable *bool     `json:"mergeable,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
