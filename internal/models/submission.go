package models

// Submission represents one contributor upload, alive for the duration of a
// single publish call. Nothing here is persisted locally; after publish the
// pull request body is the only record of it.
type Submission struct {
	Name       string           `json:"name" validate:"required,min=1,max=80"`
	Comments   string           `json:"comments" validate:"max=500"`
	TargetPath string           `json:"targetPath" validate:"required"`
	Files      []SubmissionFile `json:"files" validate:"required,min=1,dive"`
}

// SubmissionFile is a single uploaded battle-result file. Content is the
// base64-encoded payload exactly as received from the browser.
type SubmissionFile struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
	Size    int64  `json:"size,omitempty"`
}

// PublishResult is returned on a successful publish. ID is the branch name,
// which doubles as the opaque submission identifier.
type PublishResult struct {
	ID    string `json:"id"`
	PRURL string `json:"prUrl"`
}

// SubmissionPR is the read-side view of a published submission: the open pull
// request plus the metadata decoded from its body and optional enrichment.
type SubmissionPR struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Branch       string   `json:"branch"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
	IsDraft      bool     `json:"isDraft"`
	State        string   `json:"state"`
	Mergeable    *bool    `json:"mergeable"`
	Submitter    string   `json:"submitter"`
	Comments     string   `json:"comments"`
	TargetPath   string   `json:"targetPath"`
	FileCount    int      `json:"fileCount"`
	Files        []string `json:"files"`
	Teams        []string `json:"teams,omitempty"`
	HasConflicts *bool    `json:"hasConflicts,omitempty"`
}

// MarkReadyResult reports the outcome of a draft conversion.
type MarkReadyResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AlreadyReady bool   `json:"alreadyReady,omitempty"`
}
