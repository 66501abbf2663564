package services

import (
	"context"
	"errors"
	"sync"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
)

// fakeGitHub is a scriptable in-memory stand-in for the GitHub client.
type fakeGitHub struct {
	mu sync.Mutex

	headSHA string
	headErr error

	branches        map[string]string
	createBranchErr error

	committed    []committedFile
	failCommitAt int // 1-based commit call that fails; 0 = never

	pr          *models.PullRequestInfo
	createPRErr error
	createdPR   *prRequest

	labeled      map[int][]string
	addLabelsErr error

	openPRs []models.PullRequestInfo
	listErr error

	prByNumber       map[int]*models.PullRequestInfo
	getPRErr         error
	getPRCalls       int
	draftClearsAfter int // GetPR reports draft until this many calls have happened; 0 = draft flag taken from prByNumber

	prFiles      map[int][]string
	listFilesErr error

	contents   map[string][]byte // "path@ref"
	contentErr map[string]error
	exists     map[string]bool // "path@ref"
	existsErr  error

	login         string
	loginErr      error
	permission    string
	permissionErr error

	readyCalls   []string
	markReadyErr error
}

type committedFile struct {
	branch  string
	path    string
	message string
	content []byte
}

type prRequest struct {
	head  string
	base  string
	title string
	body  string
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		branches:   make(map[string]string),
		labeled:    make(map[int][]string),
		prByNumber: make(map[int]*models.PullRequestInfo),
		prFiles:    make(map[int][]string),
		contents:   make(map[string][]byte),
		contentErr: make(map[string]error),
		exists:     make(map[string]bool),
	}
}

func (f *fakeGitHub) GetBranchHead(_ context.Context, _ string) (string, error) {
	return f.headSHA, f.headErr
}

func (f *fakeGitHub) CreateBranch(_ context.Context, branch, sha string) error {
	if f.createBranchErr != nil {
		return f.createBranchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branches[branch] = sha
	return nil
}

func (f *fakeGitHub) CreateFile(_ context.Context, branch, path, message string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCommitAt > 0 && len(f.committed)+1 == f.failCommitAt {
		return errors.New("commit rejected")
	}
	f.committed = append(f.committed, committedFile{branch: branch, path: path, message: message, content: content})
	return nil
}

func (f *fakeGitHub) CreateDraftPR(_ context.Context, head, base, title, body string) (*models.PullRequestInfo, error) {
	if f.createPRErr != nil {
		return nil, f.createPRErr
	}
	f.createdPR = &prRequest{head: head, base: base, title: title, body: body}
	return f.pr, nil
}

func (f *fakeGitHub) AddLabels(_ context.Context, prNumber int, labels []string) error {
	if f.addLabelsErr != nil {
		return f.addLabelsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labeled[prNumber] = append(f.labeled[prNumber], labels...)
	return nil
}

func (f *fakeGitHub) ListOpenPRs(_ context.Context, _ string) ([]models.PullRequestInfo, error) {
	return f.openPRs, f.listErr
}

func (f *fakeGitHub) GetPR(_ context.Context, prNumber int) (*models.PullRequestInfo, error) {
	if f.getPRErr != nil {
		return nil, f.getPRErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.prByNumber[prNumber]
	if !ok {
		return nil, errors.New("no such pr")
	}
	f.getPRCalls++
	copied := *pr
	if f.draftClearsAfter > 0 {
		copied.Draft = f.getPRCalls <= f.draftClearsAfter
	}
	return &copied, nil
}

func (f *fakeGitHub) ListPRFiles(_ context.Context, prNumber, limit int) ([]string, error) {
	if f.listFilesErr != nil {
		return nil, f.listFilesErr
	}
	paths := f.prFiles[prNumber]
	if len(paths) > limit {
		paths = paths[:limit]
	}
	return paths, nil
}

func (f *fakeGitHub) GetFileContent(_ context.Context, path, ref string) ([]byte, error) {
	key := path + "@" + ref
	if err := f.contentErr[key]; err != nil {
		return nil, err
	}
	content, ok := f.contents[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return content, nil
}

func (f *fakeGitHub) PathExists(_ context.Context, path, ref string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.exists[path+"@"+ref], nil
}

func (f *fakeGitHub) AuthenticatedLogin(_ context.Context) (string, error) {
	return f.login, f.loginErr
}

func (f *fakeGitHub) PermissionLevel(_ context.Context, _ string) (string, error) {
	return f.permission, f.permissionErr
}

func (f *fakeGitHub) MarkReadyForReview(_ context.Context, nodeID string) error {
	if f.markReadyErr != nil {
		return f.markReadyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyCalls = append(f.readyCalls, nodeID)
	return nil
}

// testLogger discards everything.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{})        {}
func (testLogger) Info(string, ...interface{})         {}
func (testLogger) Warn(string, ...interface{})         {}
func (testLogger) Error(string, error, ...interface{}) {}
func (testLogger) Fatal(string, error, ...interface{}) {}

// noopMetrics discards everything.
type noopMetrics struct{}

func (noopMetrics) IncrementCounter(string, map[string]string)        {}
func (noopMetrics) RecordDuration(string, float64, map[string]string) {}
func (noopMetrics) SetGauge(string, float64, map[string]string)       {}
