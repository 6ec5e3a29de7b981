// Package changeset implements the branch-keyed changeset store (spec
// §4.D): one JSON file per branch, guarded by a per-branch advisory file
// lock, carrying a changeset through its
// Pending -> Merged -> PartiallyDeployed -> FullyDeployed state machine.
package changeset

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	werrors "github.com/foundryhq/workbay/internal/errors"
	"github.com/foundryhq/workbay/pkg/types"
	"github.com/gofrs/flock"
	"github.com/pmezard/go-difflib/difflib"
)

// Status is the changeset's position in its deployment lifecycle.
type Status string

const (
	StatusPending           Status = "pending"
	StatusMerged            Status = "merged"
	StatusPartiallyDeployed Status = "partially_deployed"
	StatusFullyDeployed     Status = "fully_deployed"
)

// Changeset is a recorded intent to bump one or more packages, pending
// release. Bump uses types.ChangeType, extended with ChangeTypeNone so a
// changeset can record packages touched with no version impact.
type Changeset struct {
	ID              string           `json:"id"`
	Branch          string           `json:"branch"`
	Bump            types.ChangeType `json:"bump"`
	Packages        []string         `json:"packages"`
	Environments    []string         `json:"environments,omitempty"`
	Commits         []string         `json:"commits,omitempty"`
	Summary         string           `json:"summary"`
	Status          Status           `json:"status"`
	DeployedEnvs    []string         `json:"deployed_envs,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	MergedAt        *time.Time       `json:"merged_at,omitempty"`
	FullyDeployedAt *time.Time       `json:"fully_deployed_at,omitempty"`
}

// New builds a Changeset for branch with a freshly generated ID,
// ready to be passed to Store.Create. Packages touched with no version
// impact should still be listed with bump types.ChangeTypeNone.
func New(branch string, bump types.ChangeType, packages, environments []string, summary string) (*Changeset, error) {
	id, err := generateID(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to generate changeset id: %w", err)
	}
	return &Changeset{
		ID:           id,
		Branch:       branch,
		Bump:         bump,
		Packages:     packages,
		Environments: environments,
		Summary:      summary,
		Status:       StatusPending,
	}, nil
}

// generateID mirrors the workspace's consignment ID format:
// YYYYMMDD-HHMMSS-<6 lowercase alphanumeric characters>.
func generateID(timestamp time.Time) (string, error) {
	dateTime := timestamp.Format("20060102-150405")

	randomBytes := make([]byte, 6)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range randomBytes {
		randomBytes[i] = charset[int(randomBytes[i])%len(charset)]
	}
	return fmt.Sprintf("%s-%s", dateTime, string(randomBytes)), nil
}

// AlreadyExistsError is returned by Create when a changeset already
// exists for the given branch.
type AlreadyExistsError struct {
	Branch string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("changeset already exists for branch %q", e.Branch)
}

// Store is a filesystem-backed, branch-keyed changeset store rooted at
// Dir (typically the configured changeset.path).
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir, creating the directory and its
// .archive subdirectory if they do not already exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, werrors.NewIOError("failed to create changeset directory", dir, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".archive"), 0755); err != nil {
		return nil, werrors.NewIOError("failed to create changeset archive directory", dir, err)
	}
	return &Store{Dir: dir}, nil
}

var sanitizeBranch = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizedFilename turns an arbitrary git branch name into a safe JSON
// filename, replacing path separators and other unsafe characters with a
// dash so "feature/foo bar" becomes "feature-foo-bar.json".
func sanitizedFilename(branch string) string {
	return sanitizeBranch.ReplaceAllString(branch, "-") + ".json"
}

func (s *Store) path(branch string) string {
	return filepath.Join(s.Dir, sanitizedFilename(branch))
}

func (s *Store) lock(branch string) *flock.Flock {
	return flock.New(s.path(branch) + ".lock")
}

// Create persists a new changeset for branch. Returns *AlreadyExistsError
// if one already exists; callers should use Update to modify it instead.
func (s *Store) Create(cs *Changeset) error {
	l := s.lock(cs.Branch)
	if err := l.Lock(); err != nil {
		return werrors.NewIOError("failed to acquire changeset lock", cs.Branch, err)
	}
	defer l.Unlock()

	if _, err := os.Stat(s.path(cs.Branch)); err == nil {
		return &AlreadyExistsError{Branch: cs.Branch}
	}

	now := time.Now().UTC()
	cs.CreatedAt = now
	cs.UpdatedAt = now
	if cs.Status == "" {
		cs.Status = StatusPending
	}

	return s.writeLocked(cs)
}

// Update overwrites the persisted changeset for cs.Branch. The branch
// must already have a changeset (use Create for the first write).
func (s *Store) Update(cs *Changeset) error {
	l := s.lock(cs.Branch)
	if err := l.Lock(); err != nil {
		return werrors.NewIOError("failed to acquire changeset lock", cs.Branch, err)
	}
	defer l.Unlock()

	if _, err := os.Stat(s.path(cs.Branch)); err != nil {
		return werrors.NewIOError("no changeset to update", cs.Branch, err)
	}

	cs.UpdatedAt = time.Now().UTC()
	return s.writeLocked(cs)
}

// Diff renders a unified diff between the JSON representation of two
// changesets, for `changeset update`'s confirmation prompt and for
// `bump --show-diff` previews of a changeset about to be archived.
func Diff(old, updated *Changeset) (string, error) {
	oldJSON, err := json.MarshalIndent(old, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal changeset: %w", err)
	}
	newJSON, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal changeset: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldJSON)),
		B:        difflib.SplitLines(string(newJSON)),
		FromFile: fmt.Sprintf("%s (before)", old.Branch),
		ToFile:   fmt.Sprintf("%s (after)", updated.Branch),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func (s *Store) writeLocked(cs *Changeset) error {
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal changeset: %w", err)
	}

	path := s.path(cs.Branch)
	tmp, err := os.CreateTemp(s.Dir, ".changeset-*.tmp")
	if err != nil {
		return werrors.NewIOError("failed to create temp file", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return werrors.NewIOError("failed to write temp file", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return werrors.NewIOError("failed to close temp file", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return werrors.NewIOError("failed to rename temp file", path, err)
	}
	return nil
}

// Load reads the changeset for branch, if one exists.
func (s *Store) Load(branch string) (*Changeset, error) {
	data, err := os.ReadFile(s.path(branch))
	if err != nil {
		return nil, werrors.NewIOError("failed to read changeset", branch, err)
	}
	var cs Changeset
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to parse changeset for branch %q: %w", branch, err)
	}
	return &cs, nil
}

// LoadAll reads every non-archived changeset in the store, in the
// directory's file-name order (the sanitised branch names).
func (s *Store) LoadAll() ([]*Changeset, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, werrors.NewIOError("failed to list changeset directory", s.Dir, err)
	}

	var all []*Changeset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		var cs Changeset
		if err := json.Unmarshal(data, &cs); err != nil {
			continue
		}
		all = append(all, &cs)
	}
	return all, nil
}

// Delete removes the persisted changeset for branch without archiving it.
func (s *Store) Delete(branch string) error {
	if err := os.Remove(s.path(branch)); err != nil && !os.IsNotExist(err) {
		return werrors.NewIOError("failed to delete changeset", branch, err)
	}
	os.Remove(s.path(branch) + ".lock")
	return nil
}

// Archive moves the persisted changeset for branch into the store's
// .archive subdirectory, stamped with the current time so repeated
// archiving of the same branch name never collides.
func (s *Store) Archive(branch string) error {
	src := s.path(branch)
	dst := filepath.Join(s.Dir, ".archive", fmt.Sprintf("%s.%d.json", sanitizeBranch.ReplaceAllString(branch, "-"), time.Now().UTC().Unix()))
	if err := os.Rename(src, dst); err != nil {
		return werrors.NewIOError("failed to archive changeset", branch, err)
	}
	os.Remove(s.path(branch) + ".lock")
	return nil
}

// allowedTransitions enumerates the valid Status state machine edges.
// PartiallyDeployed -> Pending is allowed only as a full rollback.
var allowedTransitions = map[Status][]Status{
	StatusPending:           {StatusMerged},
	StatusMerged:            {StatusPartiallyDeployed, StatusFullyDeployed},
	StatusPartiallyDeployed: {StatusPartiallyDeployed, StatusFullyDeployed, StatusPending},
	StatusFullyDeployed:     {},
}

// Check validates that transitioning cs to next is legal, returning a
// VersionError describing the violation if not.
func Check(cs *Changeset, next Status) error {
	for _, allowed := range allowedTransitions[cs.Status] {
		if allowed == next {
			return nil
		}
	}
	return werrors.NewVersionError(fmt.Sprintf("illegal changeset transition %s -> %s for branch %q", cs.Status, next, cs.Branch), nil)
}

// Transition applies next to cs if legal, stamping the corresponding
// timestamp field.
func (cs *Changeset) Transition(next Status) error {
	if err := Check(cs, next); err != nil {
		return err
	}

	now := time.Now().UTC()
	switch next {
	case StatusMerged:
		cs.MergedAt = &now
	case StatusFullyDeployed:
		cs.FullyDeployedAt = &now
	case StatusPending:
		cs.MergedAt = nil
		cs.DeployedEnvs = nil
	}
	cs.Status = next
	cs.UpdatedAt = now
	return nil
}

// MarkEnvironmentDeployed records env as deployed and recomputes status:
// PartiallyDeployed until every declared environment has deployed, then
// FullyDeployed.
func (cs *Changeset) MarkEnvironmentDeployed(env string, allEnvironments []string) error {
	for _, e := range cs.DeployedEnvs {
		if e == env {
			return nil // idempotent
		}
	}
	cs.DeployedEnvs = append(cs.DeployedEnvs, env)

	if len(allEnvironments) > 0 && allDeployed(cs.DeployedEnvs, allEnvironments) {
		return cs.Transition(StatusFullyDeployed)
	}
	return cs.Transition(StatusPartiallyDeployed)
}

func allDeployed(deployed, all []string) bool {
	set := make(map[string]bool, len(deployed))
	for _, d := range deployed {
		set[d] = true
	}
	for _, a := range all {
		if !set[a] {
			return false
		}
	}
	return true
}
