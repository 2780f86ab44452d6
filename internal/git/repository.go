package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository provides revision resolution and commit access for one local
// git repository.
type Repository struct {
	repo *gitlib.Repository
	path string
}

func Open(repoPath string) (*Repository, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Repository{repo: repo, path: abs}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Resolve turns a revision spec into an ordered list of commits, each paired
// with its diff against its logical predecessor. Range results are returned
// oldest-first so downstream documents read as a chronological narrative.
// A valid range with zero commits resolves to an empty list, not an error.
func (r *Repository) Resolve(spec RevisionSpec) ([]Commit, error) {
	expr := strings.TrimSpace(spec.Expr)
	switch expr {
	case "", WorkingTree:
		return r.syntheticCommit(WorkingTree, spec.Paths)
	case Staged:
		return r.syntheticCommit(Staged, spec.Paths)
	}
	if strings.Contains(expr, "..") {
		return r.rangeCommits(expr, spec.Paths)
	}
	return r.singleCommit(expr, spec.Paths)
}

func (r *Repository) singleCommit(expr string, paths []string) ([]Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(expr))
	if err != nil {
		return nil, &RevisionError{Spec: expr, Err: err}
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, &RevisionError{Spec: expr, Err: err}
	}
	c, ok, err := r.commitWithDiff(commit, paths)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Commit{}, nil
	}
	return []Commit{c}, nil
}

func (r *Repository) rangeCommits(expr string, paths []string) ([]Commit, error) {
	var left, right string
	symmetric := false
	if idx := strings.Index(expr, "..."); idx >= 0 {
		left, right = expr[:idx], expr[idx+3:]
		symmetric = true
	} else {
		idx := strings.Index(expr, "..")
		left, right = expr[:idx], expr[idx+2:]
	}
	if left == "" || right == "" {
		return nil, &RevisionError{Spec: expr, Err: errors.New("range is missing an endpoint")}
	}

	leftSet, err := r.ancestorSet(left)
	if err != nil {
		return nil, &RevisionError{Spec: expr, Err: err}
	}
	rightSet, err := r.ancestorSet(right)
	if err != nil {
		return nil, &RevisionError{Spec: expr, Err: err}
	}

	// Two-dot: reachable from right but not from left. Three-dot: reachable
	// from either side but not from both (symmetric difference).
	var selected []plumbing.Hash
	for h := range rightSet {
		if _, common := leftSet[h]; !common {
			selected = append(selected, h)
		}
	}
	if symmetric {
		for h := range leftSet {
			if _, common := rightSet[h]; !common {
				selected = append(selected, h)
			}
		}
	}

	var commits []Commit
	for _, h := range selected {
		commit, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("load commit %s: %w", h, err)
		}
		c, ok, err := r.commitWithDiff(commit, paths)
		if err != nil {
			return nil, err
		}
		if ok {
			commits = append(commits, c)
		}
	}

	sort.Slice(commits, func(i, j int) bool {
		if commits[i].Date.Equal(commits[j].Date) {
			return commits[i].ID < commits[j].ID
		}
		return commits[i].Date.Before(commits[j].Date)
	})
	if commits == nil {
		commits = []Commit{}
	}
	return commits, nil
}

// ancestorSet returns every commit reachable from expr, including expr itself.
func (r *Repository) ancestorSet(expr string) (map[plumbing.Hash]struct{}, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(expr))
	if err != nil {
		return nil, err
	}
	start, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	set := make(map[plumbing.Hash]struct{})
	iter := object.NewCommitPreorderIter(start, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// commitWithDiff builds the Commit model for one git commit. When path
// filters are given and the commit touches none of them, ok is false.
func (r *Repository) commitWithDiff(commit *object.Commit, paths []string) (Commit, bool, error) {
	diff, touched, err := r.patchText(commit, paths)
	if err != nil {
		return Commit{}, false, err
	}
	if len(paths) > 0 && !touched {
		return Commit{}, false, nil
	}
	return Commit{
		ID:      commit.Hash.String(),
		ShortID: commit.Hash.String()[:7],
		Author:  commit.Author.Name,
		Date:    commit.Author.When,
		Message: strings.TrimRight(commit.Message, "\n"),
		Diff:    diff,
	}, true, nil
}

// patchText renders the unified diff of a commit against its first parent
// (the empty tree for root commits), restricted to the path filters.
func (r *Repository) patchText(commit *object.Commit, paths []string) (string, bool, error) {
	currentTree, err := commit.Tree()
	if err != nil {
		return "", false, err
	}
	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return "", false, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return "", false, err
		}
	}
	changes, err := object.DiffTree(parentTree, currentTree)
	if err != nil {
		return "", false, err
	}

	filtered := changes
	if len(paths) > 0 {
		filtered = nil
		for _, ch := range changes {
			if matchPath(ch.From.Name, paths) || matchPath(ch.To.Name, paths) {
				filtered = append(filtered, ch)
			}
		}
	}
	if len(filtered) == 0 {
		return "", false, nil
	}
	patch, err := filtered.Patch()
	if err != nil {
		return "", false, err
	}
	return patch.String(), true, nil
}

// matchPath reports whether a file path matches any of the filters, by exact
// match, directory prefix, or glob pattern.
func matchPath(path string, filters []string) bool {
	if path == "" {
		return false
	}
	for _, f := range filters {
		f = strings.TrimSuffix(f, "/")
		if f == "" {
			continue
		}
		if path == f || strings.HasPrefix(path, f+"/") {
			return true
		}
		if ok, err := filepath.Match(f, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Metadata returns the commit metadata for a single revision, used for
// template context. The sentinels resolve to synthetic metadata.
func (r *Repository) Metadata(expr string) (Commit, error) {
	switch strings.TrimSpace(expr) {
	case "", WorkingTree, Staged:
		head, err := r.repo.Head()
		if err != nil {
			return syntheticStub(expr), nil
		}
		commit, err := r.repo.CommitObject(head.Hash())
		if err != nil {
			return syntheticStub(expr), nil
		}
		c, _, err := r.commitWithDiff(commit, nil)
		return c, err
	}
	commits, err := r.singleCommit(expr, nil)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, &RevisionError{Spec: expr, Err: errors.New("no commit found")}
	}
	return commits[0], nil
}

// Branch returns the current branch short name, or empty when detached or
// the repository has no commits yet.
func (r *Repository) Branch() string {
	head, err := r.repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// Tags lists all tag short names in the repository.
func (r *Repository) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(tags)
	return tags, nil
}
