package git

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

type localChange struct {
	path string
	from *object.File
	to   *object.File
}

// syntheticCommit builds the pseudo-commit for uncommitted state: the diff of
// the working tree (including untracked files) or of the index against HEAD.
func (r *Repository) syntheticCommit(id string, paths []string) ([]Commit, error) {
	staged := id == Staged
	diff, err := r.localDiff(staged, paths)
	if err != nil {
		return nil, &RevisionError{Spec: id, Err: err}
	}
	c := syntheticStub(id)
	c.Diff = diff
	return []Commit{c}, nil
}

func syntheticStub(id string) Commit {
	if strings.TrimSpace(id) == "" {
		id = WorkingTree
	}
	message := "Uncommitted changes"
	if id == Staged {
		message = "Staged changes"
	}
	return Commit{
		ID:        id,
		ShortID:   id,
		Date:      time.Now(),
		Message:   message,
		Synthetic: true,
	}
}

func (r *Repository) localDiff(staged bool, paths []string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	status, err := wt.Status()
	if err != nil {
		return "", err
	}
	headTree, err := r.headTree()
	if err != nil && err != plumbing.ErrReferenceNotFound {
		return "", err
	}
	var idx *gitindex.Index
	if staged {
		idx, err = r.repo.Storer.Index()
		if err != nil {
			return "", err
		}
	}

	var selected []string
	for path, st := range status {
		include := false
		if staged {
			include = st.Staging != gitlib.Unmodified && st.Staging != gitlib.Untracked
		} else {
			include = st.Worktree != gitlib.Unmodified
		}
		if include && (len(paths) == 0 || matchPath(path, paths)) {
			selected = append(selected, path)
		}
	}
	sort.Strings(selected)

	var changes []localChange
	for _, path := range selected {
		fromFile, err := fileFromTree(headTree, path)
		if err != nil {
			return "", err
		}
		var toFile *object.File
		if staged {
			toFile, err = fileFromIndex(idx, r.repo, path)
		} else {
			toFile, err = fileFromDisk(r.path, path)
		}
		if err != nil {
			return "", err
		}
		if fromFile == nil && toFile == nil {
			continue
		}
		changes = append(changes, localChange{path: path, from: fromFile, to: toFile})
	}
	return renderLocalDiff(changes)
}

func (r *Repository) headTree() (*object.Tree, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	f, err := tree.File(path)
	if err == object.ErrFileNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func fileFromIndex(idx *gitindex.Index, repo *gitlib.Repository, path string) (*object.File, error) {
	if idx == nil || repo == nil {
		return nil, nil
	}
	entry, err := idx.Entry(path)
	if err == gitindex.ErrEntryNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	blob, err := object.GetBlob(repo.Storer, entry.Hash)
	if err != nil {
		return nil, err
	}
	return object.NewFile(entry.Name, entry.Mode, blob), nil
}

func fileFromDisk(root, path string) (*object.File, error) {
	if root == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	file, err := os.Open(filepath.Join(root, path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	mem := &plumbing.MemoryObject{}
	mem.SetType(plumbing.BlobObject)
	if _, err := mem.Write(data); err != nil {
		return nil, err
	}
	blob, err := object.DecodeBlob(mem)
	if err != nil {
		return nil, err
	}
	mode := filemode.Regular
	if info, err := file.Stat(); err == nil {
		if m, err := filemode.NewFromOSFileMode(info.Mode()); err == nil {
			mode = m
		}
	}
	return object.NewFile(path, mode, blob), nil
}

func renderLocalDiff(changes []localChange) (string, error) {
	var b strings.Builder
	for _, ch := range changes {
		if ch.path == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("diff --git a/%s b/%s\n", ch.path, ch.path))

		isBinary, err := binaryChange(ch)
		if err != nil {
			return "", err
		}
		if isBinary {
			b.WriteString("(binary files differ)\n")
			continue
		}

		fromLines, err := fileLines(ch.from)
		if err != nil {
			return "", err
		}
		toLines, err := fileLines(ch.to)
		if err != nil {
			return "", err
		}

		fromName := "a/" + ch.path
		if ch.from == nil {
			fromName = "/dev/null"
		}
		toName := "b/" + ch.path
		if ch.to == nil {
			toName = "/dev/null"
		}
		ud := difflib.UnifiedDiff{
			A:        fromLines,
			B:        toLines,
			FromFile: fromName,
			ToFile:   toName,
			Context:  3,
		}
		diffText, err := difflib.GetUnifiedDiffString(ud)
		if err != nil {
			return "", err
		}
		if diffText == "" {
			continue
		}
		b.WriteString(diffText)
		if !strings.HasSuffix(diffText, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func binaryChange(ch localChange) (bool, error) {
	for _, f := range []*object.File{ch.from, ch.to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return []string{}, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return difflib.SplitLines(content), nil
}
