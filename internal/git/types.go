package git

import (
	"fmt"
	"time"
)

// Sentinel revision expressions for uncommitted state. Commits produced for
// these are synthetic: regenerated on every invocation and never cached.
const (
	WorkingTree = "working-tree"
	Staged      = "staged"
)

// RevisionSpec identifies one commit, a range of commits, or one of the
// working-tree/staged sentinels, optionally restricted to path filters.
type RevisionSpec struct {
	Expr  string
	Paths []string
}

// Commit is a single recorded (or synthetic, uncommitted) change set with
// metadata and its diff against its logical predecessor.
type Commit struct {
	ID        string
	ShortID   string
	Author    string
	Date      time.Time
	Message   string
	Diff      string
	Synthetic bool
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// RevisionError reports an unparseable or unresolvable revision spec.
type RevisionError struct {
	Spec string
	Err  error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("cannot resolve revision %q: %v", e.Spec, e.Err)
}

func (e *RevisionError) Unwrap() error { return e.Err }
