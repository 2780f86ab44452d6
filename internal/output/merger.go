package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"giv/internal/document"
)

// OutputError reports a target document that could not be read or written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cannot write output to %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Result reports what Merge did. When Written is false the payload was not
// persisted and the caller is expected to display it.
type Result struct {
	Path    string
	Written bool
	Payload string
}

// Merge writes the payload into the document at path according to mode.
// Everything the mode does not touch is preserved byte for byte, and the
// write happens through a temp file plus atomic rename, so an interrupted
// run leaves the original file intact.
func Merge(path string, payload document.Payload, mode Mode) (Result, error) {
	mode = resolveMode(mode, payload.DocType)

	if mode == ModeNone || path == "" {
		return Result{Payload: payload.Body}, nil
	}

	existing, err := readExisting(path)
	if err != nil {
		return Result{}, &OutputError{Path: path, Err: err}
	}

	var content string
	switch mode {
	case ModeOverwrite:
		content = ensureTrailingNewline(payload.Body)
	case ModeAppend:
		content = appendContent(existing, payload.Body)
	case ModePrepend:
		content = prependContent(existing, payload.Body)
	case ModeUpdate:
		content = updateSection(existing, payload.Version, payload.Body)
	default:
		return Result{}, &OutputError{Path: path, Err: fmt.Errorf("unsupported output mode: %s", mode)}
	}

	if err := writeFileAtomic(path, content); err != nil {
		return Result{}, &OutputError{Path: path, Err: err}
	}
	return Result{Path: path, Written: true, Payload: payload.Body}, nil
}

func readExisting(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func appendContent(existing, body string) string {
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return existing + ensureTrailingNewline(body)
}

func prependContent(existing, body string) string {
	out := ensureTrailingNewline(body)
	if existing != "" {
		// The original content follows verbatim, one blank line below.
		out += "\n" + existing
	}
	return out
}

// updateSection replaces the body of the section whose header carries the
// version label, leaving every other line untouched. When no such section
// exists a new one is prepended, after a leading H1 title if the document
// has one. Running it twice with the same payload is a no-op the second
// time: the replacement is fully deterministic.
func updateSection(existing, version, body string) string {
	section := append([]string{"## " + version, ""}, strings.Split(strings.TrimSpace(body), "\n")...)
	section = append(section, "")

	if strings.TrimSpace(existing) == "" {
		return joinLines(section)
	}

	lines := strings.Split(strings.TrimRight(existing, "\n"), "\n")
	headerRe := sectionHeaderRe(version)

	for i, line := range lines {
		if !headerRe.MatchString(line) {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if strings.HasPrefix(lines[j], "## ") {
				end = j
				break
			}
		}
		replaced := append([]string{}, lines[:i]...)
		replaced = append(replaced, lines[i], "")
		replaced = append(replaced, strings.Split(strings.TrimSpace(body), "\n")...)
		replaced = append(replaced, "")
		replaced = append(replaced, lines[end:]...)
		return joinLines(replaced)
	}

	// No matching section: insert a new one near the top.
	insert := 0
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "# ") {
		insert = 1
		for insert < len(lines) && strings.TrimSpace(lines[insert]) == "" {
			insert++
		}
	}
	merged := append([]string{}, lines[:insert]...)
	if insert > 0 {
		merged = append(merged, "")
	}
	merged = append(merged, section[:len(section)-1]...)
	merged = append(merged, "")
	merged = append(merged, lines[insert:]...)
	return joinLines(merged)
}

func sectionHeaderRe(version string) *regexp.Regexp {
	return regexp.MustCompile(`^##\s+\[?` + regexp.QuoteMeta(version) + `\]?(\s|$)`)
}

func joinLines(lines []string) string {
	return ensureTrailingNewline(strings.TrimRight(strings.Join(lines, "\n"), "\n"))
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// writeFileAtomic writes content through a temp file in the target directory
// followed by a rename, creating parent directories as needed.
func writeFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
