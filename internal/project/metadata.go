package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"giv/internal/git"
)

// Metadata holds the project title and version used for template tokens and
// version-templated output file names.
type Metadata struct {
	Title   string
	Version string
}

var (
	tomlNameRe    = regexp.MustCompile(`(?m)^\s*name\s*=\s*"([^"]+)"`)
	tomlVersionRe = regexp.MustCompile(`(?m)^\s*version\s*=\s*"([^"]+)"`)
	goModuleRe    = regexp.MustCompile(`(?m)^module\s+(\S+)`)
	semverTagRe   = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)
)

// Detect derives the project title and version from well-known manifest files
// at the repository root, falling back to the directory name and the highest
// semver tag. Detection never fails; missing information degrades to
// placeholder values.
func Detect(root string, repo *git.Repository) Metadata {
	meta := Metadata{}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			meta.Title = pkg.Name
			meta.Version = pkg.Version
		}
	}
	if meta.Title == "" || meta.Version == "" {
		for _, name := range []string{"pyproject.toml", "Cargo.toml"} {
			data, err := os.ReadFile(filepath.Join(root, name))
			if err != nil {
				continue
			}
			if meta.Title == "" {
				if m := tomlNameRe.FindSubmatch(data); m != nil {
					meta.Title = string(m[1])
				}
			}
			if meta.Version == "" {
				if m := tomlVersionRe.FindSubmatch(data); m != nil {
					meta.Version = string(m[1])
				}
			}
			if meta.Title != "" && meta.Version != "" {
				break
			}
		}
	}
	if meta.Title == "" {
		if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
			if m := goModuleRe.FindSubmatch(data); m != nil {
				meta.Title = filepath.Base(string(m[1]))
			}
		}
	}
	if meta.Title == "" {
		meta.Title = filepath.Base(root)
	}
	if meta.Version == "" && repo != nil {
		meta.Version = latestSemverTag(repo)
	}
	if meta.Version == "" {
		meta.Version = "unknown"
	}
	return meta
}

// latestSemverTag returns the highest version-looking tag, leading "v"
// stripped. Tags sorts lexically, which is good enough within one major.
func latestSemverTag(repo *git.Repository) string {
	tags, err := repo.Tags()
	if err != nil {
		return ""
	}
	latest := ""
	for _, tag := range tags {
		if semverTagRe.MatchString(tag) {
			latest = tag
		}
	}
	return strings.TrimPrefix(latest, "v")
}
