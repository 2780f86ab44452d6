package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.md
var defaults embed.FS

// Engine finds and renders prompt templates. Lookup order: explicit path,
// project-level .giv/templates/, user-level ~/.giv/templates/, then the
// defaults embedded in the binary.
type Engine struct {
	projectRoot string
}

func NewEngine(projectRoot string) *Engine {
	return &Engine{projectRoot: projectRoot}
}

// Load returns the template content for a name or explicit path.
func (e *Engine) Load(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasPrefix(name, ".") {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("template not found: %s", name)
		}
		return string(data), nil
	}

	if e.projectRoot != "" {
		data, err := os.ReadFile(filepath.Join(e.projectRoot, ".giv", "templates", name))
		if err == nil {
			return string(data), nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		data, err := os.ReadFile(filepath.Join(home, ".giv", "templates", name))
		if err == nil {
			return string(data), nil
		}
	}
	data, err := defaults.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return string(data), nil
}

// Render loads a template and substitutes context tokens.
func (e *Engine) Render(name string, context map[string]string) (string, error) {
	content, err := e.Load(name)
	if err != nil {
		return "", err
	}
	return RenderString(content, context), nil
}

// RenderString replaces every {{TOKEN}} occurrence with its context value.
// Unknown tokens are left intact so user templates degrade visibly rather
// than silently losing text.
func RenderString(content string, context map[string]string) string {
	pairs := make([]string, 0, len(context)*2)
	for key, value := range context {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
