package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"giv/internal/llm"
	"giv/internal/project"
	"giv/internal/template"
)

// Assembler combines ordered commit summaries with a document-type template
// and project metadata into the final content payload.
type Assembler struct {
	gen    *llm.Generator
	engine *template.Engine
	meta   project.Metadata
	dryRun bool
}

func New(gen *llm.Generator, engine *template.Engine, meta project.Metadata, dryRun bool) *Assembler {
	return &Assembler{gen: gen, engine: engine, meta: meta, dryRun: dryRun}
}

// Request describes one document to assemble.
type Request struct {
	DocType Type
	// TemplatePath is required for TypeCustom and ignored otherwise.
	TemplatePath string
	Revision     string
	Version      string
	Summaries    []string
}

// Assemble produces the document payload. An empty summary list never
// reaches the model: each document type has an explicit no-changes payload.
// In dry-run mode the final prompt itself is returned as the body.
func (a *Assembler) Assemble(ctx context.Context, req Request) (Payload, error) {
	version := req.Version
	if version == "" {
		version = a.meta.Version
	}
	payload := Payload{DocType: req.DocType, Version: version}

	if len(req.Summaries) == 0 {
		payload.Body = typeSpecs[req.DocType].noChanges
		return payload, nil
	}

	templateName := typeSpecs[req.DocType].template
	if req.DocType == TypeCustom {
		if req.TemplatePath == "" {
			return Payload{}, fmt.Errorf("custom documents require a template path")
		}
		templateName = req.TemplatePath
	}

	prompt, err := a.engine.Render(templateName, map[string]string{
		"PROJECT_TITLE": a.meta.Title,
		"VERSION":       version,
		"DATE":          time.Now().Format("2006-01-02"),
		"REVISION":      req.Revision,
		"SUMMARIES":     joinSummaries(req.Summaries),
	})
	if err != nil {
		return Payload{}, err
	}

	if a.dryRun {
		payload.Body = prompt
		return payload, nil
	}

	body, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return Payload{}, err
	}
	payload.Body = body
	return payload, nil
}

func joinSummaries(summaries []string) string {
	trimmed := make([]string, 0, len(summaries))
	for _, s := range summaries {
		trimmed = append(trimmed, strings.TrimSpace(s))
	}
	return strings.Join(trimmed, "\n\n---\n\n")
}
