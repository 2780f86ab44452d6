package summarize

import (
	"context"
	"log/slog"

	"giv/internal/cache"
	"giv/internal/git"
	"giv/internal/llm"
	"giv/internal/project"
	"giv/internal/template"
)

// PromptTemplate is the per-commit prompt rendered on every cache miss.
const PromptTemplate = "commit_summary_prompt.md"

// Summarizer produces one short summary per commit, consulting the cache
// before calling the language model. Synthetic commits (working tree, staged)
// are never looked up or stored.
type Summarizer struct {
	cache  *cache.Store
	gen    *llm.Generator
	engine *template.Engine
	meta   project.Metadata
	dryRun bool
}

func New(store *cache.Store, gen *llm.Generator, engine *template.Engine, meta project.Metadata, dryRun bool) *Summarizer {
	return &Summarizer{
		cache:  store,
		gen:    gen,
		engine: engine,
		meta:   meta,
		dryRun: dryRun,
	}
}

// Summarize returns the summary for one commit. In dry-run mode the rendered
// prompt stands in for the summary and the model is never contacted; dry-run
// results are not cached so real summaries are still generated later.
func (s *Summarizer) Summarize(ctx context.Context, commit git.Commit) (string, error) {
	if !commit.Synthetic {
		if summary, ok := s.cache.Get(commit.ID); ok {
			return summary, nil
		}
	}

	prompt, err := s.engine.Render(PromptTemplate, map[string]string{
		"PROJECT_TITLE":   s.meta.Title,
		"COMMIT_ID":       commit.ID,
		"SHORT_COMMIT_ID": commit.ShortID,
		"SUBJECT":         commit.Summary(),
		"AUTHOR":          commit.Author,
		"DATE":            commit.Date.Format("2006-01-02"),
		"MESSAGE":         commit.Message,
		"DIFF":            commit.Diff,
	})
	if err != nil {
		return "", err
	}

	if s.dryRun {
		return prompt, nil
	}

	summary, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if !commit.Synthetic {
		// Cache failures never abort the run; the summary is simply
		// regenerated next time.
		if err := s.cache.Put(commit.ID, summary); err != nil {
			slog.Warn("failed to cache commit summary", "commit", commit.ShortID, "error", err)
		}
	}
	return summary, nil
}

// SummarizeAll summarizes commits sequentially in the given order. The first
// failure aborts: no partial document is ever assembled from a mixture of
// summarized and unsummarized commits.
func (s *Summarizer) SummarizeAll(ctx context.Context, commits []git.Commit) ([]string, error) {
	summaries := make([]string, 0, len(commits))
	for _, commit := range commits {
		summary, err := s.Summarize(ctx, commit)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
