// Package pipeline ties the generation stages together: resolve the
// requested revisions, summarize each commit, assemble the document and
// merge it into the target file.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"giv/internal/cache"
	"giv/internal/config"
	"giv/internal/document"
	"giv/internal/git"
	"giv/internal/llm"
	"giv/internal/output"
	"giv/internal/project"
	"giv/internal/summarize"
	"giv/internal/template"
)

type Pipeline struct {
	repo       *git.Repository
	summarizer *summarize.Summarizer
	assembler  *document.Assembler
	cfg        *config.Config
	meta       project.Metadata
	dryRun     bool
}

func New(repo *git.Repository, summarizer *summarize.Summarizer, assembler *document.Assembler, cfg *config.Config, meta project.Metadata, dryRun bool) *Pipeline {
	return &Pipeline{
		repo:       repo,
		summarizer: summarizer,
		assembler:  assembler,
		cfg:        cfg,
		meta:       meta,
		dryRun:     dryRun,
	}
}

// FromConfig wires a pipeline from configuration: it opens the repository,
// detects project metadata and builds the model clients. The summarization
// stage keeps the configured temperature while the final document stage uses
// the temperature of the requested document type.
func FromConfig(ctx context.Context, cfg *config.Config, repoPath string, docType document.Type, dryRun bool) (*Pipeline, error) {
	repo, err := git.Open(repoPath)
	if err != nil {
		return nil, err
	}
	meta := project.Detect(repo.Path(), repo)
	if cfg.Project.Title != "" {
		meta.Title = cfg.Project.Title
	}
	if cfg.Project.Version != "" {
		meta.Version = cfg.Project.Version
	}

	timeout := time.Duration(cfg.API.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}

	// Dry runs never reach a model, so no provider client is built: they work
	// offline and without credentials.
	var summaryClient, docClient llm.Client = llm.DryRunClient{}, llm.DryRunClient{}
	if !dryRun {
		summaryClient, err = newClient(ctx, cfg, cfg.API.Temperature)
		if err != nil {
			return nil, err
		}
		docClient, err = newClient(ctx, cfg, docType.Temperature())
		if err != nil {
			return nil, err
		}
	}

	cacheDir := cfg.Cache.Dir
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(repo.Path(), cacheDir)
	}

	engine := template.NewEngine(repo.Path())
	summarizer := summarize.New(cache.NewStore(cacheDir), llm.NewGenerator(summaryClient, timeout), engine, meta, dryRun)
	assembler := document.New(llm.NewGenerator(docClient, timeout), engine, meta, dryRun)

	return New(repo, summarizer, assembler, cfg, meta, dryRun), nil
}

func newClient(ctx context.Context, cfg *config.Config, temperature float64) (llm.Client, error) {
	client, err := llm.New(ctx, llm.Options{
		Provider:    cfg.API.Provider,
		APIKey:      cfg.API.Key,
		Model:       cfg.API.Model,
		BaseURL:     cfg.API.URL,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.API.Provider, err)
	}
	return client, nil
}

type Request struct {
	DocType document.Type
	// Revision is a revision expression, range, or one of the synthetic
	// ids ("working-tree", "staged"). Empty means the working tree.
	Revision string
	Paths    []string
	// TemplatePath points at the prompt template for TypeCustom.
	TemplatePath string
	OutputFile   string
	OutputMode   output.Mode
	Version      string
}

type Result struct {
	Commits int
	Merge   output.Result
}

// Run executes the full generation flow for one document. The target file is
// only touched after every stage before it has succeeded.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	commits, err := p.repo.Resolve(git.RevisionSpec{Expr: req.Revision, Paths: req.Paths})
	if err != nil {
		return Result{}, err
	}

	summaries, err := p.summarizer.SummarizeAll(ctx, commits)
	if err != nil {
		return Result{}, err
	}

	payload, err := p.assembler.Assemble(ctx, document.Request{
		DocType:      req.DocType,
		TemplatePath: req.TemplatePath,
		Revision:     p.revisionLabel(req.Revision),
		Version:      p.version(req),
		Summaries:    summaries,
	})
	if err != nil {
		return Result{}, err
	}

	mode := req.OutputMode
	if mode == "" {
		mode, err = output.ParseMode(p.cfg.Output.Mode)
		if err != nil {
			return Result{}, err
		}
	}
	// A dry run renders the prompt as the payload; never let it reach the
	// target file.
	if p.dryRun {
		mode = output.ModeNone
	}

	merge, err := output.Merge(p.outputPath(req, payload.Version), payload, mode)
	if err != nil {
		return Result{}, err
	}
	return Result{Commits: len(commits), Merge: merge}, nil
}

// outputPath picks the target file: an explicit request wins, otherwise the
// configured per-type file with its {VERSION} placeholder expanded. Document
// types without a configured target are returned to the caller unwritten.
func (p *Pipeline) outputPath(req Request, version string) string {
	if req.OutputFile != "" {
		return expandVersion(req.OutputFile, version)
	}
	switch req.DocType {
	case document.TypeChangelog:
		return expandVersion(p.cfg.Output.ChangelogFile, version)
	case document.TypeReleaseNotes:
		return expandVersion(p.cfg.Output.ReleaseNotesFile, version)
	case document.TypeAnnouncement:
		return expandVersion(p.cfg.Output.AnnouncementFile, version)
	}
	return ""
}

// revisionLabel names the revision for document prompts. Uncommitted work is
// labeled with the current branch when one is checked out.
func (p *Pipeline) revisionLabel(revision string) string {
	revision = strings.TrimSpace(revision)
	switch revision {
	case "", git.WorkingTree, git.Staged:
		if branch := p.repo.Branch(); branch != "" {
			return branch
		}
		if revision == "" {
			return git.WorkingTree
		}
	}
	return revision
}

func (p *Pipeline) version(req Request) string {
	if req.Version != "" {
		return req.Version
	}
	return p.cfg.Output.Version
}

func expandVersion(pattern, version string) string {
	return strings.ReplaceAll(pattern, "{VERSION}", version)
}
