package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"giv/internal/cache"
	"giv/internal/config"
	"giv/internal/document"
	"giv/internal/git"
	"giv/internal/llm"
	"giv/internal/output"
	"giv/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "giv",
		Short:         "AI-powered commit documentation",
		Long:          "giv turns git history into commit messages, changelogs, release notes and announcements using an LLM.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath    string
	dryRun        bool
	outputFile    string
	outputMode    string
	outputVersion string
	apiProvider   string
	apiURL        string
	apiKey        string
	apiModel      string
	promptFile    string
)

// Exit codes, one per failure stage.
const (
	exitFailure       = 1
	exitRevision      = 2
	exitSummarization = 3
	exitOutput        = 4
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var revErr *git.RevisionError
	var sumErr *llm.SummarizationError
	var outErr *output.OutputError
	switch {
	case errors.As(err, &revErr):
		return exitRevision
	case errors.As(err, &sumErr):
		return exitSummarization
	case errors.As(err, &outErr):
		return exitOutput
	}
	return exitFailure
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to the configuration file (default .giv/config.yaml)")
	pf.BoolVar(&dryRun, "dry-run", false, "print the final prompt instead of calling the model")
	pf.StringVarP(&outputFile, "output-file", "o", "", "target file for the generated document")
	pf.StringVar(&outputMode, "output-mode", "", "merge mode: auto, prepend, append, update, overwrite, none")
	pf.StringVar(&outputVersion, "output-version", "", "version label used for section merging and versioned file names")
	pf.StringVar(&apiProvider, "api-provider", "", "model provider: gemini, openai, ollama")
	pf.StringVar(&apiURL, "api-url", "", "base URL of the model API")
	pf.StringVar(&apiKey, "api-key", "", "API key for the model provider")
	pf.StringVar(&apiModel, "api-model", "", "model name")

	rootCmd.AddCommand(docCommand("message", "Generate a commit message"))
	rootCmd.AddCommand(docCommand("summary", "Summarize the selected commits"))
	rootCmd.AddCommand(docCommand("changelog", "Generate or update a changelog section"))
	rootCmd.AddCommand(docCommand("release-notes", "Generate release notes"))
	rootCmd.AddCommand(docCommand("announcement", "Generate a release announcement"))

	documentCmd := generateCommand("document", "Generate a document from a custom prompt template", document.TypeCustom)
	documentCmd.Flags().StringVar(&promptFile, "prompt-file", "", "prompt template for the document (required)")
	rootCmd.AddCommand(documentCmd)

	rootCmd.AddCommand(initCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// docCommand builds a generation subcommand whose name doubles as the
// document type tag.
func docCommand(tag, short string) *cobra.Command {
	docType, err := document.ParseType(tag)
	if err != nil {
		panic(err)
	}
	return generateCommand(tag, short, docType)
}

// generateCommand builds one generation subcommand. The first positional
// argument is the revision (a single rev, a range, "working-tree" or
// "staged"); any further arguments restrict the diff to matching paths.
func generateCommand(use, short string, docType document.Type) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [revision] [path...]",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocument(cmd, docType, args)
		},
	}
}

func runDocument(cmd *cobra.Command, docType document.Type, args []string) error {
	if docType == document.TypeCustom && promptFile == "" {
		return fmt.Errorf("the document command requires --prompt-file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mode, err := output.ParseMode(outputMode)
	if err != nil {
		return err
	}

	p, err := pipeline.FromConfig(cmd.Context(), cfg, ".", docType, dryRun)
	if err != nil {
		return err
	}

	revision := ""
	var paths []string
	if len(args) > 0 {
		revision = args[0]
		paths = args[1:]
	}

	res, err := p.Run(cmd.Context(), pipeline.Request{
		DocType:      docType,
		Revision:     revision,
		Paths:        paths,
		TemplatePath: promptFile,
		OutputFile:   outputFile,
		OutputMode:   mode,
		Version:      outputVersion,
	})
	if err != nil {
		return err
	}

	if res.Merge.Written {
		fmt.Printf("✅ Wrote %s (%d commits)\n", res.Merge.Path, res.Commits)
		return nil
	}
	fmt.Println(res.Merge.Payload)
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiProvider != "" {
		cfg.API.Provider = apiProvider
	}
	if apiURL != "" {
		cfg.API.URL = apiURL
	}
	if apiKey != "" {
		cfg.API.Key = apiKey
	}
	if apiModel != "" {
		cfg.API.Model = apiModel
	}
	return cfg, nil
}

// starterConfig is the commented configuration written by `giv init`.
const starterConfig = `# giv configuration. Every value here can also be set through GIV_*
# environment variables (GIV_API_PROVIDER, GIV_API_KEY, GIV_API_MODEL, ...).
project:
  title: ""          # defaults to the detected project name
  version: ""        # defaults to the detected version or latest semver tag
api:
  provider: openai   # gemini, openai, ollama
  url: ""
  key: ""
  model: ""
  temperature: 0.9
  timeout_seconds: 60
cache:
  dir: .giv/cache
output:
  mode: auto
  changelog_file: CHANGELOG.md
  release_notes_file: "{VERSION}_release_notes.md"
  announcement_file: "{VERSION}_announcement.md"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .giv/ with a starter configuration and a templates directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if repo, err := git.Open("."); err == nil {
			root = repo.Path()
		}
		return scaffold(root)
	},
}

// scaffold creates .giv/config.yaml and .giv/templates/ under root. An
// existing config is left untouched.
func scaffold(root string) error {
	templatesDir := filepath.Join(root, ".giv", "templates")
	if err := os.MkdirAll(templatesDir, 0755); err != nil {
		return err
	}
	configFile := filepath.Join(root, config.DefaultPath)
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("Config already exists at %s, leaving it untouched\n", configFile)
		return nil
	}
	if err := os.WriteFile(configFile, []byte(starterConfig), 0644); err != nil {
		return err
	}
	fmt.Printf("📝 Created %s\n", configFile)
	fmt.Printf("📂 Project prompt templates go in %s\n", templatesDir)
	return nil
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit summary cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("🧹 Cleared cache at %s\n", store.Path())
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		fmt.Println(store.Path())
		return nil
	},
}

// openCacheStore resolves the configured cache directory against the
// repository root, falling back to the working directory outside a repo.
func openCacheStore() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dir := cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		root := "."
		if repo, err := git.Open("."); err == nil {
			root = repo.Path()
		}
		dir = filepath.Join(root, dir)
	}
	return cache.NewStore(dir), nil
}
