package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"giv/internal/config"
	"giv/internal/git"
	"giv/internal/llm"
	"giv/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode_MapsErrorKinds(t *testing.T) {
	cases := map[int]error{
		exitFailure:       errors.New("anything else"),
		exitRevision:      &git.RevisionError{Spec: "nope", Err: errors.New("unresolvable")},
		exitSummarization: &llm.SummarizationError{Attempts: 3, Err: errors.New("api down")},
		exitOutput:        &output.OutputError{Path: "CHANGELOG.md", Err: errors.New("permission denied")},
	}
	for want, err := range cases {
		assert.Equal(t, want, exitCode(err))
	}
}

func TestDocCommand_UsesTypeTagAsName(t *testing.T) {
	for _, tag := range []string{"message", "summary", "changelog", "release-notes", "announcement"} {
		cmd := docCommand(tag, "short help")
		assert.Contains(t, cmd.Use, tag)
	}

	assert.Panics(t, func() { docCommand("not-a-type", "short help") })
}

func TestScaffold_CreatesConfigAndTemplatesDir(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, scaffold(root))

	assert.DirExists(t, filepath.Join(root, ".giv", "templates"))
	data, err := os.ReadFile(filepath.Join(root, config.DefaultPath))
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: openai")

	cfg, err := config.LoadConfig(filepath.Join(root, config.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.API.Provider)
	assert.Equal(t, "CHANGELOG.md", cfg.Output.ChangelogFile)
}

func TestScaffold_NeverOverwritesExistingConfig(t *testing.T) {
	root := t.TempDir()
	configFile := filepath.Join(root, config.DefaultPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configFile), 0755))
	custom := "api:\n  provider: ollama\n"
	require.NoError(t, os.WriteFile(configFile, []byte(custom), 0644))

	require.NoError(t, scaffold(root))

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}
