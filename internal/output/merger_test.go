package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"giv/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(docType document.Type, version, body string) document.Payload {
	return document.Payload{DocType: docType, Version: version, Body: body}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMerge_NoneReturnsPayloadWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	res, err := Merge(path, payload(document.TypeMessage, "1.0.0", "commit message"), ModeNone)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, "commit message", res.Payload)
	assert.NoFileExists(t, path)
}

func TestMerge_OverwriteReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NOTES.md")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0644))

	res, err := Merge(path, payload(document.TypeReleaseNotes, "1.0.0", "new content"), ModeOverwrite)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, "new content\n", readFile(t, path))
}

func TestMerge_OverwriteCreatesMissingFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "notes", "RELEASE.md")

	_, err := Merge(path, payload(document.TypeReleaseNotes, "1.0.0", "content"), ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, "content\n", readFile(t, path))
}

func TestMerge_AppendKeepsOriginalPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOG.md")
	original := "# Log\n\nfirst entry\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	_, err := Merge(path, payload(document.TypeCustom, "1.0.0", "second entry"), ModeAppend)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.True(t, strings.HasPrefix(got, original), "original content must be an untouched prefix")
	assert.Equal(t, original+"second entry\n", got)
}

func TestMerge_AppendToMissingFileCreatesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOG.md")

	_, err := Merge(path, payload(document.TypeCustom, "1.0.0", "only entry"), ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, "only entry\n", readFile(t, path))
}

func TestMerge_Prepend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOG.md")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0644))

	_, err := Merge(path, payload(document.TypeCustom, "1.0.0", "newest"), ModePrepend)
	require.NoError(t, err)
	assert.Equal(t, "newest\n\nexisting\n", readFile(t, path))
}

func TestMerge_PrependKeepsOriginalBytesIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOG.md")
	existing := "\n\n# Log with leading blank lines\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	_, err := Merge(path, payload(document.TypeCustom, "1.0.0", "newest"), ModePrepend)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.True(t, strings.HasPrefix(got, "newest\n"))
	assert.True(t, strings.HasSuffix(got, existing), "original content must survive byte for byte")
}

func TestMerge_UpdateIntoEmptyFileCreatesOneSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")

	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- initial release"), ModeUpdate)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Equal(t, "## 1.0.0\n\n- initial release\n", got)
	assert.Equal(t, 1, strings.Count(got, "## "))
}

func TestMerge_UpdateAddsSecondSectionWithoutTouchingFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- initial release"), ModeUpdate)
	require.NoError(t, err)

	_, err = Merge(path, payload(document.TypeChangelog, "1.1.0", "- second release"), ModeUpdate)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "## 1.1.0\n\n- second release\n")
	assert.Contains(t, got, "## 1.0.0\n\n- initial release\n")
	assert.Less(t, strings.Index(got, "## 1.1.0"), strings.Index(got, "## 1.0.0"),
		"newest section goes on top")
}

func TestMerge_UpdateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	p := payload(document.TypeChangelog, "1.0.0", "- change one\n- change two")

	_, err := Merge(path, p, ModeUpdate)
	require.NoError(t, err)
	first := readFile(t, path)

	_, err = Merge(path, p, ModeUpdate)
	require.NoError(t, err)
	second := readFile(t, path)

	assert.Equal(t, first, second, "repeated update with an unchanged payload must be byte-identical")
	assert.Equal(t, 1, strings.Count(second, "## 1.0.0"), "no duplicate sections")
}

func TestMerge_UpdateReplacesOnlyMatchingSectionBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	existing := "# Changelog\n\n## 2.0.0\n\n- newer stuff\n\n## 1.0.0\n\n- old stuff\n\ntrailing notes\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	_, err := Merge(path, payload(document.TypeChangelog, "2.0.0", "- rewritten"), ModeUpdate)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "# Changelog\n")
	assert.Contains(t, got, "## 2.0.0\n\n- rewritten\n")
	assert.NotContains(t, got, "- newer stuff")
	assert.Contains(t, got, "## 1.0.0\n\n- old stuff\n\ntrailing notes\n")
}

func TestMerge_UpdateMatchesBracketedKeepAChangelogHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	existing := "## [1.0.0] - 2024-01-01\n\n- old body\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- new body"), ModeUpdate)
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "## [1.0.0] - 2024-01-01\n\n- new body\n")
	assert.NotContains(t, got, "- old body")
}

func TestMerge_UpdateInsertsAfterLeadingTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	existing := "# Changelog\n\n## 0.9.0\n\n- ancient\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- fresh"), ModeUpdate)
	require.NoError(t, err)

	got := readFile(t, path)
	require.True(t, strings.HasPrefix(got, "# Changelog\n"))
	assert.Less(t, strings.Index(got, "## 1.0.0"), strings.Index(got, "## 0.9.0"))
	assert.Contains(t, got, "## 0.9.0\n\n- ancient\n")
}

func TestMerge_AutoResolvesPerDocumentType(t *testing.T) {
	dir := t.TempDir()

	// message -> none
	msgPath := filepath.Join(dir, "MSG.md")
	res, err := Merge(msgPath, payload(document.TypeMessage, "1.0.0", "msg"), ModeAuto)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.NoFileExists(t, msgPath)

	// changelog -> update
	clPath := filepath.Join(dir, "CHANGELOG.md")
	res, err = Merge(clPath, payload(document.TypeChangelog, "1.0.0", "- entry"), ModeAuto)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Contains(t, readFile(t, clPath), "## 1.0.0")

	// release notes -> overwrite
	rnPath := filepath.Join(dir, "NOTES.md")
	require.NoError(t, os.WriteFile(rnPath, []byte("old\n"), 0644))
	res, err = Merge(rnPath, payload(document.TypeReleaseNotes, "1.0.0", "notes body"), ModeAuto)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, "notes body\n", readFile(t, rnPath))
}

func TestMerge_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- entry"), ModeUpdate)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stray temp file: %s", e.Name())
	}
}

func TestMerge_UnwritableTargetIsOutputError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.MkdirAll(dir, 0555))
	path := filepath.Join(dir, "CHANGELOG.md")

	_, err := Merge(path, payload(document.TypeChangelog, "1.0.0", "- entry"), ModeUpdate)
	var outErr *OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Equal(t, path, outErr.Path)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"auto", "prepend", "append", "update", "overwrite", "none"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}
