package revision_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untangle/untangle/internal/revision"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, string(out))
}

func initRepoWithTwoCommits(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("import os\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "base")
	runGit(t, dir, "tag", "base")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("import os\nimport sys\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), []byte("import a\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "head")
	runGit(t, dir, "tag", "head")

	return dir
}

func TestReader_ListFilesAtRevision(t *testing.T) {
	dir := initRepoWithTwoCommits(t)
	r, err := revision.Open(dir)
	require.NoError(t, err)

	baseFiles, err := r.ListFiles("base")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, baseFiles)

	headFiles, err := r.ListFiles("head")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py"}, headFiles)
}

func TestReader_ReadFileAtRevisionDoesNotTouchWorkingTree(t *testing.T) {
	dir := initRepoWithTwoCommits(t)
	r, err := revision.Open(dir)
	require.NoError(t, err)

	baseContent, err := r.ReadFile("base", "a.py")
	require.NoError(t, err)
	assert.Equal(t, "import os\n", string(baseContent))

	workingTreeContent, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "import os\nimport sys\n", string(workingTreeContent))
}

func TestReader_ResolveRevisionUnknownRefIsError(t *testing.T) {
	dir := initRepoWithTwoCommits(t)
	r, err := revision.Open(dir)
	require.NoError(t, err)

	_, err = r.ListFiles("does-not-exist")
	assert.Error(t, err)
}
