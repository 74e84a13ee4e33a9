package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phpwatch/commitlog/internal/config"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/progress"
)

const newsFixture = `PHP                                                                        NEWS
|||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||||
?? ??? ????, PHP 8.3.10

- Core:
  . Fixed bug GH-14702 (DOMDocument::xinclude() crash). (nielsdos)

04 Jul 2024, PHP 8.3.9

- Core:
  . Fixed bug GH-14315 (Incompatible pointer type warnings). (Peter Kokot)

- Date:
  . Fixed bug GH-14258 (Date parsing
    error). (Derick)

06 Jun 2024, PHP 8.3.8

- Core:
`

// newTestApp returns an app built from the defaults only. mutate may adjust
// the configuration before the enhancer is created.
func newTestApp(t *testing.T, mutate func(*config.Configuration)) *app {
	t.Helper()

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
		SkipUserConfig:    true,
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	return newApp(cfg, zap.NewNop(), progress.NewDisplay(io.Discard, progress.TerminalCapabilities{}, true))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireCategory(t *testing.T, err error, want clierrors.ErrorCategory) {
	t.Helper()
	require.Error(t, err)
	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr, "expected a CLIError, got %T: %v", err, err)
	require.Equal(t, want, cliErr.Category, cliErr.Error())
}

// lockedBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// repoFixture is a throwaway clone with a linear history.
type repoFixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	n    int
}

func newRepoFixture(t *testing.T) *repoFixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &repoFixture{t: t, dir: dir, repo: repo}
}

func (f *repoFixture) commit(message, author string) plumbing.Hash {
	f.t.Helper()
	f.n++

	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir, "NEWS"), []byte(message), 0o644))

	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)
	_, err = wt.Add("NEWS")
	require.NoError(f.t, err)

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: "dev@example.org",
			When:  time.Date(2024, time.July, 1, 0, f.n, 0, 0, time.UTC),
		},
	})
	require.NoError(f.t, err)
	return hash
}

func (f *repoFixture) tag(name string, hash plumbing.Hash) {
	f.t.Helper()
	_, err := f.repo.CreateTag(name, hash, nil)
	require.NoError(f.t, err)
}
