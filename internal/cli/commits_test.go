package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phpwatch/commitlog/internal/config"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
)

// releaseRepo builds php-8.3.8 -> php-8.3.9 with one housekeeping commit in
// between. It returns the clone directory and the short hash of the last commit.
func releaseRepo(t *testing.T) (string, string) {
	t.Helper()

	f := newRepoFixture(t)
	f.tag("php-8.3.8", f.commit("Initial import", "rm"))
	f.commit("Fix memory leak (#1234)", "alice")
	f.commit("Update NEWS for 8.3.9", "rm")
	typo := f.commit("Fix typo.", "bob")
	f.tag("php-8.3.9", typo)
	return f.dir, typo.String()[:10]
}

func TestRunCommits_Local(t *testing.T) {
	t.Parallel()

	dir, typo := releaseRepo(t)
	typoLink := "[" + typo + "](https://github.com/php/php-src/commit/" + typo + ")"

	tests := map[string]struct {
		grouped  bool
		expected string
	}{
		"flat": {
			expected: " - Fix memory leak in [GH-1234](https://github.com/php/php-src/pull/1234) by alice\n" +
				" - Fix typo in " + typoLink + " by Bob Builder\n",
		},
		"grouped by author": {
			grouped: true,
			expected: "### alice\n" +
				" - Fix memory leak in [GH-1234](https://github.com/php/php-src/pull/1234)\n" +
				"\n" +
				"### Bob Builder\n" +
				" - Fix typo in " + typoLink + "\n" +
				"\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := newTestApp(t, func(cfg *config.Configuration) {
				cfg.AuthorReplacements = []config.Replacement{{From: "bob", To: "Bob Builder"}}
			})

			var buf bytes.Buffer
			err := runCommits(context.Background(), a, commitsOptions{
				From:    "8.3.8",
				To:      "php-8.3.9",
				Repo:    dir,
				Grouped: tt.grouped,
				Format:  "markdown",
			}, &buf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestRunCommits_JSON(t *testing.T) {
	t.Parallel()

	dir, _ := releaseRepo(t)

	var buf bytes.Buffer
	err := runCommits(context.Background(), newTestApp(t, nil), commitsOptions{
		From: "8.3.8", To: "8.3.9", Repo: dir, Format: "json",
	}, &buf)
	require.NoError(t, err)

	var log struct {
		Entries []struct {
			Subject string `json:"subject"`
			Author  string `json:"author"`
		} `json:"entries"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	require.Len(t, log.Entries, 2)
	assert.Equal(t, "Fix memory leak (#1234)", log.Entries[0].Subject)
	assert.Equal(t, "Fix typo", log.Entries[1].Subject)
	assert.Equal(t, 1, log.Skipped)
}

func TestRunCommits_Remote(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"commits": [
			{"sha": "0123456789abcdef0123456789abcdef01234567",
			 "commit": {"message": "Fix GH-14307: crash\n\nDetails", "author": {"name": "dev"}}},
			{"sha": "fedcba9876543210fedcba9876543210fedcba98",
			 "commit": {"message": "Merge branch 'PHP-8.2' into PHP-8.3", "author": {"name": "dev"}}}
		]}`))
	}))
	defer server.Close()

	a := newTestApp(t, func(cfg *config.Configuration) {
		cfg.APIURL = server.URL
	})

	var buf bytes.Buffer
	err := runCommits(context.Background(), a, commitsOptions{
		From: "8.3.8", To: "8.3.9", Remote: true, Format: "markdown",
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "/compare/php-8.3.8...php-8.3.9", gotPath.Load())
	assert.Equal(t,
		" - Fix [GH-14307](https://github.com/php/php-src/issues/14307): crash in [0123456789](https://github.com/php/php-src/commit/0123456789) by dev\n",
		buf.String())
}

func TestRunCommits_RecentDays(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commits" {
			http.NotFound(w, r)
			return
		}
		gotQuery.Store(r.URL.Query())
		_, _ = w.Write([]byte(`[
			{"sha": "fedcba9876543210fedcba9876543210fedcba98",
			 "commit": {"message": "Fix GH-14500: leak", "author": {"name": "bob"}}},
			{"sha": "0123456789abcdef0123456789abcdef01234567",
			 "commit": {"message": "Fix typo", "author": {"name": "alice"}}}
		]`))
	}))
	defer server.Close()

	a := newTestApp(t, func(cfg *config.Configuration) {
		cfg.APIURL = server.URL
	})

	var buf bytes.Buffer
	err := runCommits(context.Background(), a, commitsOptions{Remote: true, Days: 7, Format: "markdown"}, &buf)
	require.NoError(t, err)
	assert.Equal(t,
		" - Fix typo in [0123456789](https://github.com/php/php-src/commit/0123456789) by alice\n"+
			" - Fix [GH-14500](https://github.com/php/php-src/issues/14500): leak in [fedcba9876](https://github.com/php/php-src/commit/fedcba9876) by bob\n",
		buf.String())

	query, ok := gotQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, "100", query.Get("per_page"))
	since, err := time.Parse(time.RFC3339, query.Get("since"))
	require.NoError(t, err)
	until, err := time.Parse(time.RFC3339, query.Get("until"))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, until.Sub(since))
	assert.WithinDuration(t, time.Now(), until, time.Minute)
}

func TestRunCommits_Errors(t *testing.T) {
	t.Parallel()

	dir, _ := releaseRepo(t)

	tests := map[string]struct {
		opts commitsOptions
		want clierrors.ErrorCategory
	}{
		"unknown format": {
			opts: commitsOptions{From: "8.3.8", To: "8.3.9", Repo: dir, Format: "terminal"},
			want: clierrors.Argument,
		},
		"unknown revision": {
			opts: commitsOptions{From: "8.3.7", To: "8.3.9", Repo: dir, Format: "markdown"},
			want: clierrors.Argument,
		},
		"not a repository": {
			opts: commitsOptions{From: "8.3.8", To: "8.3.9", Repo: t.TempDir(), Format: "markdown"},
			want: clierrors.Input,
		},
		"days without remote": {
			opts: commitsOptions{Repo: dir, Days: 3, Format: "markdown"},
			want: clierrors.Argument,
		},
		"negative days": {
			opts: commitsOptions{Remote: true, Days: -1, Format: "markdown"},
			want: clierrors.Argument,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := runCommits(context.Background(), newTestApp(t, nil), tt.opts, &bytes.Buffer{})
			requireCategory(t, err, tt.want)
		})
	}
}

func TestTagRef(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		expected string
	}{
		"version":     {input: "8.3.9", expected: "php-8.3.9"},
		"pre-release": {input: "8.4.0RC1", expected: "php-8.4.0RC1"},
		"tag":         {input: "php-8.3.9", expected: "php-8.3.9"},
		"branch":      {input: "PHP-8.3", expected: "PHP-8.3"},
		"hash":        {input: "abc1234", expected: "abc1234"},
		"padded":      {input: " 8.3.9 ", expected: "php-8.3.9"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tagRef(tt.input))
		})
	}
}

func TestReleaseVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "8.3.9", releaseVersion("php-8.3.9"))
	assert.Equal(t, "8.3.9", releaseVersion("8.3.9"))
	assert.Equal(t, "master", releaseVersion("master"))
}
