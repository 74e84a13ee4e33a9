package downloads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tag  string
		want TagInfo
	}{
		"php 7.2":       {tag: "php-7.2.34", want: TagInfo{Toolchain: "VC15"}},
		"php 7.3":       {tag: "php-7.3.33", want: TagInfo{Toolchain: "VC15"}},
		"php 7.4":       {tag: "php-7.4.33", want: TagInfo{Toolchain: "vc15"}},
		"php 8.0":       {tag: "php-8.0.30", want: TagInfo{Toolchain: "vs16"}},
		"php 8.3":       {tag: "php-8.3.9", want: TagInfo{Toolchain: "vs16"}},
		"php 8.4":       {tag: "php-8.4.1", want: TagInfo{Toolchain: "vs17"}},
		"release cand.": {tag: "php-8.4.0RC1", want: TagInfo{QA: true, Toolchain: "vs17"}},
		"beta":          {tag: "php-8.3.0beta2", want: TagInfo{QA: true, Toolchain: "vs16"}},
		"alpha":         {tag: "php-8.5.0alpha1", want: TagInfo{QA: true, Toolchain: "vs17"}},
		"patch release": {tag: "php-8.4.10", want: TagInfo{Toolchain: "vs17"}},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Inspect(tt.tag))
		})
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	got := Candidates("https://example.test/~windows/", "php-8.3.9")
	assert.Equal(t, []string{
		"https://example.test/~windows/releases/php-8.3.9-nts-Win32-vs16-x64.zip",
		"https://example.test/~windows/releases/archives/php-8.3.9-nts-Win32-vs16-x64.zip",
	}, got[X64NTS])
	assert.Equal(t, []string{
		"https://example.test/~windows/releases/php-8.3.9-Win32-vs16-x86.zip",
		"https://example.test/~windows/releases/archives/php-8.3.9-Win32-vs16-x86.zip",
	}, got[X86TS])
	assert.Len(t, got, len(BuildTypes))

	qa := Candidates("https://example.test", "php-8.4.0RC2")
	assert.Equal(t, "https://example.test/qa/php-8.4.0RC2-Win32-vs17-x64.zip", qa[X64TS][0])
	assert.Equal(t, "https://example.test/qa/archives/php-8.4.0RC2-Win32-vs17-x64.zip", qa[X64TS][1])
}

func TestParseContentRange(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		header  string
		want    int64
		wantErr bool
	}{
		"last byte":   {header: "bytes 31999999-31999999/32000000", want: 32000000},
		"lower case":  {header: "Bytes 0-0/12", want: 12},
		"padded":      {header: " bytes 0-0/7 ", want: 7},
		"missing":     {header: "", wantErr: true},
		"unknown len": {header: "bytes 0-0/*", wantErr: true},
		"other unit":  {header: "items 0-0/12", wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseContentRange(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrContentRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// downloadServer serves the given archive paths with their sizes and the
// releases index for both folders.
func downloadServer(t *testing.T, sizes map[string]int64, index string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/releases.json") {
			if index == "" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(index))
			return
		}
		size, ok := sizes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Range") != "bytes=-1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", size-1, size-1, size))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte{0})
	}))
	t.Cleanup(server.Close)
	return server
}

const releasesIndex = `{
  "8.3": {
    "version": "8.3.9",
    "nts-vs16-x64": {
      "zip": {"path": "php-8.3.9-nts-Win32-vs16-x64.zip", "size": "30.5MB", "sha256": "aaa111"}
    },
    "ts-vs16-x64": {
      "zip": {"path": "php-8.3.9-Win32-vs16-x64.zip", "size": "30.7MB", "sha256": "bbb222"}
    },
    "source": {"path": "php-8.3.9-src.zip"}
  }
}`

func TestFetcher_Links(t *testing.T) {
	t.Parallel()

	server := downloadServer(t, map[string]int64{
		"/releases/php-8.3.9-nts-Win32-vs16-x64.zip":          100,
		"/releases/archives/php-8.3.9-nts-Win32-vs16-x64.zip": 999,
		"/releases/archives/php-8.3.9-Win32-vs16-x64.zip":     200,
		"/releases/php-8.3.9-nts-Win32-vs16-x86.zip":          300,
	}, releasesIndex)

	links, err := New(WithBaseURL(server.URL)).Links(context.Background(), "php-8.3.9")
	require.NoError(t, err)

	assert.Equal(t, map[BuildType]Link{
		X64NTS: {URL: server.URL + "/releases/php-8.3.9-nts-Win32-vs16-x64.zip", Size: 100, SHA256: "aaa111"},
		X64TS:  {URL: server.URL + "/releases/archives/php-8.3.9-Win32-vs16-x64.zip", Size: 200, SHA256: "bbb222"},
		X86NTS: {URL: server.URL + "/releases/php-8.3.9-nts-Win32-vs16-x86.zip", Size: 300},
	}, links)
}

func TestFetcher_LinksWithoutIndex(t *testing.T) {
	t.Parallel()

	server := downloadServer(t, map[string]int64{
		"/qa/php-8.4.0RC1-Win32-vs17-x64.zip": 42,
	}, "")

	core, logs := observer.New(zap.WarnLevel)
	links, err := New(WithBaseURL(server.URL), WithLogger(zap.New(core))).Links(context.Background(), "php-8.4.0RC1")
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, Link{URL: server.URL + "/qa/php-8.4.0RC1-Win32-vs17-x64.zip", Size: 42}, links[X64TS])
	assert.Equal(t, 1, logs.FilterMessage("releases index unavailable, checksums omitted").Len())
}

func TestFetcher_LinksNoneLive(t *testing.T) {
	t.Parallel()

	server := downloadServer(t, nil, releasesIndex)

	links, err := New(WithBaseURL(server.URL), WithConcurrency(1)).Links(context.Background(), "php-7.4.33")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestFetcher_LinksBadContentRange(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/releases.json") {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusPartialContent)
	}))
	defer server.Close()

	_, err := New(WithBaseURL(server.URL)).Links(context.Background(), "php-8.3.9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentRange))
	assert.Contains(t, err.Error(), "php-8.3.9")
}

func TestFetcher_StopsOnFullBodyResponse(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(make([]byte, 32<<10))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer server.Close()
	defer close(done)

	type result struct {
		ok  bool
		err error
	}
	results := make(chan result, 1)
	go func() {
		_, ok, err := New().probe(context.Background(), server.URL+"/releases/php-8.3.9-Win32-vs16-x64.zip")
		results <- result{ok: ok, err: err}
	}()

	select {
	case r := <-results:
		require.NoError(t, r.err)
		assert.False(t, r.ok)
	case <-time.After(5 * time.Second):
		t.Fatal("kept reading a 200 response body")
	}
}

func TestFetcher_LinksCanceled(t *testing.T) {
	t.Parallel()

	server := downloadServer(t, nil, releasesIndex)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithBaseURL(server.URL)).Links(ctx, "php-8.3.9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetcher_Hashes(t *testing.T) {
	t.Parallel()

	server := downloadServer(t, nil, releasesIndex)

	hashes, err := New(WithBaseURL(server.URL)).hashes(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"php-8.3.9-Win32-vs16-x64.zip", "php-8.3.9-nts-Win32-vs16-x64.zip"}, names)
}
