// Package downloads finds the Windows binary archives published for a
// php-src release tag.
//
// Candidate URLs are derived from the tag (QA or release folder, toolchain
// by version line), probed concurrently with a one byte range request, and
// annotated with the SHA-256 published in the releases index.
package downloads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phpwatch/commitlog/internal/version"
)

const (
	DefaultBaseURL      = "https://downloads.php.net/~windows"
	DefaultProbeTimeout = 10 * time.Second
	defaultConcurrency  = 8
)

// BuildType identifies an archive flavour.
type BuildType string

const (
	X64NTS BuildType = "x64NTS"
	X64TS  BuildType = "x64TS"
	X86NTS BuildType = "x86NTS"
	X86TS  BuildType = "x86TS"
)

// BuildTypes lists every flavour in display order.
var BuildTypes = []BuildType{X64NTS, X64TS, X86NTS, X86TS}

// Link is a live archive.
type Link struct {
	URL    string `json:"url" yaml:"url"`
	Size   int64  `json:"size" yaml:"size"`
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

// TagInfo describes where a tag's archives live.
type TagInfo struct {
	QA        bool
	Toolchain string
}

var (
	preReleaseRe = regexp.MustCompile(`^php-[\d.]+0(?:alpha|beta|rc|RC)\d$`)
	vc15UpperRe  = regexp.MustCompile(`^php-7\.[23]\.`)
	vc15Re       = regexp.MustCompile(`^php-7\.4\.`)
	vs16Re       = regexp.MustCompile(`^php-8\.[0-3]\.`)
	contentRange = regexp.MustCompile(`(?i)^bytes \d+-\d+/(\d+)$`)
)

// Inspect returns the folder kind and toolchain for a tag.
func Inspect(tag string) TagInfo {
	info := TagInfo{QA: preReleaseRe.MatchString(tag), Toolchain: "vs17"}
	switch {
	case vc15UpperRe.MatchString(tag):
		info.Toolchain = "VC15"
	case vc15Re.MatchString(tag):
		info.Toolchain = "vc15"
	case vs16Re.MatchString(tag):
		info.Toolchain = "vs16"
	}
	return info
}

// Candidates returns the archive URLs to try for each build type, most
// preferred first: the current folder, then its archives folder.
func Candidates(baseURL, tag string) map[BuildType][]string {
	info := Inspect(tag)
	folder := "releases"
	if info.QA {
		folder = "qa"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	names := map[BuildType]string{
		X64NTS: tag + "-nts-Win32-" + info.Toolchain + "-x64.zip",
		X64TS:  tag + "-Win32-" + info.Toolchain + "-x64.zip",
		X86NTS: tag + "-nts-Win32-" + info.Toolchain + "-x86.zip",
		X86TS:  tag + "-Win32-" + info.Toolchain + "-x86.zip",
	}

	out := make(map[BuildType][]string, len(names))
	for bt, name := range names {
		out[bt] = []string{
			baseURL + "/" + folder + "/" + name,
			baseURL + "/" + folder + "/archives/" + name,
		}
	}
	return out
}

// Fetcher probes archive URLs.
type Fetcher struct {
	httpClient  *http.Client
	baseURL     string
	concurrency int
	logger      *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for probes and the index.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		if hc != nil {
			f.httpClient = hc
		}
	}
}

// WithBaseURL sets the download host root.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		if u != "" {
			f.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithConcurrency limits simultaneous requests.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New returns a fetcher for downloads.php.net unless options say otherwise.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:  &http.Client{Timeout: DefaultProbeTimeout},
		baseURL:     DefaultBaseURL,
		concurrency: defaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Links returns the live archive for each build type that has one.
// Build types with no live candidate are absent from the result.
func (f *Fetcher) Links(ctx context.Context, tag string) (map[BuildType]Link, error) {
	candidates := Candidates(f.baseURL, tag)

	var (
		mu    sync.Mutex
		sizes = make(map[string]int64)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, bt := range BuildTypes {
		for _, u := range candidates[bt] {
			u := u
			g.Go(func() error {
				size, ok, err := f.probe(gctx, u)
				if err != nil || !ok {
					return err
				}
				mu.Lock()
				sizes[u] = size
				mu.Unlock()
				return nil
			})
		}
	}

	var hashes map[string]string
	var hashErr error
	g.Go(func() error {
		hashes, hashErr = f.hashes(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probing downloads for %s: %w", tag, err)
	}
	if hashErr != nil {
		f.logger.Warn("releases index unavailable, checksums omitted", zap.Error(hashErr))
	}

	links := make(map[BuildType]Link)
	for _, bt := range BuildTypes {
		for _, u := range candidates[bt] {
			size, ok := sizes[u]
			if !ok {
				continue
			}
			links[bt] = Link{URL: u, Size: size, SHA256: hashes[path.Base(u)]}
			break
		}
	}
	return links, nil
}

// probe requests the last byte of u. A 206 answer means the archive exists.
// Transport failures count as missing unless the context is done.
func (f *Fetcher) probe(ctx context.Context, u string) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Range", "bytes=-1")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		f.logger.Debug("probe failed", zap.String("url", u), zap.Error(err))
		return 0, false, nil
	}
	defer resp.Body.Close()

	// A host that ignores Range answers 200 with the whole archive.
	if resp.StatusCode != http.StatusPartialContent {
		f.logger.Debug("archive not found", zap.String("url", u), zap.Int("status", resp.StatusCode))
		return 0, false, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	size, err := ParseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", u, err)
	}
	return size, true, nil
}

// ErrContentRange is returned for a missing or malformed Content-Range header.
var ErrContentRange = errors.New("content-range not matched")

// ParseContentRange returns the complete length from "bytes 99-99/100".
func ParseContentRange(header string) (int64, error) {
	m := contentRange.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrContentRange, header)
	}
	return strconv.ParseInt(m[1], 10, 64)
}

type indexFile struct {
	Zip *struct {
		Path   string `json:"path"`
		SHA256 string `json:"sha256"`
	} `json:"zip"`
}

// hashes reads the release and QA indexes and maps archive file names to
// their SHA-256.
func (f *Fetcher) hashes(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	var errs []error
	for _, folder := range []string{"releases", "qa"} {
		if err := f.ingestIndex(ctx, f.baseURL+"/"+folder+"/releases.json", out); err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

func (f *Fetcher) ingestIndex(ctx context.Context, u string, into map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status code: %d", u, resp.StatusCode)
	}

	var index map[string]map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}

	for _, files := range index {
		for _, raw := range files {
			var file indexFile
			if json.Unmarshal(raw, &file) != nil || file.Zip == nil || file.Zip.SHA256 == "" {
				continue
			}
			into[path.Base(file.Zip.Path)] = file.Zip.SHA256
		}
	}
	return nil
}
