// Package fetch stages upstream reference files on local disk.
//
// Staging is cache-first: a resource whose staged file already exists is not
// downloaded again unless forced. Requests are paced with a token bucket
// limiter; there is no retry.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/countrydata/internal/config"
	"github.com/albapepper/countrydata/internal/sentinel"
)

// Fetcher downloads resources into a staging directory.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	dir        string
	suffix     string
	logger     *slog.Logger
}

// Options configures a Fetcher.
type Options struct {
	Dir               string
	Suffix            string
	Timeout           time.Duration
	RequestsPerMinute int
	Client            *http.Client // overrides Timeout when set
	Logger            *slog.Logger
}

// New creates a Fetcher. A non-positive RequestsPerMinute disables pacing.
func New(opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}
	return &Fetcher{
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		dir:        opts.Dir,
		suffix:     opts.Suffix,
		logger:     logger,
	}
}

// NewFromConfig creates a Fetcher from the loaded configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return New(Options{
		Dir:               cfg.DataDir,
		Suffix:            cfg.StagingSuffix,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            logger,
	})
}

// StagedPath returns the staging location for a resource.
func (f *Fetcher) StagedPath(r config.Resource) string {
	return r.StagedPath(f.dir, f.suffix)
}

// Fetch stages a single resource and returns its path. An existing staged
// file is returned untouched unless force is set.
func (f *Fetcher) Fetch(ctx context.Context, r config.Resource, force bool) (string, error) {
	path := f.StagedPath(r)
	f.logger.Info("Downloading resource", "dst", r.Dst)

	if !force {
		if _, err := os.Stat(path); err == nil {
			f.logger.Debug("Staged file present, skipping download", "path", path)
			return path, nil
		}
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	body, err := f.get(ctx, r.URL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", r.ID, err)
	}
	if err := writeFileAtomic(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	f.logger.Debug("Resource staged", "path", path, "bytes", len(body))
	return path, nil
}

// FetchAll stages resources one at a time in list order. Staged paths are
// keyed by resource ID. The first failure aborts the run.
func (f *Fetcher) FetchAll(ctx context.Context, resources []config.Resource, force bool) (map[string]string, error) {
	paths := make(map[string]string, len(resources))
	for _, r := range resources {
		path, err := f.Fetch(ctx, r, force)
		if err != nil {
			return nil, err
		}
		paths[r.ID] = path
	}
	return paths, nil
}

// get performs a rate-limited GET and returns the full body.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "countrydata/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d: %s", sentinel.ErrFetch, url, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// Clean removes every staged file carrying the staging suffix from dir and
// returns how many were removed.
func Clean(dir, suffix string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return 0, fmt.Errorf("glob staged files: %w", err)
	}
	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// writeFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a partial file where the cache would trust it.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
