// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches resolved scene archives to a local directory
// with a bounded pool of workers. Each item ends in exactly one Result;
// one item failing never affects another.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/m2m-fetch/internal/httputil"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// ExtensionAuto takes the file extension from the response's
// Content-Disposition filename.
const ExtensionAuto = "auto"

// Progress reports one finished item. Completed increases by one with each
// report and reaches Total when the batch is done.
type Progress struct {
	Completed int
	Total     int
	Result    Result
}

// Manager downloads items into cfg.OutputDir.
type Manager struct {
	client *http.Client
	cfg    types.DownloadConfig
	w      io.Writer

	onProgress func(Progress)

	receivedBytes atomic.Int64
}

// NewManager creates a Manager. Status lines are written to w. The
// configured timeout bounds the wait for response headers, not the body
// transfer, since scene archives run to gigabytes.
func NewManager(cfg types.DownloadConfig, w io.Writer) *Manager {
	cfg = cfg.WithDefaults()
	if w == nil {
		w = io.Discard
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout
	return &Manager{
		client: &http.Client{Transport: transport},
		cfg:    cfg,
		w:      w,
	}
}

// OnProgress registers fn to be called after each item finishes. Calls are
// serialized.
func (m *Manager) OnProgress(fn func(Progress)) {
	m.onProgress = fn
}

// BytesReceived returns the body bytes written so far across all items.
func (m *Manager) BytesReceived() int64 {
	return m.receivedBytes.Load()
}

// DownloadAll downloads every item and returns one Result per item, in
// completion order. The error is non-nil only when the batch is rejected
// before any request is made. When ctx is cancelled, items not yet started
// and items in flight finish as Interrupted.
func (m *Manager) DownloadAll(ctx context.Context, items []types.DownloadableItem) ([]Result, error) {
	if err := validate(m.cfg.OutputDir, items); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var (
		mu        sync.Mutex
		results   = make([]Result, 0, len(items))
		completed int
	)
	record := func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
		completed++
		m.report(r, completed, len(items))
		if m.onProgress != nil {
			m.onProgress(Progress{Completed: completed, Total: len(items), Result: r})
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(m.cfg.Concurrency)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			record(Result{DownloadID: item.DownloadID, URL: item.URL, Outcome: Interrupted, Err: err})
			continue
		}
		g.Go(func() error {
			record(m.download(ctx, item))
			return nil
		})
	}
	_ = g.Wait()

	s := Summarize(results)
	fmt.Fprintf(m.w, "\nBatch summary: %d downloaded, %d failed, %d interrupted (total: %d)\n",
		s.Succeeded, s.Failed, s.Interrupted, s.Total())
	return results, nil
}

func (m *Manager) report(r Result, completed, total int) {
	switch r.Outcome {
	case Success:
		fmt.Fprintf(m.w, "downloaded: %s -> %s (%d bytes) [%d/%d]\n", r.DownloadID, r.Path, r.Bytes, completed, total)
	case Interrupted:
		fmt.Fprintf(m.w, "interrupted: %s [%d/%d]\n", r.DownloadID, completed, total)
	default:
		fmt.Fprintf(m.w, "failed:  %s (%v) [%d/%d]\n", r.DownloadID, r.Err, completed, total)
	}
}

func validate(dir string, items []types.DownloadableItem) error {
	if dir == "" {
		return errors.New("output directory is required")
	}
	seen := make(map[string]bool, len(items))
	var errs []error
	for i, item := range items {
		switch {
		case item.DownloadID == "":
			errs = append(errs, fmt.Errorf("item %d: empty download id", i))
		case item.DownloadID != filepath.Base(item.DownloadID) || item.DownloadID == "." || item.DownloadID == "..":
			errs = append(errs, fmt.Errorf("item %d: download id %q is not a valid file name", i, item.DownloadID))
		case seen[item.DownloadID]:
			errs = append(errs, fmt.Errorf("item %d: duplicate download id %q", i, item.DownloadID))
		}
		seen[item.DownloadID] = true
		if item.URL == "" {
			errs = append(errs, fmt.Errorf("item %d: empty url", i))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) download(ctx context.Context, item types.DownloadableItem) Result {
	res := Result{DownloadID: item.DownloadID, URL: item.URL}
	if err := ctx.Err(); err != nil {
		res.Outcome, res.Err = Interrupted, err
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return failed(ctx, res, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", m.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, m.client, req, m.cfg.MaxRetries)
	if err != nil {
		return failed(ctx, res, fmt.Errorf("HTTP request: %w", err))
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return failed(ctx, res, fmt.Errorf("HTTP %d from %s", resp.StatusCode, item.URL))
	}

	dest := filepath.Join(m.cfg.OutputDir, item.DownloadID+"."+m.extension(resp))
	n, err := m.writeFile(dest, resp.Body)
	if err != nil {
		return failed(ctx, res, err)
	}
	res.Path, res.Bytes, res.Outcome = dest, n, Success
	return res
}

// failed marks res as Failure, or Interrupted when err came from ctx ending.
func failed(ctx context.Context, res Result, err error) Result {
	res.Outcome, res.Err = Failure, err
	if ctx.Err() != nil {
		res.Outcome = Interrupted
	}
	return res
}

// writeFile streams body into a temp file beside dest and renames it into
// place, replacing any file left by an earlier run.
func (m *Manager) writeFile(dest string, body io.Reader) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".m2m-fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, &countingReader{r: body, n: &m.receivedBytes})
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

func (m *Manager) extension(resp *http.Response) string {
	if m.cfg.Extension != ExtensionAuto {
		return m.cfg.Extension
	}
	return extensionFromDisposition(resp.Header.Get("Content-Disposition"))
}

// extensionFromDisposition returns the extension of the attachment
// filename, keeping compound archive suffixes such as tar.gz.
func extensionFromDisposition(header string) string {
	if header == "" {
		return types.DefaultExtension
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return types.DefaultExtension
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" {
		return types.DefaultExtension
	}

	for _, compound := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(strings.ToLower(name), compound) {
			return compound[1:]
		}
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || strings.ContainsAny(ext, `/\ `) {
		return types.DefaultExtension
	}
	return strings.ToLower(ext)
}

type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}
