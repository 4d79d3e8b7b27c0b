package kaggle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
)

// ErrUnsafeEntry is returned when an archive entry would land outside the target dir.
var ErrUnsafeEntry = errors.New("archive entry escapes target directory")

// Client mirrors Kaggle datasets. The API token is sent as a bearer credential.
type Client struct {
	httpClient *http.Client
	baseURL    string
	fs         afero.Fs
}

func NewClient(ctx context.Context, baseURL, apiToken string, fs afero.Fs) repository.IDatasetMirror {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = 10 * time.Minute
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		fs:         fs,
	}
}

func (c *Client) Download(ctx context.Context, dataset, dir string) ([]string, error) {
	owner, slug, ok := strings.Cut(dataset, "/")
	if !ok || owner == "" || slug == "" {
		return nil, fmt.Errorf("invalid dataset reference %q, want owner/slug", dataset)
	}

	archive, size, err := c.fetchArchive(ctx, owner, slug)
	if err != nil {
		return nil, err
	}
	defer func() {
		name := archive.Name()
		_ = archive.Close()
		_ = c.fs.Remove(name)
	}()

	zr, err := zip.NewReader(archive, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive of %s: %w", dataset, err)
	}
	for _, f := range zr.File {
		if _, err := entryPath(dir, f.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", dataset, err)
		}
	}

	// force download: the previous copy is replaced as a whole
	if err := c.fs.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to remove previous copy %s: %w", dir, err)
	}
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var files []string
	for _, f := range zr.File {
		target, _ := entryPath(dir, f.Name)
		if f.FileInfo().IsDir() {
			if err := c.fs.MkdirAll(target, 0o755); err != nil {
				return files, fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := c.extract(f, target); err != nil {
			return files, err
		}
		files = append(files, target)
	}

	logger.GetLogger().WithField("dataset", dataset).WithField("path", dir).WithField("files", len(files)).Info("Dataset extracted")
	return files, nil
}

func (c *Client) fetchArchive(ctx context.Context, owner, slug string) (afero.File, int64, error) {
	endpoint := fmt.Sprintf("%s/datasets/download/%s/%s", c.baseURL, owner, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download %s/%s: %w", owner, slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("failed to download %s/%s: unexpected status %d", owner, slug, resp.StatusCode)
	}

	tmp, err := afero.TempFile(c.fs, "", "kaggle-*.zip")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create temp archive: %w", err)
	}
	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		name := tmp.Name()
		_ = tmp.Close()
		_ = c.fs.Remove(name)
		return nil, 0, fmt.Errorf("failed to save archive of %s/%s: %w", owner, slug, err)
	}
	return tmp, size, nil
}

func (c *Client) extract(f *zip.File, target string) error {
	if err := c.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", target, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s from archive: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := c.fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return dst.Close()
}

// entryPath maps an archive entry name to a path under dir.
func entryPath(dir, name string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return filepath.Join(dir, rel), nil
}
