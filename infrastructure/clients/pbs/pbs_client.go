package pbs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	"github.com/spf13/afero"
)

const downloadTimeout = 30 * time.Second

type Client struct {
	httpClient *http.Client
	fs         afero.Fs
}

func NewClient(fs afero.Fs) repository.IReportDownloader {
	return &Client{
		httpClient: &http.Client{Timeout: downloadTimeout},
		fs:         fs,
	}
}

func (c *Client) EnsureReport(ctx context.Context, url, path string) error {
	if ok, err := afero.Exists(c.fs, path); err == nil && ok {
		logger.GetLogger().WithField("path", path).Debug("PBS report already present")
		return nil
	}
	logger.GetLogger().WithField("url", url).Info("PBS report not found locally, downloading")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	tmp := path + ".part"
	f, err := c.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	logger.GetLogger().WithField("path", path).WithField("bytes", n).Info("Download successful")
	return nil
}
