package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/devkit-labs/devkit/internal/branding"
	"github.com/devkit-labs/devkit/internal/platform"
)

// maxScriptSize caps a downloaded install script.
const maxScriptSize = 8 << 20

// scriptStep downloads url and runs it with sh.
func (d *Dispatcher) scriptStep(url string) step {
	return step{
		label: fmt.Sprintf("curl -fsSL %s | sh", url),
		run: func(ctx context.Context) error {
			return d.runScript(ctx, url)
		},
	}
}

func (d *Dispatcher) runScript(ctx context.Context, url string) error {
	dir, err := os.MkdirTemp("", branding.CLIName()+"-script-")
	if err != nil {
		return fmt.Errorf("creating script directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "install.sh")
	if err := d.download(ctx, url, path); err != nil {
		return err
	}
	if err := platform.MakeExecutable(path); err != nil {
		return fmt.Errorf("marking script executable: %w", err)
	}

	_, err = d.runner.Run(ctx, d.command("sh", path))
	return err
}

// download fetches url into path within the dispatcher's timeout.
func (d *Dispatcher) download(ctx context.Context, url, path string) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	err := d.fetch(ctx, url, path)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("downloading %s: %w after %s", url, platform.ErrTimeout, d.timeout)
	}
	return err
}

func (d *Dispatcher) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating script request: %w", err)
	}
	req.Header.Set("User-Agent", branding.UserAgent())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating script file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(resp.Body, maxScriptSize+1))
	if err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	if n > maxScriptSize {
		return fmt.Errorf("script at %s exceeds %d bytes", url, maxScriptSize)
	}
	return nil
}
