package preflight

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mangarchive/internal/config"
	"mangarchive/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAPI calls the catalog API's ping endpoint once.
func CheckAPI(ctx context.Context, client *http.Client, baseURL, userAgent string) Result {
	const name = "Catalog API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base_url"}
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/ping", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("ping failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("ping failed (%v)", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("ping failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: base + " reachable"}
}

// CheckSystemDeps resolves the external programs required by cfg. The
// renderer is only required when rendering is enabled.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil || !cfg.Render.Enabled {
		return nil
	}
	res := deps.Resolve(ctx, deps.Renderer(cfg.Render))
	result := Result{Name: res.Name, Passed: res.Available(), Detail: res.Summary()}
	if result.Passed && res.Version == "" {
		// Found but did not answer --version; it may still render.
		result.Passed = false
		result.Warning = true
	}
	return []Result{result}
}
