package deps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mangarchive/internal/config"
)

// ErrNotConfigured is reported for a program with an empty command.
var ErrNotConfigured = errors.New("command not configured")

const versionTimeout = 5 * time.Second

// Program describes an external converter mangarchive shells out to.
type Program struct {
	Name    string
	Command string
	// VersionArgs are passed to Command to print its version. Empty skips the version check.
	VersionArgs []string
	// Hint tells the operator how to get past a missing program.
	Hint string
}

// Resolution is where a Program was found and what version it reported.
type Resolution struct {
	Program
	Path    string
	Version string
	Err     error
}

// Available reports whether the program resolved on PATH.
func (r Resolution) Available() bool { return r.Err == nil }

// Summary renders the resolution as a single status detail.
func (r Resolution) Summary() string {
	if r.Err != nil {
		if r.Hint == "" {
			return r.Err.Error()
		}
		return r.Err.Error() + "; " + r.Hint
	}
	if r.Version == "" {
		return r.Path + " (version unknown)"
	}
	return fmt.Sprintf("%s (%s)", r.Path, r.Version)
}

// Renderer describes the document converter configured under [render].
func Renderer(render config.Render) Program {
	return Program{
		Name:        "Renderer",
		Command:     strings.TrimSpace(render.Command),
		VersionArgs: []string{"--version"},
		Hint:        "required for .epub output (set render.enabled = false to skip)",
	}
}

// Resolve looks p up on PATH and, when VersionArgs is set, runs it once to
// capture the first line it prints. A failed version check leaves Version
// empty; it never marks the program unavailable.
func Resolve(ctx context.Context, p Program) Resolution {
	res := Resolution{Program: p}
	if p.Command == "" {
		res.Err = ErrNotConfigured
		return res
	}
	path, err := exec.LookPath(p.Command)
	if err != nil {
		res.Err = fmt.Errorf("binary %q not found", p.Command)
		return res
	}
	res.Path = path
	if len(p.VersionArgs) > 0 {
		res.Version = readVersion(ctx, path, p.VersionArgs)
	}
	return res
}

func readVersion(ctx context.Context, path string, args []string) string {
	versionCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(versionCtx, path, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
