package chapter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mangarchive/internal/services"
)

// RenderRequest names the manifest to convert and the file name to produce.
type RenderRequest struct {
	// Dir is the collection directory; the manifest's image paths are relative to it.
	Dir      string
	Manifest string
	Output   string
}

// Renderer converts a manifest into the rendered document and returns its bytes.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// RenderScratchPattern names the per-render scratch directories created inside
// the collection directory.
const RenderScratchPattern = ".render-*"

type commandRunner func(ctx context.Context, dir, name string, args ...string) error

// CommandRenderer shells out to an AsciiDoc converter such as asciidoctor-epub3.
type CommandRenderer struct {
	command string
	args    []string
	run     commandRunner
}

// NewCommandRenderer builds a renderer invoking command with args, followed by
// "-o <output> <manifest>".
func NewCommandRenderer(command string, args []string) *CommandRenderer {
	return &CommandRenderer{
		command: strings.TrimSpace(command),
		args:    append([]string(nil), args...),
		run:     defaultCommandRunner,
	}
}

// Command returns the converter binary name.
func (r *CommandRenderer) Command() string { return r.command }

// Render runs the converter into a scratch directory inside req.Dir and
// returns the produced document.
func (r *CommandRenderer) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if r == nil || r.command == "" {
		return nil, services.Wrap(services.ErrConfiguration, "render", "", "render command is not configured", nil)
	}
	scratch, err := os.MkdirTemp(req.Dir, RenderScratchPattern)
	if err != nil {
		return nil, fmt.Errorf("create render scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, filepath.Base(req.Output))
	args := append(append([]string(nil), r.args...), "-o", output, req.Manifest)
	if err := r.run(ctx, req.Dir, r.command, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrExternalTool, "render", r.command, req.Manifest, err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "render", r.command, "no output produced", err)
	}
	return data, nil
}

func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
