package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mangarchive/internal/archiver"
	"mangarchive/internal/artifact"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
)

type chapterStatus struct {
	Chapter  string `json:"chapter"`
	Pages    int    `json:"pages"`
	Assets   int    `json:"assets_cached"`
	Archive  bool   `json:"cbz"`
	Manifest bool   `json:"adoc"`
	Rendered bool   `json:"epub"`
	Complete bool   `json:"complete"`
	Error    string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <https-url> <lang>",
		Short: "Show which chapter artifacts are already archived (no network access)",
		Args:  usageArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := collection.Parse(args[0], args[1])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows, err := collectChapterStatus(archiver.CollectionDir(cfg, ref), ref, cfg.Render.Enabled)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), rows)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", ref.Title(), ref.LanguageName())
			if len(rows) == 0 {
				fmt.Fprintln(out, "No chapters archived yet")
				return nil
			}
			table := make([][]string, 0, len(rows))
			complete := 0
			for _, row := range rows {
				if row.Complete {
					complete++
				}
				table = append(table, []string{
					row.Chapter,
					strconv.Itoa(row.Pages),
					fmt.Sprintf("%d/%d", row.Assets, row.Pages),
					yesNo(row.Archive),
					yesNo(row.Manifest),
					yesNo(row.Rendered),
					yesNo(row.Complete),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Chapter", "Pages", "Assets", "CBZ", "ADOC", "EPUB", "Complete"},
				table,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "%d of %d chapters complete\n", complete, len(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print rows as JSON")
	return cmd
}

// collectChapterStatus inspects every chapter with cached metadata in dir.
func collectChapterStatus(dir string, ref collection.Ref, renderEnabled bool) ([]chapterStatus, error) {
	matches, err := filepath.Glob(filepath.Join(dir, chapter.MetadataKey("*")))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		name := filepath.Base(match)
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, "chapter-"), ".json"))
	}
	slices.SortStableFunc(keys, compareChapterKeys)

	store := artifact.NewFSStore(dir)
	rows := make([]chapterStatus, 0, len(keys))
	for _, key := range keys {
		inspection, err := chapter.Inspect(store, ref.DirName(), key)
		row := chapterStatus{
			Chapter:  key,
			Pages:    inspection.Pages,
			Assets:   inspection.AssetsCached,
			Archive:  inspection.Archive,
			Manifest: inspection.Manifest,
			Rendered: inspection.Rendered,
			Complete: err == nil && inspection.Complete(renderEnabled),
		}
		if err != nil {
			row.Error = err.Error()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// compareChapterKeys orders numeric keys numerically ahead of the rest.
func compareChapterKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
