package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangarchive/internal/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "mangarchive <https-url> <lang>",
		Short: "Archive a MangaDex title into per-chapter .cbz and .epub files",
		Long: "mangarchive mirrors every chapter of one title in one language into the\n" +
			"library directory. Re-running the same command resumes where it stopped.",
		Example:       "  mangarchive https://mangadex.org/title/a1c7c817-4e59-43b7-9365-09675a149a6f/one-piece en",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(2),
		Annotations:   map[string]string{deferConfigLoad: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) || defersConfigLoad(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, ctx, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return services.Wrap(services.ErrUsage, "", "", err.Error(), nil)
	})

	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// usageArgs requires exactly n positional arguments and reports a mismatch as
// a usage error.
func usageArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return services.Wrap(services.ErrUsage, "", "",
				fmt.Sprintf("%s expects %d arguments, got %d (usage: %s)", cmd.Name(), n, len(args), cmd.UseLine()), nil)
		}
		return nil
	}
}
