package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangarchive/internal/fetcher"
	"mangarchive/internal/preflight"
	"mangarchive/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the renderer binary, and API reachability",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			if !offline {
				client, err := fetcher.NewHTTPClient(cfg.HTTPTimeout(), cfg.API.Proxy)
				if err != nil {
					results = append(results, preflight.Result{Name: "Catalog API", Detail: err.Error()})
				} else {
					results = append(results, preflight.CheckAPI(cmd.Context(), client, cfg.API.BaseURL, cfg.API.UserAgent))
				}
			}

			for _, line := range renderSectionHeader("mangarchive doctor", colorize) {
				fmt.Fprintln(out, line)
			}
			if !cfg.Render.Enabled {
				fmt.Fprintln(out, renderStatusLine("Renderer", statusInfo, "disabled (render.enabled = false)", colorize))
			}
			for _, result := range results {
				kind := statusError
				if result.Passed {
					kind = statusOK
				} else if result.Warning {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if preflight.Failed(results) {
				return services.Wrap(services.ErrConfiguration, "doctor", "", "one or more checks failed", nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the API reachability check")
	return cmd
}
