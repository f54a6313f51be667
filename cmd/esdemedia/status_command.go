package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"esdemedia/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			configKind := statusOK
			if !ctx.configExists {
				configKind = statusWarn
			}
			lines = append(lines,
				renderStatusLine("Config file", configKind, ctx.configPath, colorize),
				renderStatusLine("Config exists", configKind, yesNo(ctx.configExists), colorize),
				renderStatusLine("Input", statusInfo, cfg.Paths.InputDir, colorize),
				renderStatusLine("Output", statusInfo, cfg.Paths.OutputDir, colorize),
				renderStatusLine("Skip video", statusInfo, yesNo(cfg.Pipeline.SkipVideoOptimization), colorize),
				renderStatusLine("Skip PDF", statusInfo, yesNo(cfg.Pipeline.SkipPDFOptimization), colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			lines = append(lines, directoryLines(preflight.RunAll(cfg), colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Tools", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
