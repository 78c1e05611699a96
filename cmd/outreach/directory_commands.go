package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/directory"
	"outreach/internal/pipeline"
)

func newDirectoryCommand(ctx *commandContext) *cobra.Command {
	dirCmd := &cobra.Command{
		Use:   "directory",
		Short: "Query or build the institution's staff directory",
	}
	dirCmd.AddCommand(newDirectorySearchCommand(ctx))
	dirCmd.AddCommand(newDirectoryHarvestCommand(ctx))
	return dirCmd
}

func newDirectorySearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Look a name up and show every candidate with the match decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ctx.target()
			if err != nil {
				return err
			}
			if t.inst == nil {
				return fmt.Errorf("directory search needs --institution or INSTITUTION")
			}
			dir, err := directory.Open(ctx.config, t.inst, ctx.logger)
			if err != nil {
				return err
			}
			if dir == nil {
				return fmt.Errorf("institution %s has no directory", t.inst.ID)
			}
			defer directory.Close(dir)

			normalizer := pipeline.NewNormalizer(ctx.rules)
			name, err := normalizer.Normalize(strings.Join(args, " "))
			if err != nil {
				return err
			}
			candidates, err := dir.Search(cmd.Context(), name.Display)
			if err != nil {
				return err
			}

			matcher := pipeline.NewMatcher(ctx.config, normalizer)
			var match internal.MatchResult
			if t.strategy == config.StrategyScan {
				match = matcher.MatchScan(name, candidates)
			} else {
				match = matcher.Match(name, candidates)
			}

			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				mark := ""
				if match.Candidate != nil && *match.Candidate == c {
					mark = "*"
				}
				rows = append(rows, []string{mark, c.DisplayName, c.Email, strconv.FormatFloat(pipeline.Score(name, c), 'f', 2, 64)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"", "Name", "Email", "Score"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			fmt.Fprintf(out, "%s: %s (%s) %s\n", name.Display, match.Status, match.Reason, match.Email)
			return nil
		},
	}
}

func newDirectoryHarvestCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawl the institution's department pages for mailto links and save a static directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := ctx.institution()
			if err != nil {
				return err
			}
			if inst == nil || len(inst.Directory.StartURLs) == 0 {
				return fmt.Errorf("harvest needs an institution with directory.start_urls")
			}
			path := outPath
			if path == "" {
				path = inst.Directory.Path
			}
			if path == "" {
				return fmt.Errorf("no output path: pass --out or set directory.path")
			}

			harvester := directory.NewHarvester(ctx.config, inst.Directory, ctx.logger)
			candidates, err := harvester.Harvest(cmd.Context())
			if err != nil {
				return err
			}
			if err := directory.WriteStaticFile(path, candidates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "harvested %d addresses into %s\n", len(candidates), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output CSV (default directory.path)")
	return cmd
}
