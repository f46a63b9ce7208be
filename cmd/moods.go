package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodify/internal/moods"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/urfave/cli/v3"
)

func moodsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "moods",
		Usage: "Inspect mood presets and composed filters",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available mood presets",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: r.MoodsList,
			},
			{
				Name:      "preview",
				Usage:     "Show the audio feature filters a mood combination produces",
				ArgsUsage: "<mood> [mood...]",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "moods", Min: 0, Max: -1},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: r.MoodsPreview,
			},
		},
	}
}

// MoodsList prints the available mood preset names.
func (r *Runner) MoodsList(ctx context.Context, cmd *cli.Command) error {
	names := moods.Names()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"moods": names}, true)
	}

	r.writePlainHeader("Available Moods")
	for _, name := range names {
		r.writePlain("  %s\n", name)
	}
	r.writePlain("\nCombine moods with 'moodify playlist generate <mood> [mood...]'\n")
	return nil
}

// MoodsPreview composes the named moods and prints the resulting filter ranges.
func (r *Runner) MoodsPreview(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringArgs("moods")
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one mood is required", shared.ErrMissingArgument)
	}

	for _, name := range names {
		if _, ok := moods.Lookup(strings.ToLower(strings.TrimSpace(name))); !ok {
			return fmt.Errorf("%w: unknown mood %q, see 'moodify moods list'", shared.ErrInvalidArgument, name)
		}
	}

	filters := moods.Compose(names)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"moods": names, "filters": filters}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Filters for %s", strings.Join(names, " + ")))
	for _, feature := range moods.Features() {
		rng, ok := filters[feature]
		if !ok {
			continue
		}
		r.writePlain("  %-16s min %.3f  target %.3f  max %.3f\n", feature, rng.Min, rng.Target, rng.Max)
	}
	return nil
}
