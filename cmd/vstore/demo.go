package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/pkg/host"
	"github.com/vango-dev/vstore/pkg/store"
)

func demoCmd() *cobra.Command {
	var (
		clicks  int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the counter demo",
		Long: `Run a counter store with two components.

The counter component renders the whole value and re-renders on every
click. The milestone component selects "count >= 3" and re-renders only
when that flips.

Examples:
  vstore demo
  vstore demo --clicks=10 --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			runDemo(cmd.OutOrStdout(), logger, clicks)
			return nil
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 3, "Number of increments")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log notification passes")

	return cmd
}

// demoResult is what the demo components observed.
type demoResult struct {
	final           int
	counterRenders  int
	milestoneRender int
}

func runDemo(w io.Writer, logger *slog.Logger, clicks int) demoResult {
	counter := store.New(0, store.WithName("counter"), store.WithLogger(logger))

	display := host.NewOwner(func(o *host.Owner) {
		n := store.Use(counter, o)
		info(w, "counter render #%d: count = %d", o.RenderCount()+1, n)
	})
	milestone := host.NewOwner(func(o *host.Owner) {
		reached := store.UseSelect(counter, o, func(n int) bool { return n >= 3 })
		info(w, "milestone render #%d: reached = %t", o.RenderCount()+1, reached)
	})

	display.Mount()
	milestone.Mount()
	defer display.Unmount()
	defer milestone.Unmount()

	for i := 0; i < clicks; i++ {
		counter.Update(func(c int) int { return c + 1 })
	}

	// No reducer: reported through the logger, state unchanged.
	counter.Dispatch("increment")

	res := demoResult{
		final:           counter.Get(),
		counterRenders:  display.RenderCount(),
		milestoneRender: milestone.RenderCount(),
	}
	fmt.Fprintln(w)
	success(w, "count = %d after %d clicks (%d counter renders, %d milestone renders)",
		res.final, clicks, res.counterRenders, res.milestoneRender)
	return res
}
