package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chosenoffset.com/timecube/internal/scenario"
)

var (
	simulateJSON  bool
	simulateEvery int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario>",
	Short: "Run a scenario headlessly and print its trace",
	Long: `Runs a scenario file without opening a window. The argument is either a
path to a scenario file or the name of a scenario in --dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateEvery < 1 {
		return fmt.Errorf("--every must be at least 1, got %d", simulateEvery)
	}

	s, err := resolveScenario(args[0])
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(config.TimeTravel, logger)
	runner.SetMetrics(metrics)
	trace, err := runner.Run(cmd.Context(), s)
	if err != nil {
		return err
	}

	if simulateJSON {
		return OutputJSON(cmd.OutOrStdout(), trace, false)
	}
	return printTrace(cmd.OutOrStdout(), trace, simulateEvery)
}

// resolveScenario loads arg as a file when it exists, otherwise looks it up
// by name in the scenario directory.
func resolveScenario(arg string) (*scenario.Scenario, error) {
	if _, err := os.Stat(arg); err == nil {
		return scenario.Load(arg)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat scenario: %w", err)
	}
	return scenario.Find(scenarioDir, arg)
}

// printTrace writes one table row per printed step. The last step is always
// printed.
func printTrace(out io.Writer, trace *scenario.Trace, every int) error {
	fmt.Fprintf(out, "Scenario %s (run %s)\n\n", trace.Scenario, trace.RunID)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tWT\tFT\tPAST\tFROZEN\tCUBES\tERRORS")
	for i, f := range trace.Frames {
		if f.Step%every != 0 && i != len(trace.Frames)-1 {
			continue
		}
		var cubes []string
		for _, c := range f.Cubes {
			cubes = append(cubes, formatCube(c))
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%t\t%t\t%s\t%d\n",
			f.Step, f.WorldTime, f.FurthestTime, f.InPast, f.Frozen, strings.Join(cubes, " "), len(f.Errors))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, f := range trace.Frames {
		for _, e := range f.Errors {
			fmt.Fprintf(out, "step %d: %s\n", f.Step, e)
		}
	}
	return nil
}

func formatCube(c scenario.CubeFrame) string {
	s := fmt.Sprintf("%s:%s", c.Name, c.State)
	if c.State == "rewinding" {
		s += fmt.Sprintf("@%.2f", c.RewindPosition)
	}
	if len(c.Intervals) > 0 {
		s += strings.Join(c.Intervals, "")
	}
	return s
}
