package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chosenoffset.com/timecube/internal/scenario"
)

var scenariosJSON bool

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenarios in --dir",
	Args:  cobra.NoArgs,
	RunE:  runScenarios,
}

// scenarioListing is the JSON form of one scenario entry.
type scenarioListing struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
	Cubes       int    `json:"cubes"`
	Error       string `json:"error,omitempty"`
}

func runScenarios(cmd *cobra.Command, args []string) error {
	entries, err := scenario.ScanDirectory(scenarioDir)
	if err != nil {
		return err
	}

	if scenariosJSON {
		listing := make([]scenarioListing, 0, len(entries))
		for _, e := range entries {
			l := scenarioListing{Name: e.Name, Path: e.Path, Description: e.Description, Steps: e.Steps, Cubes: e.Cubes}
			if e.Err != nil {
				l.Error = e.Err.Error()
			}
			listing = append(listing, l)
		}
		return OutputJSON(cmd.OutOrStdout(), listing, false)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tCUBES\tDESCRIPTION")
	for _, e := range entries {
		if e.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\tinvalid: %v\n", e.Name, e.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", e.Name, e.Steps, e.Cubes, e.Description)
	}
	return w.Flush()
}
