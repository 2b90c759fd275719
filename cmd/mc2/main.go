// cmd/mc2 is the CLI entry-point built with Cobra.
//
// Usage:
//
//	mc2 run --scenario="update/update conflict" --workers=4
//	mc2 list
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"mc2/internal/planner"
	"mc2/internal/runner"
)

var (
	scenarioName string
	workers      int
)

func main() {
	root := &cobra.Command{
		Use:   "mc2",
		Short: "Model checker for a hierarchical, optimistic-concurrency document store",
	}

	root.AddCommand(runCmd(), listCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every ordering of one or all registered scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios := scenarios()
			if scenarioName != "" {
				s, ok := findScenario(scenarios, scenarioName)
				if !ok {
					return fmt.Errorf("no such scenario: %q", scenarioName)
				}
				scenarios = []runner.Scenario{s}
			}
			return runAll(scenarios)
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", "", "run only the named scenario (default: all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of orderings to check concurrently (default: 4)")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names of every registered scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range scenarios() {
				fmt.Println(s.Name)
			}
			return nil
		},
	}
}

func runAll(scs []runner.Scenario) error {
	total := 0
	failed := 0

	for _, s := range scs {
		report, err := runner.Run(context.Background(), runner.Config{Workers: workers}, s)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		status := "PASS"
		if !report.Pass {
			status = "FAIL"
			failed++
		}
		log.Printf("%s (%d checked): %s", status, report.Checked, report.Name)
		total += report.Checked

		if !report.Pass {
			printFailure(report)
		}
	}

	log.Printf("total executions checked = %d", total)
	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}
	return nil
}

func printFailure(report runner.Report) {
	f := report.Failure
	log.Printf("    errors:")
	for _, e := range f.Errors {
		log.Printf("        - %s", e)
	}
	log.Printf("    state:")
	for _, key := range f.State.Keys() {
		v, _ := f.State.Read(key)
		log.Printf("        %q => %v", key, v)
	}
	log.Printf("    execution:")
	for i, act := range f.Plan {
		marker := "    "
		if i == f.Step {
			marker = " ==>"
		}
		log.Printf("%s %s", marker, act)
	}
}

func findScenario(scs []runner.Scenario, name string) (runner.Scenario, bool) {
	for _, s := range scs {
		if s.Name == name {
			return s, true
		}
	}
	return runner.Scenario{}, false
}

func update(value string) func(cur *string) *string {
	return func(*string) *string { return &value }
}

func increment(cur *string) *string {
	if cur == nil {
		return nil
	}
	v := *cur + "+1"
	return &v
}

// scenarios ports the literal examples that seeded this model checker's
// test suite into a small registry a user can run from the CLI.
func scenarios() []runner.Scenario {
	return []runner.Scenario{
		{
			Name: "update/update conflict",
			Init: func(c *planner.Client) {
				c.Update("/path/x", update("1"))
			},
			Plan: func(p *planner.Planner) {
				p.Client("A").Update("/path/x", update("2"))
				p.Client("B").Update("/path/x", update("3"))
			},
		},
		{
			Name: "update/delete conflict",
			Init: func(c *planner.Client) {
				c.Update("/path/x", update("1"))
			},
			Plan: func(p *planner.Planner) {
				p.Client("A").Update("/path/x", update("2"))
				p.Client("B").Remove("/path/x")
			},
		},
		{
			Name: "delete, update sibling",
			Init: func(c *planner.Client) {
				c.Update("/path/x", update("1"))
				c.Update("/path/y", update("1"))
			},
			Plan: func(p *planner.Planner) {
				p.Client("A").Remove("/path/x")
				p.Client("B").Update("/path/y", increment)
			},
		},
	}
}
