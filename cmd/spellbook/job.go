package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect generation job runs",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print whether a generation job is currently running on this host",
	Long: `status reports on the local advisory lease used to keep two
"spellbook generate" invocations from racing on the same host. It does
not poll the database job table — that is a detail the single-writer
lease already enforces at acquire time (spec §4.H).`,
	RunE: runJobStatus,
}

func init() {
	jobCmd.AddCommand(jobStatusCmd)
}

func runJobStatus(cmd *cobra.Command, _ []string) error {
	held, err := localLeaseHeld(localLeasePath("generate"))
	if err != nil {
		return fmt.Errorf("job status: %w", err)
	}
	if held {
		fmt.Println(warnStyle.Render("generate: RUNNING (lease held)"))
		return nil
	}
	fmt.Println(mutedStyle.Render("generate: not running"))
	return nil
}
