package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prscore/internal/output"
)

var (
	jobsLimit int
	jobsJSON  bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List analysis jobs recorded by the service",
	Long: `List analysis jobs from the job store.

Job history outlives the service only with store.driver: sqlite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobsListRun()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job and its report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobsShowRun(args[0])
	},
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum number of jobs to list")
	jobsShowCmd.Flags().BoolVar(&jobsJSON, "json", false, "print the job as JSON")
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

func warnIfEphemeral() {
	if viper.GetString("store.driver") != "sqlite" {
		ui.Warning("store.driver is %q; only jobs from this process are visible", viper.GetString("store.driver"))
	}
}

func jobsListRun() error {
	warnIfEphemeral()
	s, err := getStore()
	if err != nil {
		return err
	}

	all, err := s.ListJobs(cmdContext(), jobsLimit)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		ui.Info("No jobs found")
		return nil
	}

	table := ui.Table([]string{"ID", "Status", "Target", "Score", "Created"})
	for _, j := range all {
		target := j.Request.PRURL
		if target == "" {
			target = j.Request.Repo
		}
		sc := ""
		if j.Result != nil {
			sc = output.ScoreColor(j.Result.Score.Overall)
		}
		table.Append([]string{j.ID, output.StatusColor(j.Status), target, sc, j.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	return table.Render()
}

func jobsShowRun(id string) error {
	warnIfEphemeral()
	s, err := getStore()
	if err != nil {
		return err
	}

	j, err := s.GetJob(cmdContext(), id)
	if err != nil {
		return err
	}

	if jobsJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(j)
	}

	fmt.Fprintf(ui.Out, "Job %s  %s\n", output.Cyan(j.ID), output.StatusColor(j.Status))
	switch {
	case j.Result != nil:
		fmt.Fprintln(ui.Out)
		return ui.Report(j.Result)
	case j.Error != "":
		ui.Error("%s", j.Error)
	}
	return nil
}
