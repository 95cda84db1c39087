package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"onboarding/pkg/config"
	"onboarding/pkg/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate interview and evaluator metrics from Prometheus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		if cfg.PrometheusURL == "" {
			return errors.New("prometheus_url is not configured")
		}
		qs, err := metrics.NewQueryService(cfg.PrometheusURL)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		stats, err := qs.GetInterviewStats(ctx)
		if err != nil {
			return err
		}
		usage, err := qs.GetModelUsage(ctx)
		if err != nil {
			return err
		}

		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"interviews": stats,
				"models":     usage,
			})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Interviews reviewed:\t%d\n", stats.InterviewsReviewed)
		fmt.Fprintf(w, "Interviews confirmed:\t%d\n", stats.InterviewsConfirmed)
		for _, k := range sortedKeys(stats.Evaluations) {
			fmt.Fprintf(w, "Evaluations (%s):\t%d\n", k, stats.Evaluations[k])
		}
		for _, k := range sortedKeys(stats.FollowUps) {
			fmt.Fprintf(w, "Follow-ups (%s):\t%d\n", k, stats.FollowUps[k])
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "MODEL\tREQUESTS\tFAILED\tPROMPT\tCOMPLETION")
		models := make([]string, 0, len(usage))
		for m := range usage {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			u := usage[m]
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", u.Model, u.Requests, u.FailedRequests, u.PromptTokens, u.CompletionTokens)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
