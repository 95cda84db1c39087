package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	inspectSession string
	sessionsStatus string
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show interview progress for a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		pr, err := a.service.Progress(cmd.Context(), inspectSession)
		if err != nil {
			return err
		}
		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), pr)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Phase:\t%s\n", pr.Phase)
		fmt.Fprintf(w, "Core answered:\t%d/%d\n", pr.CoreAnswered, pr.CoreTotal)
		fmt.Fprintf(w, "Total answered:\t%d\n", pr.TotalAnswered)
		fmt.Fprintf(w, "Estimated remaining:\t%d\n", pr.EstimatedRemaining)
		fmt.Fprintf(w, "Complete:\t%t\n", pr.IsComplete)
		return w.Flush()
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show the answers of a session in review or complete",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		review, err := a.service.Review(cmd.Context(), inspectSession)
		if err != nil {
			return err
		}
		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), review)
		}
		newPrompter(nil, cmd.OutOrStdout()).showReview(review)
		fmt.Fprintf(cmd.OutOrStdout(), "Confirmed: %t\n", review.Confirmed)
		return nil
	},
}

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Show the stored answer ledger of a session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		records, err := a.service.Answers(cmd.Context(), inspectSession)
		if err != nil {
			return err
		}
		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), records)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tQUESTION\tSOURCE\tANSWER")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Seq, r.QuestionID, r.Source, truncate(r.Answer, 60))
		}
		return w.Flush()
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List onboarding sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		sessions, err := a.store.ListSessions(cmd.Context(), sessionsStatus)
		if err != nil {
			return err
		}
		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), sessions)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tSTATUS\tUPDATED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, truncate(s.CompanyName, 40), s.Status, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{progressCmd, reviewCmd, answersCmd} {
		c.Flags().StringVar(&inspectSession, "session", "", "Session ID")
		_ = c.MarkFlagRequired("session")
		rootCmd.AddCommand(c)
	}
	sessionsCmd.Flags().StringVar(&sessionsStatus, "status", "", "Filter by status (created, interviewing, interviewed)")
	rootCmd.AddCommand(sessionsCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
