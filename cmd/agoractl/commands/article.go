package commands

import (
	"fmt"
	"io"
	"time"

	httptransport "agora/contexts/governance/voting-core/transport/http"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newArticleCmd(s settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Inspect article phases, countdowns and tallies",
	}
	cmd.AddCommand(newArticleStatusCmd(s), newArticleUrgentCmd(s))
	return cmd
}

func newArticleStatusCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status <article-id>",
		Short: "Show the phase, deadline and running tallies of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := s.readClient()
			// The deadline endpoint applies any overdue transition first.
			lifecycle, err := client.Deadline(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			article, err := client.GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tallies, err := client.Tallies(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printArticleStatus(cmd.OutOrStdout(), article, lifecycle, tallies, time.Now())
			return nil
		},
	}
}

func newArticleUrgentCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "urgent",
		Short: "List votes closing within three days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := s.readClient().Urgent(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "no votes closing soon")
				return nil
			}
			now := time.Now()
			for _, item := range resp.Items {
				fmt.Fprintf(out, "%s\t%s\t%s\tcloses %s\n", item.ArticleID, item.Phase, item.Title, humanize.RelTime(item.Deadline, now, "ago", "from now"))
			}
			return nil
		},
	}
}

func printArticleStatus(
	out io.Writer,
	article httptransport.ArticleResponse,
	lifecycle httptransport.LifecycleResponse,
	tallies httptransport.TalliesResponse,
	now time.Time,
) {
	fmt.Fprintf(out, "%s (%s): %s\n", article.Title, article.Type, article.Phase)
	if article.Designation != "" {
		fmt.Fprintf(out, "designation: %s\n", article.Designation)
	}
	if lifecycle.Deadline != nil {
		fmt.Fprintf(out, "closes %s (%s)\n",
			humanize.RelTime(*lifecycle.Deadline, now, "ago", "from now"),
			lifecycle.Deadline.UTC().Format(time.RFC3339),
		)
	}
	if article.VotedDebateDuration != "" {
		fmt.Fprintf(out, "debate duration: %s\n", article.VotedDebateDuration)
	}
	if tallies.Duration.Total > 0 {
		fmt.Fprintf(out, "duration votes: %s total, leading %s\n", humanize.Comma(int64(tallies.Duration.Total)), tallies.Duration.Leading)
		for _, count := range tallies.Duration.Counts {
			fmt.Fprintf(out, "  %-13s %s\n", count.Value, humanize.Comma(int64(count.Count)))
		}
	}
	if tallies.Approval.Total > 0 {
		fmt.Fprintf(out, "approve %s / reject %s\n", humanize.Comma(int64(tallies.Approval.Approve)), humanize.Comma(int64(tallies.Approval.Reject)))
	}
}
