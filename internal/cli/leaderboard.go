package cli

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"scholarship-test-service/internal/client"
	"scholarship-test-service/internal/config"
	"scholarship-test-service/internal/domain"
)

// NewLeaderboardCmd prints the leaderboard once, or keeps refreshing it with --watch.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		account  accountFlags
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			c, err := account.connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !watch {
				entries, err := c.Leaderboard(cmd.Context())
				if err != nil {
					return err
				}
				printLeaderboard(out, entries)
				return nil
			}

			if interval <= 0 {
				interval = config.TTLDuration(cfg.Leaderboard.PushInterval, client.DefaultPollInterval)
			}
			client.PollLeaderboard(cmd.Context(), c, interval, func(entries []domain.LeaderboardEntry, err error) {
				if err != nil {
					log.Printf("refresh leaderboard: %v", err)
					return
				}
				fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format("15:04:05"))
				printLeaderboard(out, entries)
			})
			return nil
		},
	}
	account.bind(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval for --watch (defaults to leaderboard.push_interval or 30s)")
	return cmd
}

func printLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "no results yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tSCORE\tPERCENT\tTIME\tCOMPLETED")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%d%%\t%s\t%s\n",
			i+1, e.User.Username, e.Score, e.TotalQuestions, e.Percentage,
			formatSeconds(e.TimeTaken), e.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
