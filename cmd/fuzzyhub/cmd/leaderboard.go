package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/search"
)

var (
	leaderboardSort   string
	leaderboardLimit  int
	leaderboardSearch string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank community members by posts, comments or likes received",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := api.Leaderboard(cmd.Context(), leaderboardSort, leaderboardLimit)
		if err != nil {
			return err
		}

		entries = search.Filter(entries, leaderboardSearch, search.Options[domain.LeaderboardEntry]{Keys: search.LeaderboardKeys()})
		if len(entries) == 0 {
			fmt.Println("🤷‍♂️ No members")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Rank", "Username", "Wallet", "Posts", "Comments", "Likes"})
		for i, e := range entries {
			table.Append([]string{
				strconv.Itoa(i + 1),
				e.Username,
				e.UserID,
				strconv.FormatInt(e.PostCount, 10),
				strconv.FormatInt(e.CommentCount, 10),
				strconv.FormatInt(e.LikesReceived, 10),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardSort, "sort", "posts", "posts, comments or likes")
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 0, "number of members to show (server default when 0)")
	leaderboardCmd.Flags().StringVarP(&leaderboardSearch, "search", "s", "", "fuzzy filter on username and wallet")

	RootCmd.AddCommand(leaderboardCmd)
}
