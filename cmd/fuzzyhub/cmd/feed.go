package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/feed"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/search"
)

var (
	searchQuery  string
	showComments bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the community feed, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var f *feed.Feed
		if cfg.WalletAddress != "" {
			var err error
			f, _, err = signedInFeed(ctx)
			if err != nil {
				return err
			}
		} else {
			f = feed.New(api, cfg.Concurrency)
		}
		defer f.Close()

		if err := f.Refresh(ctx); err != nil {
			return fmt.Errorf("load feed: %w", err)
		}

		posts := search.Filter(f.Posts(), searchQuery, search.Options[feed.EnrichedPost]{Keys: search.PostKeys()})
		if len(posts) == 0 {
			fmt.Println("🤷‍♂️ No posts")
			return nil
		}

		renderFeed(posts)
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Publish a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, s, err := signedInFeed(cmd.Context())
		if err != nil {
			return err
		}
		defer f.Close()

		id, err := f.SubmitPost(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("✅ Post %d published as %s\n", id, color.New(color.Bold).Sprint(s.Username))
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <postId> <content>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		f, _, err := signedInFeed(cmd.Context())
		if err != nil {
			return err
		}
		defer f.Close()

		id, err := f.SubmitComment(cmd.Context(), postID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("✅ Comment %d added to post %d\n", id, postID)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <postId>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		f, _, err := signedInFeed(cmd.Context())
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := f.SubmitLike(cmd.Context(), postID); err != nil {
			return err
		}
		fmt.Printf("💜 Liked post %d\n", postID)
		return nil
	},
}

func init() {
	feedCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "fuzzy filter on content and username")
	feedCmd.Flags().BoolVarP(&showComments, "comments", "c", false, "show comments under each post")

	RootCmd.AddCommand(feedCmd, postCmd, commentCmd, likeCmd)
}

func parsePostID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func renderFeed(posts []feed.EnrichedPost) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(true)
	table.SetHeader([]string{"#", "Author", "Post", "Likes", "Comments", "When"})

	for _, p := range posts {
		likes := strconv.Itoa(len(p.Likes))
		if p.LikedByViewer {
			likes = "💜 " + likes
		}
		table.Append([]string{
			strconv.FormatInt(p.PostID, 10),
			color.New(color.FgHiCyan).Sprint(p.Username),
			p.Content,
			likes,
			strconv.Itoa(len(p.Comments)),
			p.CreatedAt.Local().Format("Jan 2 15:04"),
		})
	}
	table.Render()

	if !showComments {
		return
	}
	for _, p := range posts {
		if len(p.Comments) == 0 {
			continue
		}
		fmt.Printf("\n%s %d\n", color.New(color.Bold).Sprint("Post"), p.PostID)
		for _, c := range p.Comments {
			fmt.Printf("  %s %s\n", color.New(color.FgHiCyan).Sprint(c.Username+":"), c.Content)
		}
	}
}
