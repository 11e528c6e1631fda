package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Resolve your wallet to its community username, creating it on first use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, s, err := signedInFeed(cmd.Context())
		if err != nil {
			return err
		}
		defer f.Close()

		fmt.Printf("✅ Signed in as %s (%s)\n", color.New(color.Bold, color.FgHiGreen).Sprint(s.Username), s.UserID)
		if s.Token != "" {
			fmt.Println(color.New(color.FgHiBlack).Sprint("session token: " + s.Token))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(signInCmd)
}
