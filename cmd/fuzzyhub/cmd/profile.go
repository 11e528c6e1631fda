package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile [address]",
	Short: "Show an account's XRP balance and NFTs (defaults to your wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := cfg.WalletAddress
		if len(args) == 1 {
			address = args[0]
		}
		if address == "" {
			return fmt.Errorf("no address: pass one or set --wallet")
		}

		ctx := cmd.Context()
		info, err := api.Account(ctx, address)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Account"), info.Account)
		fmt.Printf("%s %s XRP\n", color.New(color.Bold).Sprint("Balance"), color.New(color.FgHiGreen).Sprint(info.BalanceXRP))
		fmt.Printf("%s %d\n", color.New(color.Bold).Sprint("Owned objects"), info.OwnerCount)

		nfts, err := api.AccountNFTs(ctx, address)
		if err != nil {
			return err
		}
		if len(nfts) == 0 {
			fmt.Println("\n🤷‍♂️ No NFTs")
			return nil
		}

		fmt.Println()
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"NFT", "Taxon", "Serial", "Name", "URI"})
		for _, n := range nfts {
			name := color.New(color.FgHiBlack).Sprint("(no metadata)")
			if v, ok := n.Metadata["name"].(string); ok && v != "" {
				name = v
			}
			table.Append([]string{
				shorten(n.NFTokenID),
				strconv.FormatUint(uint64(n.Taxon), 10),
				strconv.FormatUint(uint64(n.Serial), 10),
				name,
				n.DecodedURI,
			})
		}
		table.Render()
		return nil
	},
}

var nftNetwork string

var nftCmd = &cobra.Command{
	Use:   "nft <nftokenId>",
	Short: "Show an NFT's name, description and image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := api.NFT(cmd.Context(), args[0], nftNetwork)
		if err != nil {
			return err
		}

		fmt.Println(color.New(color.Bold).Sprint(card.Name))
		fmt.Println(card.Description)
		if card.Image != nil {
			fmt.Printf("%s %s\n", color.New(color.FgHiBlack).Sprint("image"), *card.Image)
		}
		if card.URI != nil {
			fmt.Printf("%s %s\n", color.New(color.FgHiBlack).Sprint("uri"), *card.URI)
		}
		return nil
	},
}

func init() {
	nftCmd.Flags().StringVar(&nftNetwork, "network", "mainnet", "mainnet or testnet")

	RootCmd.AddCommand(profileCmd, nftCmd)
}

func shorten(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "…" + id[len(id)-8:]
}
