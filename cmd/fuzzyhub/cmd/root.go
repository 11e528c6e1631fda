package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/client"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/config"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/feed"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

var (
	configFile string
	envPath    string
	apiURL     string
	wallet     string

	cfg *config.ClientConfig
	api *client.Client
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "fuzzyhub [command] [flags]",
	Short:         "Fuzzy community hub: read and write the community feed",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadClientConfig(configFile, envPath)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if wallet != "" {
			cfg.WalletAddress = wallet
		}

		if err := logger.Initialize(logger.Config{Debug: cfg.Debug, SentryDSN: cfg.SentryDSN}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		api = client.New(cfg.APIURL, cfg.Timeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Flush(2 * time.Second)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml)")
	RootCmd.PersistentFlags().StringVar(&envPath, "env", "", "directory holding .env files (default: config/)")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&wallet, "wallet", "w", "", "wallet address to act as (overrides config)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		outputErrorAndExit("%v", err)
	}
}

func outputErrorAndExit(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.New(color.FgHiRed, color.Bold).Sprint("🚨 "+fmt.Sprintf(msg, args...)))
	os.Exit(1)
}

// signedInFeed returns a feed acting as the configured wallet.
func signedInFeed(ctx context.Context) (*feed.Feed, *feed.Session, error) {
	if strings.TrimSpace(cfg.WalletAddress) == "" {
		return nil, nil, fmt.Errorf("no wallet address: pass --wallet or set wallet_address in config")
	}

	f := feed.New(api, cfg.Concurrency)
	s, err := f.SignIn(ctx, cfg.WalletAddress)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("sign in: %w", err)
	}
	return f, s, nil
}
