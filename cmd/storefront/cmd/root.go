package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/storefront"
	"github.com/mikeydub/go-storefront/util"
)

var (
	manualEnv string
	quietLogs bool
)

func init() {
	cobra.OnInitialize(setDefaults)

	rootCmd.PersistentFlags().StringVarP(&manualEnv, "env", "e", "local", "env to run with")
	rootCmd.PersistentFlags().BoolVarP(&quietLogs, "quiet", "q", true, "hide info logs")
	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:3000", "storefront server url")
	rootCmd.PersistentFlags().String("rpc", "", "ethereum rpc url")
	rootCmd.PersistentFlags().String("collection", "", "collection contract address")
	rootCmd.PersistentFlags().Int64("chain-id", 4, "chain id the collection is deployed on")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "how long to wait for a command to finish")

	viper.BindPFlag("STOREFRONT_URL", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("CONTRACT_INTERACTION_URL", rootCmd.PersistentFlags().Lookup("rpc"))
	viper.BindPFlag("COLLECTION_ADDRESS", rootCmd.PersistentFlags().Lookup("collection"))
	viper.BindPFlag("CHAIN_ID", rootCmd.PersistentFlags().Lookup("chain-id"))
	viper.BindPFlag("COMMAND_TIMEOUT", rootCmd.PersistentFlags().Lookup("timeout"))

	env.RegisterValidation("COLLECTION_ADDRESS", "required", "eth_addr")
	env.RegisterValidation("CONTRACT_INTERACTION_URL", "required")
	env.RegisterValidation("WALLET_PRIVATE_KEY", "required")

	rootCmd.AddCommand(listCmd, mintCmd)
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Browse and mint the storefront's NFTs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quietLogs {
			logrus.SetLevel(logrus.WarnLevel)
		}
		return env.Validate()
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setDefaults() {
	viper.SetDefault("ENV", manualEnv)
	viper.SetDefault("WALLET_PRIVATE_KEY", "")
	viper.AutomaticEnv()

	util.LoadEnvFile(util.ResolveEnvFile("storefront", viper.GetString("ENV")))
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), viper.GetDuration("COMMAND_TIMEOUT"))
}

// newView dials the wallet and returns a loaded view
func newView(ctx context.Context) (*storefront.View, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(env.GetString(ctx, "WALLET_PRIVATE_KEY"), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_PRIVATE_KEY: %w", err)
	}

	collection := persist.EthereumAddress(env.GetString(ctx, "COLLECTION_ADDRESS"))
	wallet, err := storefront.DialKeyedWallet(ctx, env.GetString(ctx, "CONTRACT_INTERACTION_URL"), key, collection)
	if err != nil {
		return nil, err
	}

	client := storefront.NewClient(env.GetString(ctx, "STOREFRONT_URL"), nil)
	view := storefront.NewView(client, wallet, storefront.ColorNotifier{Out: os.Stdout}, big.NewInt(env.GetInt64(ctx, "CHAIN_ID")))

	if err := view.Load(ctx); err != nil {
		return nil, err
	}

	logger.For(ctx).Infof("loaded catalog for %s", wallet.Address())

	return view, nil
}
