package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "swapd",
		Short:        "Constant-product swap engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newServeCmd())

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().Uint64("amount-in", 0, "input amount in base units")
	quoteCmd.Flags().Uint64("reserve-in", 0, "reserve of the input asset")
	quoteCmd.Flags().Uint64("reserve-out", 0, "reserve of the output asset")

	root.AddCommand(quoteCmd)

	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Derive the pool and vault addresses of a mint pair",
		RunE:  runAddress,
	}

	addressCmd.Flags().String("program-id", "", "swap program id")
	addressCmd.Flags().String("base-mint", "", "base mint")
	addressCmd.Flags().String("quote-mint", "", "quote mint")

	root.AddCommand(addressCmd)

	instructionCmd := &cobra.Command{
		Use:   "instruction",
		Short: "Build a swap instruction for a wallet",
		RunE:  runInstruction,
	}

	instructionCmd.Flags().String("program-id", "", "swap program id")
	instructionCmd.Flags().String("base-mint", "", "base mint")
	instructionCmd.Flags().String("quote-mint", "", "quote mint")
	instructionCmd.Flags().String("user", "", "wallet that signs the swap")
	instructionCmd.Flags().String("direction", "base_to_quote", "base_to_quote or quote_to_base")
	instructionCmd.Flags().Uint64("amount-in", 0, "input amount in base units")
	instructionCmd.Flags().Uint64("minimum-amount-out", 0, "slippage bound")

	root.AddCommand(instructionCmd)

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Read a deployed pool over RPC",
		RunE:  runPool,
	}

	poolCmd.Flags().String("program-id", "", "swap program id")
	poolCmd.Flags().String("base-mint", "", "base mint")
	poolCmd.Flags().String("quote-mint", "", "quote mint")
	poolCmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	poolCmd.Flags().StringSlice("rpc-nodes", nil, "candidate RPC URLs, the fastest is used")
	poolCmd.Flags().Bool("watch", false, "keep polling the pool")
	poolCmd.Flags().Duration("interval", 2*time.Second, "poll interval with --watch")
	poolCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(poolCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
