package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/egaotan/solana-swap/backend"
	"github.com/egaotan/solana-swap/config"
	"github.com/egaotan/solana-swap/cpmm"
	"github.com/egaotan/solana-swap/networkdetect"
	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/program"
	"github.com/egaotan/solana-swap/swap"
	"github.com/egaotan/solana-swap/utils"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func keyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}

func programFlag(cmd *cobra.Command) (solana.PublicKey, error) {
	value, _ := cmd.Flags().GetString("program-id")
	return program.ID(value)
}

func mintsFlags(cmd *cobra.Command) (solana.PublicKey, solana.PublicKey, solana.PublicKey, error) {
	programID, err := programFlag(cmd)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, err
	}
	baseMint, err := keyFlag(cmd, "base-mint")
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, err
	}
	quoteMint, err := keyFlag(cmd, "quote-mint")
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, err
	}
	return programID, baseMint, quoteMint, nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	amountIn, _ := cmd.Flags().GetUint64("amount-in")
	reserveIn, _ := cmd.Flags().GetUint64("reserve-in")
	reserveOut, _ := cmd.Flags().GetUint64("reserve-out")
	out, err := cpmm.ComputeOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]uint64{
		"amount_in":  amountIn,
		"amount_out": out,
	})
}

func runAddress(cmd *cobra.Command, _ []string) error {
	programID, baseMint, quoteMint, err := mintsFlags(cmd)
	if err != nil {
		return err
	}
	key, bump, err := pool.FindPoolAddress(programID, baseMint, quoteMint)
	if err != nil {
		return err
	}
	vaults, err := pool.FindVaults(key, baseMint, quoteMint)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]interface{}{
		"pool":        key.String(),
		"bump":        bump,
		"base_vault":  vaults.Base.String(),
		"quote_vault": vaults.Quote.String(),
	})
}

func runInstruction(cmd *cobra.Command, _ []string) error {
	programID, baseMint, quoteMint, err := mintsFlags(cmd)
	if err != nil {
		return err
	}
	user, err := keyFlag(cmd, "user")
	if err != nil {
		return err
	}
	direction, _ := cmd.Flags().GetString("direction")
	d, ok := pool.ParseDirection(direction)
	if !ok {
		return fmt.Errorf("direction must be base_to_quote or quote_to_base, got %q", direction)
	}
	amountIn, _ := cmd.Flags().GetUint64("amount-in")
	minimumAmountOut, _ := cmd.Flags().GetUint64("minimum-amount-out")
	in, err := swap.InstructionSwap(programID, user, baseMint, quoteMint, d, amountIn, minimumAmountOut)
	if err != nil {
		return err
	}
	data, err := in.Data()
	if err != nil {
		return err
	}
	accounts := make([]map[string]interface{}, 0, len(in.Accounts()))
	for _, account := range in.Accounts() {
		accounts = append(accounts, map[string]interface{}{
			"pubkey":     account.PublicKey.String(),
			"isSigner":   account.IsSigner,
			"isWritable": account.IsWritable,
		})
	}
	return printJSON(cmd, map[string]interface{}{
		"programId": in.ProgramID().String(),
		"method":    swap.MethodFor(d),
		"accounts":  accounts,
		"data":      base64.StdEncoding.EncodeToString(data),
	})
}

type poolPrinter struct {
	cmd *cobra.Command
}

func (p *poolPrinter) OnPoolUpdate(ks *pool.KeyedState) error {
	return printJSON(p.cmd, map[string]interface{}{
		"slot":             ks.Height,
		"base_reserve":     ks.BaseReserve,
		"quote_reserve":    ks.QuoteReserve,
		"last_update_time": ks.LastUpdateTime,
	})
}

func runPool(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	programID, baseMint, quoteMint, err := mintsFlags(cmd)
	if err != nil {
		return err
	}

	endpoint := cfg.Endpoint()
	if len(cfg.RPCNodes) > 1 {
		peer, rtt, err := networkdetect.DetectPeers(cfg.RPCNodes, 3, logger)
		if err != nil {
			return err
		}
		logger.Info("use rpc node", zap.String("rpc", peer), zap.Duration("rtt", rtt))
		endpoint = peer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fetcher := backend.NewFetcher(ctx, endpoint, programID, logger)

	info, err := fetcher.FetchPoolInfo(baseMint, quoteMint)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, map[string]interface{}{
		"pool":           info.Pool.Key.String(),
		"slot":           info.Pool.Height,
		"base_mint":      info.Pool.BaseMint.String(),
		"quote_mint":     info.Pool.QuoteMint.String(),
		"base_reserve":   info.Pool.BaseReserve,
		"quote_reserve":  info.Pool.QuoteReserve,
		"base_vault":     info.Vaults.Base.String(),
		"quote_vault":    info.Vaults.Quote.String(),
		"base_balance":   info.BaseBalance,
		"quote_balance":  info.QuoteBalance,
		"authority":      info.Pool.Authority.String(),
		"price":          info.Price.String(),
		"last_update":    info.Pool.LastUpdateTime,
		"base_decimals":  info.BaseDecimals,
		"quote_decimals": info.QuoteDecimals,
	}); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	return fetcher.WatchPool(baseMint, quoteMint, interval, &poolPrinter{cmd: cmd})
}
