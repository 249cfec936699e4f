package backend

import (
	"context"
	"fmt"

	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/spltoken"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MultipleAccountSliceSize = 100
)

type Account struct {
	PubKey  solana.PublicKey
	Account *rpc.Account
	Height  uint64
}

// Data returns the raw bytes of the account, or nil when it does not exist.
func (a *Account) Data() []byte {
	if a.Account == nil || a.Account.Data == nil {
		return nil
	}
	return a.Account.Data.GetBinary()
}

// Fetcher reads deployed pools over JSON-RPC.
type Fetcher struct {
	ctx       context.Context
	log       *zap.Logger
	rpcClient *rpc.Client
	programID solana.PublicKey
}

func NewFetcher(ctx context.Context, endpoint string, programID solana.PublicKey, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		ctx:       ctx,
		log:       logger.With(zap.String("component", "fetcher")),
		rpcClient: rpc.New(endpoint),
		programID: programID,
	}
}

func (f *Fetcher) Account(pubkey solana.PublicKey) (*Account, error) {
	response, err := f.rpcClient.GetAccountInfoWithOpts(f.ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding: solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", pubkey, err)
	}
	if response.Value == nil {
		return nil, fmt.Errorf("account %s not found", pubkey)
	}
	return &Account{
		PubKey:  pubkey,
		Height:  response.Context.Slot,
		Account: response.Value,
	}, nil
}

func (f *Fetcher) Accounts(pubkeys []solana.PublicKey) ([]*Account, error) {
	accounts := make([]*Account, 0, len(pubkeys))
	index, end := 0, 0
	for index < len(pubkeys) {
		if end = index + MultipleAccountSliceSize; end > len(pubkeys) {
			end = len(pubkeys)
		}
		getMultipleAccountsRsp, err := f.rpcClient.GetMultipleAccountsWithOpts(f.ctx, pubkeys[index:end],
			&rpc.GetMultipleAccountsOpts{Encoding: solana.EncodingBase64})
		if err != nil {
			return nil, err
		}
		if len(getMultipleAccountsRsp.Value) != end-index {
			return nil, fmt.Errorf("get accounts err, some account is missing")
		}
		for i, account := range getMultipleAccountsRsp.Value {
			accounts = append(accounts, &Account{
				PubKey:  pubkeys[index+i],
				Height:  getMultipleAccountsRsp.Context.Slot,
				Account: account,
			})
		}
		index = end
	}
	return accounts, nil
}

func (f *Fetcher) FetchPool(baseMint, quoteMint solana.PublicKey) (*pool.KeyedState, error) {
	key, _, err := pool.FindPoolAddress(f.programID, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	account, err := f.Account(key)
	if err != nil {
		return nil, err
	}
	state, err := pool.Decode(account.Data())
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", key, err)
	}
	return &pool.KeyedState{Key: key, Height: account.Height, State: state}, nil
}

// PoolInfo is a pool together with what its vaults actually hold.
type PoolInfo struct {
	Pool          *pool.KeyedState
	Vaults        pool.Vaults
	BaseBalance   uint64
	QuoteBalance  uint64
	BaseDecimals  uint8
	QuoteDecimals uint8
	Price         decimal.Decimal
}

// FetchPoolInfo reads the pool, both vaults and both mints in one round
// trip.
func (f *Fetcher) FetchPoolInfo(baseMint, quoteMint solana.PublicKey) (*PoolInfo, error) {
	key, _, err := pool.FindPoolAddress(f.programID, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	vaults, err := pool.FindVaults(key, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	accounts, err := f.Accounts([]solana.PublicKey{key, vaults.Base, vaults.Quote, baseMint, quoteMint})
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.Data() == nil {
			return nil, fmt.Errorf("account %s not found", account.PubKey)
		}
	}
	state, err := pool.Decode(accounts[0].Data())
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", key, err)
	}
	baseVault, err := spltoken.DecodeUser(accounts[1].Data())
	if err != nil {
		return nil, fmt.Errorf("base vault %s: %w", vaults.Base, err)
	}
	quoteVault, err := spltoken.DecodeUser(accounts[2].Data())
	if err != nil {
		return nil, fmt.Errorf("quote vault %s: %w", vaults.Quote, err)
	}
	baseToken, err := spltoken.DecodeMint(accounts[3].Data())
	if err != nil {
		return nil, fmt.Errorf("base mint %s: %w", baseMint, err)
	}
	quoteToken, err := spltoken.DecodeMint(accounts[4].Data())
	if err != nil {
		return nil, fmt.Errorf("quote mint %s: %w", quoteMint, err)
	}
	if baseVault.Amount != state.BaseReserve || quoteVault.Amount != state.QuoteReserve {
		f.log.Warn("vault balance differs from reserve",
			zap.Stringer("pool", key),
			zap.Uint64("base_reserve", state.BaseReserve),
			zap.Uint64("base_vault", baseVault.Amount),
			zap.Uint64("quote_reserve", state.QuoteReserve),
			zap.Uint64("quote_vault", quoteVault.Amount),
		)
	}
	return &PoolInfo{
		Pool:          &pool.KeyedState{Key: key, Height: accounts[0].Height, State: state},
		Vaults:        vaults,
		BaseBalance:   baseVault.Amount,
		QuoteBalance:  quoteVault.Amount,
		BaseDecimals:  baseToken.Decimals,
		QuoteDecimals: quoteToken.Decimals,
		Price:         pool.SpotPrice(state, int32(baseToken.Decimals), int32(quoteToken.Decimals)),
	}, nil
}
