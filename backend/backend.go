package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/spltoken"
	"github.com/egaotan/solana-swap/swap"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var (
	ErrPoolExists   = errors.New("pool already exists")
	ErrPoolNotFound = errors.New("pool not found")
)

// SystemClock reads the wall clock in unix seconds.
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// Backend hosts pools and token accounts in memory and runs every
// transaction against them one at a time. A transaction either commits all
// of its writes or none.
type Backend struct {
	root      *zap.Logger
	log       *zap.Logger
	programID solana.PublicKey
	signer    *pool.ProgramSigner
	clock     swap.Clock
	notifier  swap.Notifier

	mu     sync.Mutex
	slot   uint64
	ledger *spltoken.Ledger
	pools  map[solana.PublicKey]*record
}

type record struct {
	data   []byte
	height uint64
}

func NewBackend(programID solana.PublicKey, clock swap.Clock, notifier swap.Notifier, logger *zap.Logger) *Backend {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		root:      logger,
		log:       logger.With(zap.String("component", "backend")),
		programID: programID,
		signer:    pool.NewProgramSigner(programID),
		clock:     clock,
		notifier:  notifier,
		ledger:    spltoken.NewLedger(),
		pools:     make(map[solana.PublicKey]*record),
	}
}

func (backend *Backend) ProgramID() solana.PublicKey {
	return backend.programID
}

func (backend *Backend) Slot() uint64 {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.slot
}

// InitializePool creates the pool for a mint pair, its two vaults, and moves
// the seed deposits out of the authority's associated token accounts.
func (backend *Backend) InitializePool(authority, baseMint, quoteMint solana.PublicKey, initialBase, initialQuote uint64) (*pool.KeyedState, error) {
	var created *pool.KeyedState
	_, err := backend.execute(swap.MethodInitializePool, func(tx *Tx) error {
		ks, err := pool.Initialize(backend.programID, baseMint, quoteMint, initialBase, initialQuote, authority, backend.clock.Now())
		if err != nil {
			return err
		}
		if _, err := tx.pool(ks.Key); err == nil {
			return fmt.Errorf("%w: %s", ErrPoolExists, ks.Key)
		} else if !errors.Is(err, ErrPoolNotFound) {
			return err
		}
		vaults, err := pool.FindVaults(ks.Key, baseMint, quoteMint)
		if err != nil {
			return err
		}
		deposits := []struct {
			mint   solana.PublicKey
			vault  solana.PublicKey
			amount uint64
		}{
			{baseMint, vaults.Base, initialBase},
			{quoteMint, vaults.Quote, initialQuote},
		}
		for _, deposit := range deposits {
			if _, err := tx.ledger.CreateAccount(deposit.vault, deposit.mint, ks.Key); err != nil {
				return err
			}
			if deposit.amount == 0 {
				continue
			}
			from, _, err := solana.FindAssociatedTokenAddress(authority, deposit.mint)
			if err != nil {
				return err
			}
			if err := tx.ledger.Transfer(deposit.mint, deposit.amount, from, deposit.vault, authority); err != nil {
				return &swap.TransferError{Leg: swap.LegIn, Err: err}
			}
		}
		ks.Height = tx.slot
		tx.putPool(ks.Key, ks.State)
		created = ks
		return nil
	})
	if err != nil {
		return nil, err
	}
	backend.log.Info("pool initialized",
		zap.Stringer("pool", created.Key),
		zap.Stringer("base_mint", baseMint),
		zap.Stringer("quote_mint", quoteMint),
		zap.Uint64("base_reserve", initialBase),
		zap.Uint64("quote_reserve", initialQuote),
	)
	return created, nil
}

// Swap runs req against the pool at poolKey. The user's associated token
// account for the output mint is created in the same transaction when it is
// missing, so a failed swap leaves no account behind.
func (backend *Backend) Swap(poolKey solana.PublicKey, req *swap.Request) (*Receipt, error) {
	var result *swap.Result
	receipt, err := backend.execute(swap.MethodFor(req.Direction), func(tx *Tx) error {
		state, err := tx.pool(poolKey)
		if err != nil {
			return err
		}
		_, mintOut := state.Mints(req.Direction)
		if _, err := tx.ledger.CreateAssociatedAccount(req.User, mintOut); err != nil {
			return err
		}
		engine := swap.NewEngine(backend.programID, tx.ledger, backend.signer, backend.clock, tx, backend.root)
		next, res, err := engine.Swap(poolKey, state, req)
		if err != nil {
			return err
		}
		tx.putPool(poolKey, next)
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Result = result
	return receipt, nil
}

// Quote prices a swap against the committed pool state.
func (backend *Backend) Quote(poolKey solana.PublicKey, d pool.Direction, amountIn uint64) (uint64, error) {
	ks, err := backend.Pool(poolKey)
	if err != nil {
		return 0, err
	}
	engine := swap.NewEngine(backend.programID, nil, backend.signer, backend.clock, nil, backend.root)
	return engine.Quote(ks.State, d, amountIn)
}

func (backend *Backend) Pool(key solana.PublicKey) (*pool.KeyedState, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	r, ok := backend.pools[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, key)
	}
	state, err := pool.Decode(r.data)
	if err != nil {
		return nil, err
	}
	return &pool.KeyedState{Key: key, Height: r.height, State: state}, nil
}

// Pools lists every pool ordered by address.
func (backend *Backend) Pools() ([]*pool.KeyedState, error) {
	backend.mu.Lock()
	keys := make([]solana.PublicKey, 0, len(backend.pools))
	for key := range backend.pools {
		keys = append(keys, key)
	}
	backend.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	pools := make([]*pool.KeyedState, 0, len(keys))
	for _, key := range keys {
		ks, err := backend.Pool(key)
		if err != nil {
			return nil, err
		}
		pools = append(pools, ks)
	}
	return pools, nil
}

// Deposit credits amount of mint to owner's associated token account,
// creating the account first when needed.
func (backend *Backend) Deposit(owner, mint solana.PublicKey, amount uint64) (solana.PublicKey, error) {
	var key solana.PublicKey
	_, err := backend.execute("deposit", func(tx *Tx) error {
		var err error
		key, err = tx.ledger.CreateAssociatedAccount(owner, mint)
		if err != nil {
			return err
		}
		if amount == 0 {
			return nil
		}
		return tx.ledger.MintTo(key, amount)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key, nil
}

func (backend *Backend) TokenAccount(key solana.PublicKey) (*spltoken.KeyedUser, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	user := backend.ledger.GetUser(key)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", spltoken.ErrAccountNotFound, key)
	}
	copied := *user
	return &copied, nil
}

// SetFrozen freezes or thaws a token account.
func (backend *Backend) SetFrozen(key solana.PublicKey, frozen bool) error {
	_, err := backend.execute("freeze", func(tx *Tx) error {
		return tx.ledger.SetFrozen(key, frozen)
	})
	return err
}
