package swap

import (
	"github.com/egaotan/solana-swap/cpmm"
	"github.com/egaotan/solana-swap/pool"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Engine runs the swap state transition for any pool. It keeps no state of
// its own; the caller owns the pool record and commits the result.
type Engine struct {
	programID solana.PublicKey
	custody   Custody
	signer    Signer
	clock     Clock
	notifier  Notifier
	log       *zap.Logger
}

func NewEngine(programID solana.PublicKey, custody Custody, signer Signer, clock Clock, notifier Notifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		programID: programID,
		custody:   custody,
		signer:    signer,
		clock:     clock,
		notifier:  notifier,
		log:       logger.With(zap.String("component", "swap")),
	}
}

func (e *Engine) ProgramID() solana.PublicKey {
	return e.programID
}

// Quote prices a swap without touching custody.
func (e *Engine) Quote(state pool.State, d pool.Direction, amountIn uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, cpmm.ErrInvalidAmount
	}
	reserveIn, reserveOut := state.Reserves(d)
	out, err := cpmm.ComputeOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return 0, err
	}
	e.log.Debug("quote", zap.Stringer("direction", d), zap.Uint64("amount_in", amountIn), zap.Uint64("amount_out", out))
	return out, nil
}

// Swap executes req against the pool at poolKey and returns its next state.
// On error state is still the pool's state: nothing has been applied.
// Custody legs that already ran are undone by the host discarding its
// transaction.
func (e *Engine) Swap(poolKey solana.PublicKey, state pool.State, req *Request) (pool.State, *Result, error) {
	out, err := e.Quote(state, req.Direction, req.AmountIn)
	if err != nil {
		return state, nil, err
	}
	if out < req.MinimumAmountOut {
		return state, nil, cpmm.ErrSlippageExceeded
	}
	token, err := e.signer.DeriveAndSign(poolKey, state)
	if err != nil {
		return state, nil, err
	}

	mintIn, mintOut := state.Mints(req.Direction)
	vaults, err := pool.FindVaults(poolKey, state.BaseMint, state.QuoteMint)
	if err != nil {
		return state, nil, err
	}
	vaultIn, vaultOut := vaults.For(req.Direction)
	userIn, _, err := solana.FindAssociatedTokenAddress(req.User, mintIn)
	if err != nil {
		return state, nil, err
	}
	userOut, _, err := solana.FindAssociatedTokenAddress(req.User, mintOut)
	if err != nil {
		return state, nil, err
	}

	if err := e.custody.Transfer(mintIn, req.AmountIn, userIn, vaultIn, req.User); err != nil {
		return state, nil, &TransferError{Leg: LegIn, Err: err}
	}
	if err := e.custody.Transfer(mintOut, out, vaultOut, userOut, token.Authority()); err != nil {
		return state, nil, &TransferError{Leg: LegOut, Err: err}
	}

	now := e.clock.Now()
	next, err := state.ApplySwap(req.Direction, req.AmountIn, out, now)
	if err != nil {
		return state, nil, err
	}

	if e.notifier != nil {
		e.notifier.Notify(&Event{
			Pool:      poolKey,
			User:      req.User,
			TokenIn:   mintIn,
			TokenOut:  mintOut,
			AmountIn:  req.AmountIn,
			AmountOut: out,
			Timestamp: now,
		})
	}
	e.log.Debug("swap",
		zap.Stringer("pool", poolKey),
		zap.Stringer("user", req.User),
		zap.Stringer("direction", req.Direction),
		zap.Uint64("amount_in", req.AmountIn),
		zap.Uint64("amount_out", out),
	)
	return next, &Result{AmountIn: req.AmountIn, AmountOut: out, Timestamp: now}, nil
}

func (e *Engine) SwapBaseForQuote(poolKey solana.PublicKey, state pool.State, user solana.PublicKey, amountIn, minimumAmountOut uint64) (pool.State, *Result, error) {
	return e.Swap(poolKey, state, &Request{
		User:             user,
		Direction:        pool.BaseToQuote,
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
	})
}

func (e *Engine) SwapQuoteForBase(poolKey solana.PublicKey, state pool.State, user solana.PublicKey, amountIn, minimumAmountOut uint64) (pool.State, *Result, error) {
	return e.Swap(poolKey, state, &Request{
		User:             user,
		Direction:        pool.QuoteToBase,
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
	})
}
