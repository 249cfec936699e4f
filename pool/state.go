package pool

import (
	"math/bits"

	"github.com/egaotan/solana-swap/cpmm"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// Reserves returns the reserve paid into and the reserve paid out of for d.
func (s State) Reserves(d Direction) (reserveIn, reserveOut uint64) {
	if d == QuoteToBase {
		return s.QuoteReserve, s.BaseReserve
	}
	return s.BaseReserve, s.QuoteReserve
}

// Mints returns the input and output asset for d.
func (s State) Mints(d Direction) (mintIn, mintOut solana.PublicKey) {
	if d == QuoteToBase {
		return s.QuoteMint, s.BaseMint
	}
	return s.BaseMint, s.QuoteMint
}

// Product is the constant-product invariant of the current reserves.
func (s State) Product() *uint256.Int {
	return cpmm.Product(s.BaseReserve, s.QuoteReserve)
}

// ApplySwap returns the state after amountIn entered and amountOut left the
// pool. Both reserves and the timestamp change together; on error the
// receiver's values are the only state there is.
func (s State) ApplySwap(d Direction, amountIn, amountOut uint64, now int64) (State, error) {
	in, out := &s.BaseReserve, &s.QuoteReserve
	if d == QuoteToBase {
		in, out = &s.QuoteReserve, &s.BaseReserve
	}
	sum, carry := bits.Add64(*in, amountIn, 0)
	if carry != 0 {
		return State{}, cpmm.ErrMathOverflow
	}
	if amountOut > *out {
		return State{}, cpmm.ErrInsufficientLiquidity
	}
	*in = sum
	*out -= amountOut
	s.LastUpdateTime = now
	return s, nil
}
