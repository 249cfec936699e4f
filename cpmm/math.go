// Package cpmm prices swaps against a two-asset constant-product reserve.
package cpmm

import (
	"github.com/holiman/uint256"
)

// fee: 0.3% => multiplier 997/1000
const (
	FeeNumerator   = 997
	FeeDenominator = 1000
)

// safeBits is the widest intermediate the pricing formula may produce.
const safeBits = 128

var (
	feeMul = uint256.NewInt(FeeNumerator)
	feeDen = uint256.NewInt(FeeDenominator)
)

// ComputeOutput returns the amount of the output asset paid for amountIn of
// the input asset:
//
//	out = floor(amountIn*997 * reserveOut / (reserveIn*1000 + amountIn*997))
//
// Every intermediate is checked against a 128-bit width and the division
// truncates, so rounding never favours the caller.
func ComputeOutput(amountIn, reserveIn, reserveOut uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInsufficientLiquidity
	}
	if amountIn == 0 {
		return 0, ErrInvalidAmount
	}
	amountInWithFee, err := mul(uint256.NewInt(amountIn), feeMul)
	if err != nil {
		return 0, err
	}
	numerator, err := mul(amountInWithFee, uint256.NewInt(reserveOut))
	if err != nil {
		return 0, err
	}
	denominator, err := mul(uint256.NewInt(reserveIn), feeDen)
	if err != nil {
		return 0, err
	}
	denominator, err = add(denominator, amountInWithFee)
	if err != nil {
		return 0, err
	}
	amountOut := new(uint256.Int).Div(numerator, denominator)
	if !amountOut.IsUint64() {
		return 0, ErrMathOverflow
	}
	return amountOut.Uint64(), nil
}

// Product returns the reserve invariant k = a*b. It cannot overflow 256 bits.
func Product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow || z.BitLen() > safeBits {
		return nil, ErrMathOverflow
	}
	return z, nil
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow || z.BitLen() > safeBits {
		return nil, ErrMathOverflow
	}
	return z, nil
}
