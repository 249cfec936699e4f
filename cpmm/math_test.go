package cpmm

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOutput(t *testing.T) {
	cases := []struct {
		name       string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
		want       uint64
	}{
		{"balanced", 1_000, 1_000_000, 1_000_000, 996},
		{"fee vector", 1_000, 1_000_000, 2_000_000, 1992},
		{"one sol into 50/5000", 1_000_000_000, 50_000_000_000, 5_000_000_000, 97_750_848},
		{"dust rounds to zero", 1, 1_000_000, 1_000_000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ComputeOutput(tc.amountIn, tc.reserveIn, tc.reserveOut)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestComputeOutput_FeeVectorMatchesFormula(t *testing.T) {
	out, err := ComputeOutput(1000, 1_000_000, 2_000_000)
	require.NoError(t, err)

	effective := new(big.Int).Mul(big.NewInt(1000), big.NewInt(FeeNumerator))
	require.Equal(t, int64(997_000), effective.Int64())
	numerator := new(big.Int).Mul(effective, big.NewInt(2_000_000))
	denominator := new(big.Int).Add(new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(FeeDenominator)), effective)
	want := new(big.Int).Div(numerator, denominator)
	assert.Equal(t, want.Uint64(), out)
}

func TestComputeOutput_EmptyReserves(t *testing.T) {
	for _, r := range [][2]uint64{{0, 1}, {1, 0}, {0, 0}} {
		_, err := ComputeOutput(10, r[0], r[1])
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	}
}

func TestComputeOutput_ZeroAmount(t *testing.T) {
	_, err := ComputeOutput(0, 10, 10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComputeOutput_Overflow(t *testing.T) {
	_, err := ComputeOutput(math.MaxUint64, math.MaxUint64/2, math.MaxUint64/2)
	require.ErrorIs(t, err, ErrMathOverflow)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeMathOverflow, code)

	_, err = ComputeOutput(math.MaxUint64, math.MaxUint64, math.MaxUint64)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestComputeOutput_LargeButSafe(t *testing.T) {
	// 2^40 * 997 * 2^64 stays below 2^128
	out, err := ComputeOutput(1<<40, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	assert.Less(t, out, uint64(1<<40))
}

func TestComputeOutput_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		reserveIn := uint64(rng.Int63n(1<<40)) + 1
		reserveOut := uint64(rng.Int63n(1<<40)) + 1
		amountIn := uint64(rng.Int63n(1<<40)) + 1

		out, err := ComputeOutput(amountIn, reserveIn, reserveOut)
		require.NoError(t, err)
		require.Less(t, out, reserveOut)

		next, err := ComputeOutput(amountIn+1, reserveIn, reserveOut)
		require.NoError(t, err)
		require.GreaterOrEqual(t, next, out, "output must be monotone in amountIn")

		// product after the swap never falls below the product before it
		before := Product(reserveIn, reserveOut)
		after := Product(reserveIn+amountIn, reserveOut-out)
		require.False(t, after.Lt(before), "k decreased: in=%d rIn=%d rOut=%d", amountIn, reserveIn, reserveOut)

		// the exact rational reference never pays less than the integer result
		ref := new(big.Rat).SetFrac(
			new(big.Int).Mul(new(big.Int).SetUint64(amountIn*FeeNumerator), new(big.Int).SetUint64(reserveOut)),
			new(big.Int).Add(
				new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), big.NewInt(FeeDenominator)),
				new(big.Int).SetUint64(amountIn*FeeNumerator),
			),
		)
		require.True(t, new(big.Rat).SetUint64(out).Cmp(ref) <= 0)
	}
}

func TestComputeOutput_RoundTripLosesValue(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		base := uint64(rng.Int63n(1<<36)) + 1000
		quote := uint64(rng.Int63n(1<<36)) + 1000
		amountIn := uint64(rng.Int63n(int64(base))) + 1

		quoteOut, err := ComputeOutput(amountIn, base, quote)
		require.NoError(t, err)
		if quoteOut == 0 {
			continue
		}
		baseBack, err := ComputeOutput(quoteOut, quote-quoteOut, base+amountIn)
		require.NoError(t, err)
		require.Less(t, baseBack, amountIn)
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "SlippageExceeded", CodeSlippageExceeded.String())
	assert.Equal(t, ErrorCode(6002), CodeInsufficientLiquidity)
	assert.Equal(t, "Unknown", ErrorCode(1).String())
	_, ok := CodeOf(assert.AnError)
	assert.False(t, ok)
}
