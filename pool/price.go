package pool

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// SpotPrice is the quote amount paid for one whole base unit at the current
// reserve ratio, before fees.
func SpotPrice(s State, baseDecimals, quoteDecimals int32) decimal.Decimal {
	if s.BaseReserve == 0 || s.QuoteReserve == 0 {
		return decimal.Zero
	}
	base := decimal.NewFromBigInt(new(big.Int).SetUint64(s.BaseReserve), -baseDecimals)
	quote := decimal.NewFromBigInt(new(big.Int).SetUint64(s.QuoteReserve), -quoteDecimals)
	return quote.Div(base)
}
