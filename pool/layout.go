package pool

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

const (
	LayoutSize  = 121
	AccountSize = 8 + LayoutSize
)

// Discriminator prefixes every pool account image.
var Discriminator = discriminator("account:LiquidityPool")

// Direction names which reserve receives the input leg.
type Direction uint8

const (
	BaseToQuote Direction = iota
	QuoteToBase
)

func (d Direction) String() string {
	switch d {
	case BaseToQuote:
		return "base_to_quote"
	case QuoteToBase:
		return "quote_to_base"
	}
	return "unknown"
}

// ParseDirection accepts the names produced by Direction.String.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "base_to_quote":
		return BaseToQuote, true
	case "quote_to_base":
		return QuoteToBase, true
	}
	return 0, false
}

// State is the persisted reserve record of one pool. Field order and widths
// are the on-chain layout.
type State struct {
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	BaseReserve    uint64
	QuoteReserve   uint64
	Authority      solana.PublicKey
	Bump           uint8
	LastUpdateTime int64
}

type KeyedState struct {
	Key    solana.PublicKey
	Height uint64
	State
}

func discriminator(name string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte(name))
	copy(d[:], sum[:8])
	return d
}
