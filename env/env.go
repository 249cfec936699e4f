package env

import (
	"github.com/egaotan/solana-swap/program"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Env is the token registry: what the UI calls a mint and how many decimals
// its amounts carry.
type Env struct {
	log    *zap.Logger
	tokens map[solana.PublicKey]*Token
}

func NewEnv(logger *zap.Logger) *Env {
	if logger == nil {
		logger = zap.NewNop()
	}
	env := &Env{
		log: logger.With(zap.String("component", "env")),
		tokens: map[solana.PublicKey]*Token{
			program.SOL:  {Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9},
			program.USDT: {Symbol: "USDT", Name: "USDT", Decimals: 6},
			program.USDC: {Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		},
	}
	return env
}
