package pool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var PoolSeed = []byte("pool")

func poolSeeds(baseMint, quoteMint solana.PublicKey) [][]byte {
	return [][]byte{PoolSeed, baseMint.Bytes(), quoteMint.Bytes()}
}

// FindPoolAddress derives the pool account for a mint pair together with the
// bump that takes it off the ed25519 curve.
func FindPoolAddress(programID, baseMint, quoteMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(poolSeeds(baseMint, quoteMint), programID)
}

// CreatePoolAddress re-derives the pool account from a known bump.
func CreatePoolAddress(programID, baseMint, quoteMint solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	seeds := append(poolSeeds(baseMint, quoteMint), []byte{bump})
	return solana.CreateProgramAddress(seeds, programID)
}

// Vaults are the custody token accounts owned by a pool.
type Vaults struct {
	Base  solana.PublicKey
	Quote solana.PublicKey
}

// For returns the vault receiving the input leg and the vault paying the
// output leg for d.
func (v Vaults) For(d Direction) (in, out solana.PublicKey) {
	if d == QuoteToBase {
		return v.Quote, v.Base
	}
	return v.Base, v.Quote
}

func FindVaults(poolKey, baseMint, quoteMint solana.PublicKey) (Vaults, error) {
	base, _, err := solana.FindAssociatedTokenAddress(poolKey, baseMint)
	if err != nil {
		return Vaults{}, fmt.Errorf("derive base vault: %w", err)
	}
	quote, _, err := solana.FindAssociatedTokenAddress(poolKey, quoteMint)
	if err != nil {
		return Vaults{}, fmt.Errorf("derive quote vault: %w", err)
	}
	return Vaults{Base: base, Quote: quote}, nil
}
