package program

import "github.com/gagliardetto/solana-go"

var (
	SwapProgram     = solana.MustPublicKeyFromBase58("FP5e6JndLDRFmPS8sNwAwLfoPK8HGkbzspqqDvJRZbnJ")
	Token           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedToken = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	System          = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	SysRent         = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

var (
	USDT = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	USDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	SOL  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// ID resolves the swap program id from configuration. An empty value
// selects SwapProgram.
func ID(configured string) (solana.PublicKey, error) {
	if configured == "" {
		return SwapProgram, nil
	}
	return solana.PublicKeyFromBase58(configured)
}
