package swap

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/program"
	"github.com/gagliardetto/solana-go"
)

const (
	MethodSwapSolToUsdt  = "swap_sol_to_usdt"
	MethodSwapUsdtToSol  = "swap_usdt_to_sol"
	MethodInitializePool = "initialize_pool"
)

var methods = []string{MethodSwapSolToUsdt, MethodSwapUsdtToSol, MethodInitializePool}

func sighash(method string) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	return sum[:8]
}

func instructionData(method string, a, b uint64) []byte {
	data := make([]byte, 24)
	copy(data, sighash(method))
	binary.LittleEndian.PutUint64(data[8:], a)
	binary.LittleEndian.PutUint64(data[16:], b)
	return data
}

// MethodFor names the swap instruction for d.
func MethodFor(d pool.Direction) string {
	if d == pool.QuoteToBase {
		return MethodSwapUsdtToSol
	}
	return MethodSwapSolToUsdt
}

// DecodeInstructionData returns the method and the two amount arguments of a
// swap program instruction.
func DecodeInstructionData(data []byte) (string, uint64, uint64, error) {
	if len(data) != 24 {
		return "", 0, 0, fmt.Errorf("instruction data size is not valid, expected: 24, actual: %d", len(data))
	}
	for _, method := range methods {
		if bytes.Equal(data[:8], sighash(method)) {
			return method, binary.LittleEndian.Uint64(data[8:]), binary.LittleEndian.Uint64(data[16:]), nil
		}
	}
	return "", 0, 0, fmt.Errorf("unknown instruction - %x", data[:8])
}

func InstructionSwap(programID, user, baseMint, quoteMint solana.PublicKey, d pool.Direction, amountIn, minimumAmountOut uint64) (solana.Instruction, error) {
	poolKey, _, err := pool.FindPoolAddress(programID, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	vaults, err := pool.FindVaults(poolKey, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	userBase, _, err := solana.FindAssociatedTokenAddress(user, baseMint)
	if err != nil {
		return nil, err
	}
	userQuote, _, err := solana.FindAssociatedTokenAddress(user, quoteMint)
	if err != nil {
		return nil, err
	}
	return program.NewInstruction(programID, []*solana.AccountMeta{
		{PublicKey: user, IsSigner: true, IsWritable: true},
		{PublicKey: poolKey, IsSigner: false, IsWritable: true},
		{PublicKey: baseMint, IsSigner: false, IsWritable: false},
		{PublicKey: quoteMint, IsSigner: false, IsWritable: false},
		{PublicKey: userBase, IsSigner: false, IsWritable: true},
		{PublicKey: userQuote, IsSigner: false, IsWritable: true},
		{PublicKey: vaults.Base, IsSigner: false, IsWritable: true},
		{PublicKey: vaults.Quote, IsSigner: false, IsWritable: true},
		{PublicKey: program.Token, IsSigner: false, IsWritable: false},
		{PublicKey: program.AssociatedToken, IsSigner: false, IsWritable: false},
		{PublicKey: program.System, IsSigner: false, IsWritable: false},
	}, instructionData(MethodFor(d), amountIn, minimumAmountOut)), nil
}

func InstructionInitializePool(programID, authority, baseMint, quoteMint solana.PublicKey, initialBase, initialQuote uint64) (solana.Instruction, error) {
	poolKey, _, err := pool.FindPoolAddress(programID, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	vaults, err := pool.FindVaults(poolKey, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	return program.NewInstruction(programID, []*solana.AccountMeta{
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: poolKey, IsSigner: false, IsWritable: true},
		{PublicKey: baseMint, IsSigner: false, IsWritable: false},
		{PublicKey: quoteMint, IsSigner: false, IsWritable: false},
		{PublicKey: vaults.Base, IsSigner: false, IsWritable: true},
		{PublicKey: vaults.Quote, IsSigner: false, IsWritable: true},
		{PublicKey: program.Token, IsSigner: false, IsWritable: false},
		{PublicKey: program.AssociatedToken, IsSigner: false, IsWritable: false},
		{PublicKey: program.System, IsSigner: false, IsWritable: false},
		{PublicKey: program.SysRent, IsSigner: false, IsWritable: false},
	}, instructionData(MethodInitializePool, initialBase, initialQuote)), nil
}
