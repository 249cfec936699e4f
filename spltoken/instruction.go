package spltoken

import (
	"encoding/binary"
	"fmt"

	"github.com/egaotan/solana-swap/program"
	"github.com/gagliardetto/solana-go"
)

const instructionTransfer = 3

func InstructionTransfer(from, to, owner solana.PublicKey, amount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = instructionTransfer
	binary.LittleEndian.PutUint64(data[1:], amount)
	return program.NewInstruction(program.Token, []*solana.AccountMeta{
		{PublicKey: from, IsSigner: false, IsWritable: true},
		{PublicKey: to, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}, data)
}

// DecodeTransfer returns the source, destination and amount of a transfer
// instruction.
func DecodeTransfer(in solana.Instruction) (solana.PublicKey, solana.PublicKey, uint64, error) {
	data, err := in.Data()
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, 0, err
	}
	if len(data) != 9 {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("data is invalid")
	}
	if data[0] != instructionTransfer {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("is not transfer")
	}
	accounts := in.Accounts()
	if len(accounts) < 2 {
		return solana.PublicKey{}, solana.PublicKey{}, 0, fmt.Errorf("accounts are missing")
	}
	return accounts[0].PublicKey, accounts[1].PublicKey, binary.LittleEndian.Uint64(data[1:]), nil
}
