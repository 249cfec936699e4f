package program

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	id, err := ID("")
	require.NoError(t, err)
	assert.Equal(t, SwapProgram, id)

	id, err = ID(Token.String())
	require.NoError(t, err)
	assert.Equal(t, Token, id)

	_, err = ID("not-a-key")
	assert.Error(t, err)
}

func TestInstruction(t *testing.T) {
	meta := []*solana.AccountMeta{{PublicKey: SOL, IsWritable: true}}
	in := NewInstruction(Token, meta, []byte{3, 1})
	assert.Equal(t, Token, in.ProgramID())
	assert.Equal(t, meta, in.Accounts())
	data, err := in.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1}, data)
}
