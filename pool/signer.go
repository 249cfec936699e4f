package pool

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var ErrPoolAddressMismatch = errors.New("pool state does not derive to the pool address")

// AuthorizationToken carries the pool's signing capability for one
// outbound transfer. Only ProgramSigner can produce a non-zero token.
type AuthorizationToken struct {
	authority solana.PublicKey
	seeds     [][]byte
}

func (t AuthorizationToken) Authority() solana.PublicKey {
	return t.authority
}

// Seeds are the signer seeds, bump included, that reproduce Authority.
func (t AuthorizationToken) Seeds() [][]byte {
	return t.seeds
}

func (t AuthorizationToken) IsZero() bool {
	return t.authority == solana.PublicKey{}
}

// ProgramSigner authorizes a pool's outbound leg by re-deriving its address
// from public inputs; no private key is involved.
type ProgramSigner struct {
	programID solana.PublicKey
}

func NewProgramSigner(programID solana.PublicKey) *ProgramSigner {
	return &ProgramSigner{programID: programID}
}

func (s *ProgramSigner) DeriveAndSign(poolKey solana.PublicKey, state State) (AuthorizationToken, error) {
	key, err := CreatePoolAddress(s.programID, state.BaseMint, state.QuoteMint, state.Bump)
	if err != nil {
		return AuthorizationToken{}, err
	}
	if key != poolKey {
		return AuthorizationToken{}, ErrPoolAddressMismatch
	}
	return AuthorizationToken{
		authority: key,
		seeds:     append(poolSeeds(state.BaseMint, state.QuoteMint), []byte{state.Bump}),
	}, nil
}
