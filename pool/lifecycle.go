package pool

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var ErrSameMint = errors.New("base and quote mint are equal")

// Initialize builds the state of a new pool for a mint pair. The reserves are
// seeded verbatim; custody of the seed deposits is the caller's concern.
func Initialize(programID, baseMint, quoteMint solana.PublicKey, initialBase, initialQuote uint64, authority solana.PublicKey, now int64) (*KeyedState, error) {
	if baseMint == quoteMint {
		return nil, ErrSameMint
	}
	key, bump, err := FindPoolAddress(programID, baseMint, quoteMint)
	if err != nil {
		return nil, err
	}
	return &KeyedState{
		Key: key,
		State: State{
			BaseMint:       baseMint,
			QuoteMint:      quoteMint,
			BaseReserve:    initialBase,
			QuoteReserve:   initialQuote,
			Authority:      authority,
			Bump:           bump,
			LastUpdateTime: now,
		},
	}, nil
}
