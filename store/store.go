package store

import (
	"context"

	"github.com/egaotan/solana-swap/swap"
)

// Store keeps the swap history. It is a notify sink.
type Store struct {
	dao *Dao
}

func NewStore(dao *Dao) *Store {
	return &Store{dao: dao}
}

func (s *Store) Name() string {
	return "mysql"
}

func (s *Store) Save(ctx context.Context, event *swap.Event) error {
	return s.dao.SaveSwap(ctx, NewSwapRecord(event))
}

func (s *Store) Swaps(ctx context.Context, q SwapQuery) ([]*SwapRecord, error) {
	return s.dao.SelectSwaps(ctx, q)
}
