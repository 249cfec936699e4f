package backend

import (
	"fmt"

	"github.com/egaotan/solana-swap/cpmm"
	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/spltoken"
	"github.com/egaotan/solana-swap/swap"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Tx is the working set of one transaction. Reads fall through to the
// committed pools; writes stay here until commit.
type Tx struct {
	slot    uint64
	ledger  *spltoken.Ledger
	base    map[solana.PublicKey]*record
	written map[solana.PublicKey][]byte
	events  []*swap.Event
}

func (tx *Tx) pool(key solana.PublicKey) (pool.State, error) {
	data, ok := tx.written[key]
	if !ok {
		r, found := tx.base[key]
		if !found {
			return pool.State{}, fmt.Errorf("%w: %s", ErrPoolNotFound, key)
		}
		data = r.data
	}
	state, err := pool.Decode(data)
	if err != nil {
		return pool.State{}, fmt.Errorf("pool %s: %w", key, err)
	}
	return state, nil
}

func (tx *Tx) putPool(key solana.PublicKey, state pool.State) {
	tx.written[key] = pool.Encode(state)
}

// Notify stages an event until the transaction commits.
func (tx *Tx) Notify(event *swap.Event) {
	tx.events = append(tx.events, event)
}

// Receipt describes a committed transaction.
type Receipt struct {
	Slot      uint64
	Transfers []solana.Instruction
	Logs      []string
	Result    *swap.Result
}

func (backend *Backend) execute(name string, fn func(tx *Tx) error) (*Receipt, error) {
	backend.mu.Lock()
	tx := &Tx{
		slot:    backend.slot + 1,
		ledger:  backend.ledger.Clone(),
		base:    backend.pools,
		written: make(map[solana.PublicKey][]byte),
	}
	tx.ledger.Advance(tx.slot)
	if err := fn(tx); err != nil {
		backend.mu.Unlock()
		if _, ok := cpmm.CodeOf(err); ok {
			backend.log.Debug("transaction rejected", zap.String("instruction", name), zap.Error(err))
		} else {
			backend.log.Error("transaction failed", zap.String("instruction", name), zap.Error(err))
		}
		return nil, err
	}
	backend.slot = tx.slot
	backend.ledger = tx.ledger
	for key, data := range tx.written {
		backend.pools[key] = &record{data: data, height: tx.slot}
	}
	backend.mu.Unlock()

	receipt := &Receipt{
		Slot:      tx.slot,
		Transfers: tx.ledger.Journal(),
		Logs:      make([]string, 0, len(tx.events)),
	}
	for _, event := range tx.events {
		receipt.Logs = append(receipt.Logs, event.LogLine())
		if backend.notifier != nil {
			backend.notifier.Notify(event)
		}
	}
	return receipt, nil
}
