package backend

import (
	"time"

	"github.com/egaotan/solana-swap/pool"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type PoolCallback interface {
	OnPoolUpdate(ks *pool.KeyedState) error
}

// WatchPool polls the pool account every interval and calls cb each time it
// is seen at a newer slot. It returns when the fetcher's context is done or
// cb fails.
func (f *Fetcher) WatchPool(baseMint, quoteMint solana.PublicKey, interval time.Duration, cb PoolCallback) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	currentSlot := uint64(0)
	for {
		select {
		case <-ticker.C:
			ks, err := f.FetchPool(baseMint, quoteMint)
			if err != nil {
				f.log.Warn("fetch pool", zap.Error(err))
				continue
			}
			if ks.Height <= currentSlot {
				continue
			}
			currentSlot = ks.Height
			if err := cb.OnPoolUpdate(ks); err != nil {
				return err
			}
		case <-f.ctx.Done():
			f.log.Info("watch pool exit")
			return nil
		}
	}
}
