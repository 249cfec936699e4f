package notify

import (
	"context"
	"sync"

	"github.com/egaotan/solana-swap/swap"
	"go.uber.org/zap"
)

// Sink receives every swap event the notifier accepted.
type Sink interface {
	Name() string
	Save(ctx context.Context, event *swap.Event) error
}

// Notify fans swap events out to its sinks on a background goroutine.
// Notify never blocks the caller: when the buffer is full the event is
// dropped.
type Notify struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
	data   chan *swap.Event
	sinks  []Sink
}

func NewNotify(ctx context.Context, size int, logger *zap.Logger, sinks ...Sink) *Notify {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	n := &Notify{
		ctx:    ctx,
		cancel: cancel,
		log:    logger.With(zap.String("component", "notify")),
		data:   make(chan *swap.Event, size),
		sinks:  sinks,
	}
	return n
}

func (n *Notify) Start() {
	n.wg.Add(1)
	go n.listen()
}

// Stop ends the listener and waits until the queued events are drained.
func (n *Notify) Stop() {
	n.cancel()
	n.wg.Wait()
}

func (n *Notify) Notify(event *swap.Event) {
	select {
	case n.data <- event:
	default:
		n.log.Warn("notification dropped", zap.Stringer("pool", event.Pool), zap.Stringer("user", event.User))
	}
}

func (n *Notify) listen() {
	defer n.wg.Done()
	for {
		select {
		case event := <-n.data:
			n.dispatch(n.ctx, event)
		case <-n.ctx.Done():
			n.drain()
			return
		}
	}
}

// drain hands what is already buffered to the sinks with a fresh context.
func (n *Notify) drain() {
	for {
		select {
		case event := <-n.data:
			n.dispatch(context.Background(), event)
		default:
			return
		}
	}
}

func (n *Notify) dispatch(ctx context.Context, event *swap.Event) {
	for _, sink := range n.sinks {
		if err := sink.Save(ctx, event); err != nil {
			n.log.Warn("sink failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}
