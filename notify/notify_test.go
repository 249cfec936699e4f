package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/egaotan/solana-swap/dingsdk"
	"github.com/egaotan/solana-swap/env"
	"github.com/egaotan/solana-swap/program"
	"github.com/egaotan/solana-swap/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memorySink struct {
	mu     sync.Mutex
	events []*swap.Event
	err    error
	block  chan struct{}
}

func (s *memorySink) Name() string {
	return "memory"
}

func (s *memorySink) Save(ctx context.Context, event *swap.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *memorySink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newEvent(amountIn uint64) *swap.Event {
	return &swap.Event{
		Pool:      solana.NewWallet().PublicKey(),
		User:      solana.NewWallet().PublicKey(),
		TokenIn:   program.SOL,
		TokenOut:  program.USDT,
		AmountIn:  amountIn,
		AmountOut: 97_750_848,
		Timestamp: 1_700_000_000,
	}
}

func TestNotify_FanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first, second := &memorySink{}, &memorySink{err: errors.New("down")}
	n := NewNotify(ctx, 8, nil, first, second)
	n.Start()
	for i := 0; i < 5; i++ {
		n.Notify(newEvent(uint64(i + 1)))
	}
	require.Eventually(t, func() bool { return first.len() == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	n.Stop()
	assert.Equal(t, 5, second.len(), "a failing sink does not stop delivery")
	assert.Equal(t, uint64(1), first.events[0].AmountIn)
}

func TestNotify_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())
	sink := &memorySink{block: make(chan struct{})}
	n := NewNotify(ctx, 1, zap.New(core), sink)
	n.Start()

	n.Notify(newEvent(1))
	// wait until the listener holds the first event inside the sink
	require.Eventually(t, func() bool { return len(n.data) == 0 }, time.Second, time.Millisecond)
	n.Notify(newEvent(2))
	n.Notify(newEvent(3))
	assert.Equal(t, 1, logs.FilterMessage("notification dropped").Len())

	close(sink.block)
	cancel()
	n.Stop()
	assert.Equal(t, 2, sink.len())
}

func TestNotify_StopWithLiveContext(t *testing.T) {
	sink := &memorySink{}
	n := NewNotify(context.Background(), 8, nil, sink)
	n.Start()
	for i := 0; i < 3; i++ {
		n.Notify(newEvent(uint64(i + 1)))
	}

	stopped := make(chan struct{})
	go func() {
		n.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return while the parent context was live")
	}
	assert.Equal(t, 3, sink.len())
}

func TestText(t *testing.T) {
	event := newEvent(1_000_000_000)
	text := Text(env.NewEnv(nil), event)
	assert.Contains(t, text, "SOL(1.00)->USDT(97.75);")
	assert.Contains(t, text, "time: 2023-11-14 22:13:20;")
	assert.Contains(t, text, event.Pool.String())
}

func TestDingSink(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	sink := NewDingSink(dingsdk.NewDingSdk(server.URL), env.NewEnv(nil))
	assert.Equal(t, "ding", sink.Name())
	require.NoError(t, sink.Save(context.Background(), newEvent(1_000_000_000)))
	assert.Contains(t, body, "SOL(1.00)")
}
