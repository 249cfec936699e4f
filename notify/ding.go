package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/egaotan/solana-swap/dingsdk"
	"github.com/egaotan/solana-swap/env"
	"github.com/egaotan/solana-swap/swap"
)

// DingSink posts a text summary of each swap to a DingTalk robot.
type DingSink struct {
	dsdk *dingsdk.DingSdk
	env  *env.Env
}

func NewDingSink(dsdk *dingsdk.DingSdk, env *env.Env) *DingSink {
	return &DingSink{dsdk: dsdk, env: env}
}

func (s *DingSink) Name() string {
	return "ding"
}

func (s *DingSink) Save(ctx context.Context, event *swap.Event) error {
	_, err := s.dsdk.Notify(ctx, dingsdk.NewTextNotify(Text(s.env, event)))
	return err
}

// Text renders event for humans, amounts in UI units.
func Text(e *env.Env, event *swap.Event) string {
	tokenIn := e.TokenOrRaw(event.TokenIn)
	tokenOut := e.TokenOrRaw(event.TokenOut)
	items := make([]string, 0, 5)
	items = append(items, "swap: ")
	items = append(items, fmt.Sprintf("pool: %s;", event.Pool))
	items = append(items, fmt.Sprintf("user: %s;", event.User))
	items = append(items, fmt.Sprintf("time: %s;", time.Unix(event.Timestamp, 0).UTC().Format("2006-01-02 15:04:05")))
	items = append(items, fmt.Sprintf("%s(%s)->%s(%s);",
		tokenIn.Symbol, tokenIn.AmountUi(event.AmountIn).StringFixed(2),
		tokenOut.Symbol, tokenOut.AmountUi(event.AmountOut).StringFixed(2)))
	return strings.Join(items, "\n")
}
