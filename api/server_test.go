package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/egaotan/solana-swap/backend"
	"github.com/egaotan/solana-swap/env"
	"github.com/egaotan/solana-swap/program"
	"github.com/egaotan/solana-swap/store"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock int64

func (c fixedClock) Now() int64 {
	return int64(c)
}

type memoryHistory struct {
	query   store.SwapQuery
	records []*store.SwapRecord
	err     error
}

func (h *memoryHistory) Swaps(ctx context.Context, q store.SwapQuery) ([]*store.SwapRecord, error) {
	h.query = q
	return h.records, h.err
}

type fixture struct {
	server    *Server
	history   *memoryHistory
	authority solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := backend.NewBackend(program.SwapProgram, fixedClock(1_700_000_000), nil, nil)
	history := &memoryHistory{}
	f := &fixture{
		server:    NewServer(":0", b, env.NewEnv(nil), history, nil),
		history:   history,
		authority: solana.NewWallet().PublicKey(),
	}
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (f *fixture) seedPool(t *testing.T) *PoolResponse {
	t.Helper()
	for _, deposit := range []DepositRequest{
		{Owner: f.authority.String(), Mint: program.SOL.String(), Amount: 50_000_000_000},
		{Owner: f.authority.String(), Mint: program.USDT.String(), Amount: 5_000_000_000},
	} {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/accounts", deposit, nil))
	}
	created := &PoolResponse{}
	status := f.do(t, http.MethodPost, "/api/pools", &InitializePoolRequest{
		Authority:    f.authority.String(),
		BaseMint:     program.SOL.String(),
		QuoteMint:    program.USDT.String(),
		InitialBase:  50_000_000_000,
		InitialQuote: 5_000_000_000,
	}, created)
	require.Equal(t, http.StatusOK, status)
	return created
}

func TestPools(t *testing.T) {
	f := newFixture(t)
	created := f.seedPool(t)
	assert.Equal(t, "100", created.Price)
	assert.Equal(t, uint64(50_000_000_000), created.BaseReserve)
	assert.Equal(t, f.authority.String(), created.Authority)

	got := &PoolResponse{}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/pools/"+created.Address, nil, got))
	assert.Equal(t, created, got)

	list := make([]*PoolResponse, 0)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/pools", nil, &list))
	assert.Len(t, list, 1)

	failure := &ErrorResponse{}
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/pools", &InitializePoolRequest{
		Authority: f.authority.String(),
		BaseMint:  program.SOL.String(),
		QuoteMint: program.USDT.String(),
	}, failure))
	assert.Equal(t, CodeAlreadyExists, failure.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/pools/"+solana.NewWallet().PublicKey().String(), nil, failure))
	assert.Equal(t, CodeNotFound, failure.Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/pools/nope", nil, failure))
	assert.Equal(t, CodeBadRequest, failure.Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/pools", &InitializePoolRequest{
		Authority: f.authority.String(),
		BaseMint:  program.SOL.String(),
		QuoteMint: program.SOL.String(),
	}, failure))
	assert.Equal(t, CodeInvalidPool, failure.Code)
}

func TestQuoteAndSwap(t *testing.T) {
	f := newFixture(t)
	created := f.seedPool(t)
	user := solana.NewWallet().PublicKey()
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/accounts", &DepositRequest{
		Owner: user.String(), Mint: program.SOL.String(), Amount: 1_000_000_000,
	}, nil))

	quote := &QuoteResponse{}
	path := fmt.Sprintf("/api/quote?pool=%s&direction=base_to_quote&amount_in=1000000000", created.Address)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, path, nil, quote))
	assert.Equal(t, uint64(97_750_848), quote.AmountOut)
	assert.Equal(t, "97.750848", quote.AmountOutUi)

	failure := &ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/swap", &SwapRequest{
		Pool: created.Address, User: user.String(), Direction: "base_to_quote",
		AmountIn: 1_000_000_000, MinimumAmountOut: 97_750_849,
	}, failure))
	assert.Equal(t, "SlippageExceeded", failure.Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/swap", &SwapRequest{
		Pool: created.Address, User: user.String(), Direction: "base_to_quote",
	}, failure))
	assert.Equal(t, "InvalidAmount", failure.Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/swap", &SwapRequest{
		Pool: created.Address, User: user.String(), Direction: "base_to_quote", AmountIn: 2_000_000_000,
	}, failure))
	assert.Equal(t, CodeTransferFailed, failure.Code)

	swapped := &SwapResponse{}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/swap", &SwapRequest{
		Pool: created.Address, User: user.String(), Direction: "base_to_quote",
		AmountIn: 1_000_000_000, MinimumAmountOut: 97_750_848,
	}, swapped))
	assert.Equal(t, uint64(97_750_848), swapped.AmountOut)
	assert.Equal(t, int64(1_700_000_000), swapped.Timestamp)
	assert.Len(t, swapped.Logs, 1)

	ata, _, err := solana.FindAssociatedTokenAddress(user, program.USDT)
	require.NoError(t, err)
	account := &AccountResponse{}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/accounts/"+ata.String(), nil, account))
	assert.Equal(t, uint64(97_750_848), account.Amount)
	assert.Equal(t, user.String(), account.Owner)
	assert.False(t, account.Frozen)
}

func TestQuote_BadInput(t *testing.T) {
	f := newFixture(t)
	created := f.seedPool(t)
	failure := &ErrorResponse{}
	for _, path := range []string{
		"/api/quote?pool=nope&direction=base_to_quote&amount_in=1",
		"/api/quote?pool=" + created.Address + "&direction=sideways&amount_in=1",
		"/api/quote?pool=" + created.Address + "&direction=base_to_quote&amount_in=-1",
	} {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, path, nil, failure), path)
		assert.Equal(t, CodeBadRequest, failure.Code)
	}
	missing := "/api/quote?pool=" + solana.NewWallet().PublicKey().String() + "&direction=base_to_quote&amount_in=1"
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, missing, nil, failure))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/swap", map[string]string{"pool": created.Address}, failure))
	assert.Equal(t, CodeBadRequest, failure.Code)
}

func TestSwaps(t *testing.T) {
	f := newFixture(t)
	f.history.records = []*store.SwapRecord{{Id: 1, Pool: "P", AmountIn: 1_000, AmountOut: 1_992}}
	records := make([]*store.SwapRecord, 0)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/swaps?pool=P&limit=5", nil, &records))
	require.Len(t, records, 1)
	assert.Equal(t, uint64(1_992), records[0].AmountOut)
	assert.Equal(t, store.SwapQuery{Pool: "P", Limit: 5}, f.history.query)

	failure := &ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/swaps?limit=x", nil, failure))
	f.history.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, f.do(t, http.MethodGet, "/api/swaps", nil, failure))
	assert.Equal(t, CodeInternal, failure.Code)

	f.server.history = nil
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/swaps", nil, failure))
	assert.Equal(t, CodeDisabled, failure.Code)
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	owner := solana.NewWallet().PublicKey()
	account := &AccountResponse{}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/accounts", &DepositRequest{
		Owner: owner.String(), Mint: program.USDC.String(), Amount: 7,
	}, account))
	assert.Equal(t, uint64(7), account.Amount)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/accounts", &DepositRequest{
		Owner: owner.String(), Mint: program.USDC.String(), Amount: 3,
	}, account))
	assert.Equal(t, uint64(10), account.Amount)

	failure := &ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/accounts", &DepositRequest{
		Owner: owner.String(), Mint: program.USDC.String(), Amount: ^uint64(0),
	}, failure))
	assert.Equal(t, CodeInvalidAccount, failure.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/accounts/"+solana.NewWallet().PublicKey().String(), nil, failure))
}

func TestStart_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	b := backend.NewBackend(program.SwapProgram, fixedClock(1), nil, nil)
	server := NewServer(ln.Addr().String(), b, env.NewEnv(nil), nil, nil)
	select {
	case err := <-server.Start():
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("listen failure was not reported")
	}
}
