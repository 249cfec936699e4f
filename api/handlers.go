package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/spltoken"
	"github.com/egaotan/solana-swap/store"
	"github.com/egaotan/solana-swap/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

type PoolResponse struct {
	Address        string `json:"address"`
	BaseMint       string `json:"base_mint"`
	QuoteMint      string `json:"quote_mint"`
	BaseReserve    uint64 `json:"base_reserve"`
	QuoteReserve   uint64 `json:"quote_reserve"`
	Authority      string `json:"authority"`
	Bump           uint8  `json:"bump"`
	LastUpdateTime int64  `json:"last_update_time"`
	Slot           uint64 `json:"slot"`
	Price          string `json:"price"`
}

func (s *Server) poolResponse(ks *pool.KeyedState) *PoolResponse {
	base := s.env.TokenOrRaw(ks.BaseMint)
	quote := s.env.TokenOrRaw(ks.QuoteMint)
	return &PoolResponse{
		Address:        ks.Key.String(),
		BaseMint:       ks.BaseMint.String(),
		QuoteMint:      ks.QuoteMint.String(),
		BaseReserve:    ks.BaseReserve,
		QuoteReserve:   ks.QuoteReserve,
		Authority:      ks.Authority.String(),
		Bump:           ks.Bump,
		LastUpdateTime: ks.LastUpdateTime,
		Slot:           ks.Height,
		Price:          pool.SpotPrice(ks.State, int32(base.Decimals), int32(quote.Decimals)).String(),
	}
}

func parseKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s is not a valid public key: %w", name, err)
	}
	return key, nil
}

func parseDirection(value string) (pool.Direction, error) {
	d, ok := pool.ParseDirection(value)
	if !ok {
		return 0, fmt.Errorf("direction must be base_to_quote or quote_to_base, got %q", value)
	}
	return d, nil
}

func (s *Server) listPools(c *gin.Context) {
	pools, err := s.backend.Pools()
	if err != nil {
		fail(c, err)
		return
	}
	response := make([]*PoolResponse, 0, len(pools))
	for _, ks := range pools {
		response = append(response, s.poolResponse(ks))
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) getPool(c *gin.Context) {
	key, err := parseKey("key", c.Param("key"))
	if err != nil {
		badRequest(c, err)
		return
	}
	ks, err := s.backend.Pool(key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.poolResponse(ks))
}

type InitializePoolRequest struct {
	Authority    string `json:"authority" binding:"required"`
	BaseMint     string `json:"base_mint" binding:"required"`
	QuoteMint    string `json:"quote_mint" binding:"required"`
	InitialBase  uint64 `json:"initial_base"`
	InitialQuote uint64 `json:"initial_quote"`
}

func (s *Server) initializePool(c *gin.Context) {
	var req InitializePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	authority, err := parseKey("authority", req.Authority)
	if err != nil {
		badRequest(c, err)
		return
	}
	baseMint, err := parseKey("base_mint", req.BaseMint)
	if err != nil {
		badRequest(c, err)
		return
	}
	quoteMint, err := parseKey("quote_mint", req.QuoteMint)
	if err != nil {
		badRequest(c, err)
		return
	}
	ks, err := s.backend.InitializePool(authority, baseMint, quoteMint, req.InitialBase, req.InitialQuote)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.poolResponse(ks))
}

type QuoteResponse struct {
	Pool        string `json:"pool"`
	Direction   string `json:"direction"`
	AmountIn    uint64 `json:"amount_in"`
	AmountOut   uint64 `json:"amount_out"`
	AmountOutUi string `json:"amount_out_ui"`
}

func (s *Server) quote(c *gin.Context) {
	key, err := parseKey("pool", c.Query("pool"))
	if err != nil {
		badRequest(c, err)
		return
	}
	d, err := parseDirection(c.Query("direction"))
	if err != nil {
		badRequest(c, err)
		return
	}
	amountIn, err := strconv.ParseUint(c.Query("amount_in"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("amount_in: %w", err))
		return
	}
	ks, err := s.backend.Pool(key)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := s.backend.Quote(key, d, amountIn)
	if err != nil {
		fail(c, err)
		return
	}
	_, mintOut := ks.Mints(d)
	c.JSON(http.StatusOK, &QuoteResponse{
		Pool:        key.String(),
		Direction:   d.String(),
		AmountIn:    amountIn,
		AmountOut:   out,
		AmountOutUi: s.env.TokenOrRaw(mintOut).AmountUi(out).String(),
	})
}

type SwapRequest struct {
	Pool             string `json:"pool" binding:"required"`
	User             string `json:"user" binding:"required"`
	Direction        string `json:"direction" binding:"required"`
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
}

type SwapResponse struct {
	Slot      uint64   `json:"slot"`
	AmountIn  uint64   `json:"amount_in"`
	AmountOut uint64   `json:"amount_out"`
	Timestamp int64    `json:"timestamp"`
	Logs      []string `json:"logs"`
}

func (s *Server) swap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	key, err := parseKey("pool", req.Pool)
	if err != nil {
		badRequest(c, err)
		return
	}
	user, err := parseKey("user", req.User)
	if err != nil {
		badRequest(c, err)
		return
	}
	d, err := parseDirection(req.Direction)
	if err != nil {
		badRequest(c, err)
		return
	}
	receipt, err := s.backend.Swap(key, &swap.Request{
		User:             user,
		Direction:        d,
		AmountIn:         req.AmountIn,
		MinimumAmountOut: req.MinimumAmountOut,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, &SwapResponse{
		Slot:      receipt.Slot,
		AmountIn:  receipt.Result.AmountIn,
		AmountOut: receipt.Result.AmountOut,
		Timestamp: receipt.Result.Timestamp,
		Logs:      receipt.Logs,
	})
}

type DepositRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Mint   string `json:"mint" binding:"required"`
	Amount uint64 `json:"amount"`
}

type AccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  uint64 `json:"amount"`
	Frozen  bool   `json:"frozen"`
	Slot    uint64 `json:"slot"`
}

func accountResponse(user *spltoken.KeyedUser) *AccountResponse {
	return &AccountResponse{
		Address: user.Key.String(),
		Mint:    user.Mint.String(),
		Owner:   user.Owner.String(),
		Amount:  user.Amount,
		Frozen:  user.State == spltoken.AccountStateFrozen,
		Slot:    user.Height,
	}
}

func (s *Server) deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	owner, err := parseKey("owner", req.Owner)
	if err != nil {
		badRequest(c, err)
		return
	}
	mint, err := parseKey("mint", req.Mint)
	if err != nil {
		badRequest(c, err)
		return
	}
	key, err := s.backend.Deposit(owner, mint, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := s.backend.TokenAccount(key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse(user))
}

func (s *Server) getAccount(c *gin.Context) {
	key, err := parseKey("key", c.Param("key"))
	if err != nil {
		badRequest(c, err)
		return
	}
	user, err := s.backend.TokenAccount(key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse(user))
}

func (s *Server) swaps(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, &ErrorResponse{Code: CodeDisabled, Error: "swap history is not configured"})
		return
	}
	q := store.SwapQuery{
		Pool: c.Query("pool"),
		User: c.Query("user"),
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			badRequest(c, fmt.Errorf("limit: %w", err))
			return
		}
		q.Limit = n
	}
	records, err := s.history.Swaps(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
