package api

import (
	"errors"
	"net/http"

	"github.com/egaotan/solana-swap/backend"
	"github.com/egaotan/solana-swap/cpmm"
	"github.com/egaotan/solana-swap/pool"
	"github.com/egaotan/solana-swap/spltoken"
	"github.com/egaotan/solana-swap/swap"
	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest     = "BadRequest"
	CodeTransferFailed = "TransferFailed"
	CodeNotFound       = "NotFound"
	CodeAlreadyExists  = "AlreadyExists"
	CodeInvalidPool    = "InvalidPool"
	CodeInvalidAccount = "InvalidAccount"
	CodeDisabled       = "Disabled"
	CodeInternal       = "Internal"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func statusOf(err error) (int, string) {
	if code, ok := cpmm.CodeOf(err); ok {
		return http.StatusBadRequest, code.String()
	}
	var transferErr *swap.TransferError
	switch {
	case errors.As(err, &transferErr):
		return http.StatusBadRequest, CodeTransferFailed
	case errors.Is(err, backend.ErrPoolNotFound), errors.Is(err, spltoken.ErrAccountNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, backend.ErrPoolExists), errors.Is(err, spltoken.ErrAccountExists):
		return http.StatusConflict, CodeAlreadyExists
	case errors.Is(err, pool.ErrSameMint), errors.Is(err, pool.ErrPoolAddressMismatch):
		return http.StatusBadRequest, CodeInvalidPool
	case errors.Is(err, spltoken.ErrMintMismatch), errors.Is(err, spltoken.ErrOverflow):
		return http.StatusBadRequest, CodeInvalidAccount
	}
	return http.StatusInternalServerError, CodeInternal
}

func fail(c *gin.Context, err error) {
	status, code := statusOf(err)
	c.JSON(status, &ErrorResponse{Code: code, Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, &ErrorResponse{Code: CodeBadRequest, Error: err.Error()})
}
