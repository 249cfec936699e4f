package cpmm

import "errors"

// ErrorCode is the machine-readable kind of a swap failure. Values follow the
// program's custom error numbering.
type ErrorCode uint32

const (
	CodeInvalidAmount ErrorCode = 6000 + iota
	CodeSlippageExceeded
	CodeInsufficientLiquidity
	CodeMathOverflow
)

func (c ErrorCode) String() string {
	switch c {
	case CodeInvalidAmount:
		return "InvalidAmount"
	case CodeSlippageExceeded:
		return "SlippageExceeded"
	case CodeInsufficientLiquidity:
		return "InsufficientLiquidity"
	case CodeMathOverflow:
		return "MathOverflow"
	}
	return "Unknown"
}

type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrInvalidAmount         = &Error{Code: CodeInvalidAmount, Msg: "invalid amount"}
	ErrSlippageExceeded      = &Error{Code: CodeSlippageExceeded, Msg: "slippage tolerance exceeded"}
	ErrInsufficientLiquidity = &Error{Code: CodeInsufficientLiquidity, Msg: "insufficient liquidity"}
	ErrMathOverflow          = &Error{Code: CodeMathOverflow, Msg: "math overflow"}
)

// CodeOf reports the kind carried anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
