package store

import (
	"github.com/egaotan/solana-swap/swap"
)

type SwapRecord struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement;type:bigint(20) unsigned;not null" json:"id"`
	Pool      string `gorm:"type:varchar(48);not null;index" json:"pool"`
	User      string `gorm:"type:varchar(48);not null;index" json:"user"`
	TokenIn   string `gorm:"type:varchar(48);not null" json:"token_in"`
	TokenOut  string `gorm:"type:varchar(48);not null" json:"token_out"`
	AmountIn  uint64 `gorm:"type:bigint(20) unsigned;not null" json:"amount_in"`
	AmountOut uint64 `gorm:"type:bigint(20) unsigned;not null" json:"amount_out"`
	Timestamp int64  `gorm:"type:bigint(20);not null" json:"timestamp"`
}

func NewSwapRecord(event *swap.Event) *SwapRecord {
	return &SwapRecord{
		Pool:      event.Pool.String(),
		User:      event.User.String(),
		TokenIn:   event.TokenIn.String(),
		TokenOut:  event.TokenOut.String(),
		AmountIn:  event.AmountIn,
		AmountOut: event.AmountOut,
		Timestamp: event.Timestamp,
	}
}

// SwapQuery filters swap history. Empty fields match everything.
type SwapQuery struct {
	Pool  string
	User  string
	Limit int
}
