package env

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

func (token *Token) AmountUi(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(token.Decimals))
}

// LoadTokens merges a JSON object of mint -> token into the registry.
func (e *Env) LoadTokens(file string) error {
	infoJson, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	tokens := make(map[solana.PublicKey]*Token)
	if err := json.Unmarshal(infoJson, &tokens); err != nil {
		return fmt.Errorf("tokens file %s: %w", file, err)
	}
	for key, token := range tokens {
		e.tokens[key] = token
	}
	e.log.Info("load tokens", zap.String("file", file), zap.Int("count", len(tokens)))
	return nil
}

func (e *Env) Token(key solana.PublicKey) *Token {
	if item, ok := e.tokens[key]; ok {
		return item
	}
	return nil
}

// TokenOrRaw falls back to the mint address and base units for unknown
// mints.
func (e *Env) TokenOrRaw(key solana.PublicKey) *Token {
	if item := e.Token(key); item != nil {
		return item
	}
	return &Token{Symbol: key.String(), Name: key.String()}
}
