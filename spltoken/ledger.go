package spltoken

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/egaotan/solana-swap/program"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrAccountNotFound   = errors.New("token account not found")
	ErrAccountExists     = errors.New("token account already exists")
	ErrMintMismatch      = errors.New("token account mint mismatch")
	ErrOwnerMismatch     = errors.New("owner does not match")
	ErrAccountFrozen     = errors.New("token account is frozen")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOverflow          = errors.New("token amount overflow")
)

const (
	AccountStateUninitialized uint8 = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Ledger is an in-memory token program: it holds token accounts and moves
// balances between them. It is not safe for concurrent use; the host
// serializes access.
type Ledger struct {
	id      solana.PublicKey
	height  uint64
	users   map[solana.PublicKey]*KeyedUser
	journal []solana.Instruction
}

func NewLedger() *Ledger {
	return &Ledger{
		id:    program.Token,
		users: make(map[solana.PublicKey]*KeyedUser),
	}
}

func (l *Ledger) Id() solana.PublicKey {
	return l.id
}

// Clone returns a deep copy with an empty journal. Work done on the copy is
// invisible to l until the caller installs it.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		id:     l.id,
		height: l.height,
		users:  make(map[solana.PublicKey]*KeyedUser, len(l.users)),
	}
	for key, user := range l.users {
		copied := *user
		c.users[key] = &copied
	}
	return c
}

// Advance stamps subsequent account writes with height.
func (l *Ledger) Advance(height uint64) {
	l.height = height
}

// Journal lists the transfer instructions executed since the ledger was
// created or cloned.
func (l *Ledger) Journal() []solana.Instruction {
	return l.journal
}

func (l *Ledger) CreateAccount(key, mint, owner solana.PublicKey) (*KeyedUser, error) {
	if _, ok := l.users[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, key)
	}
	user := &KeyedUser{
		Key:    key,
		Height: l.height,
		UserLayout: UserLayout{
			Mint:  mint,
			Owner: owner,
			State: AccountStateInitialized,
		},
	}
	l.users[key] = user
	return user, nil
}

// CreateAssociatedAccount creates the associated token account of owner for
// mint, or returns it when it already exists.
func (l *Ledger) CreateAssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if user, ok := l.users[key]; ok {
		if user.Mint != mint || user.Owner != owner {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrMintMismatch, key)
		}
		return key, nil
	}
	if _, err := l.CreateAccount(key, mint, owner); err != nil {
		return solana.PublicKey{}, err
	}
	return key, nil
}

func (l *Ledger) GetUser(key solana.PublicKey) *KeyedUser {
	user, ok := l.users[key]
	if !ok {
		return nil
	}
	return user
}

func (l *Ledger) Balance(key solana.PublicKey) (uint64, error) {
	user, ok := l.users[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	return user.Amount, nil
}

func (l *Ledger) MintTo(key solana.PublicKey, amount uint64) error {
	user, ok := l.users[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	sum, carry := bits.Add64(user.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	user.Amount = sum
	user.Height = l.height
	return nil
}

func (l *Ledger) SetFrozen(key solana.PublicKey, frozen bool) error {
	user, ok := l.users[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	user.State = AccountStateInitialized
	if frozen {
		user.State = AccountStateFrozen
	}
	user.Height = l.height
	return nil
}

// Transfer moves amount of mint from one token account to another. authority
// must be the owner of the source account.
func (l *Ledger) Transfer(mint solana.PublicKey, amount uint64, from, to, authority solana.PublicKey) error {
	src, ok := l.users[from]
	if !ok {
		return fmt.Errorf("source %w: %s", ErrAccountNotFound, from)
	}
	dst, ok := l.users[to]
	if !ok {
		return fmt.Errorf("destination %w: %s", ErrAccountNotFound, to)
	}
	if src.Mint != mint || dst.Mint != mint {
		return fmt.Errorf("%w: expected: %s", ErrMintMismatch, mint)
	}
	if src.State == AccountStateFrozen || dst.State == AccountStateFrozen {
		return ErrAccountFrozen
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: account(%s) authority: %s", ErrOwnerMismatch, from, authority)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: account(%s) balance: %d, amount: %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	if from != to {
		if _, carry := bits.Add64(dst.Amount, amount, 0); carry != 0 {
			return ErrOverflow
		}
		src.Amount -= amount
		dst.Amount += amount
	}
	src.Height = l.height
	dst.Height = l.height
	l.journal = append(l.journal, InstructionTransfer(from, to, authority, amount))
	return nil
}
