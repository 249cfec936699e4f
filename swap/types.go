package swap

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/egaotan/solana-swap/pool"
	"github.com/gagliardetto/solana-go"
)

// Request asks to sell AmountIn of the Direction's input asset for at least
// MinimumAmountOut of the other.
type Request struct {
	User             solana.PublicKey
	Direction        pool.Direction
	AmountIn         uint64
	MinimumAmountOut uint64
}

type Result struct {
	AmountIn  uint64
	AmountOut uint64
	Timestamp int64
}

// Event is emitted once per successful swap.
type Event struct {
	Pool      solana.PublicKey
	User      solana.PublicKey
	TokenIn   solana.PublicKey
	TokenOut  solana.PublicKey
	AmountIn  uint64
	AmountOut uint64
	Timestamp int64
}

var EventDiscriminator = func() [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("event:SwapEvent"))
	copy(d[:], sum[:8])
	return d
}()

const eventSize = 8 + 32*3 + 8*3

type eventLayout struct {
	User      solana.PublicKey
	TokenIn   solana.PublicKey
	TokenOut  solana.PublicKey
	AmountIn  uint64
	AmountOut uint64
	Timestamp int64
}

// Encode returns the event the way the program logs it. Pool is not part of
// the encoding.
func (e *Event) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, eventSize))
	buf.Write(EventDiscriminator[:])
	_ = binary.Write(buf, binary.LittleEndian, &eventLayout{
		User:      e.User,
		TokenIn:   e.TokenIn,
		TokenOut:  e.TokenOut,
		AmountIn:  e.AmountIn,
		AmountOut: e.AmountOut,
		Timestamp: e.Timestamp,
	})
	return buf.Bytes()
}

// LogLine renders the event as a "Program data:" log entry.
func (e *Event) LogLine() string {
	return "Program data: " + base64.StdEncoding.EncodeToString(e.Encode())
}

func DecodeEvent(data []byte) (*Event, error) {
	if len(data) != eventSize {
		return nil, fmt.Errorf("swap event data size is not valid, expected: %d, actual: %d", eventSize, len(data))
	}
	if !bytes.Equal(data[:8], EventDiscriminator[:]) {
		return nil, fmt.Errorf("swap event discriminator is not valid")
	}
	layout := eventLayout{}
	if err := binary.Read(bytes.NewReader(data[8:]), binary.LittleEndian, &layout); err != nil {
		return nil, fmt.Errorf("swap event data is not valid, err: %w", err)
	}
	return &Event{
		User:      layout.User,
		TokenIn:   layout.TokenIn,
		TokenOut:  layout.TokenOut,
		AmountIn:  layout.AmountIn,
		AmountOut: layout.AmountOut,
		Timestamp: layout.Timestamp,
	}, nil
}

type Custody interface {
	Transfer(mint solana.PublicKey, amount uint64, from, to, authority solana.PublicKey) error
}

// Signer authorizes the pool's outbound leg.
type Signer interface {
	DeriveAndSign(poolKey solana.PublicKey, state pool.State) (pool.AuthorizationToken, error)
}

type Clock interface {
	Now() int64
}

// Notifier receives events after a swap. It must not block.
type Notifier interface {
	Notify(event *Event)
}

const (
	LegIn  = "in"
	LegOut = "out"
)

// TransferError reports a failed custody leg.
type TransferError struct {
	Leg string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s failed: %v", e.Leg, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
