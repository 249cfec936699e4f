package pool

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode returns the account image: discriminator followed by the
// little-endian record.
func Encode(s State) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, AccountSize))
	buf.Write(Discriminator[:])
	// writes into a bytes.Buffer of fixed-size fields cannot fail
	_ = binary.Write(buf, binary.LittleEndian, &s)
	return buf.Bytes()
}

func Decode(data []byte) (State, error) {
	s := State{}
	if len(data) != AccountSize {
		return s, fmt.Errorf("pool account data size is not valid, expected: %d, actual: %d", AccountSize, len(data))
	}
	if !bytes.Equal(data[:len(Discriminator)], Discriminator[:]) {
		return s, fmt.Errorf("pool account discriminator is not valid: %x", data[:len(Discriminator)])
	}
	err := binary.Read(bytes.NewReader(data[len(Discriminator):]), binary.LittleEndian, &s)
	if err != nil {
		return s, fmt.Errorf("pool account data is not valid, err: %w", err)
	}
	return s, nil
}
