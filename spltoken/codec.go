package spltoken

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func EncodeUser(user UserLayout) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, AccountLayoutSize))
	_ = binary.Write(buf, binary.LittleEndian, &user)
	return buf.Bytes()
}

func DecodeUser(data []byte) (UserLayout, error) {
	user := UserLayout{}
	if len(data) != AccountLayoutSize {
		return user, fmt.Errorf("spl token account data size is not valid, expected: %d, actual: %d", AccountLayoutSize, len(data))
	}
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &user)
	if err != nil {
		return user, fmt.Errorf("spl token account data is not valid, err: %w", err)
	}
	return user, nil
}

func DecodeMint(data []byte) (TokenLayout, error) {
	token := TokenLayout{}
	if len(data) != MintLayoutSize {
		return token, fmt.Errorf("spl token mint data size is not valid, expected: %d, actual: %d", MintLayoutSize, len(data))
	}
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &token)
	if err != nil {
		return token, fmt.Errorf("spl token mint data is not valid, err: %w", err)
	}
	return token, nil
}
