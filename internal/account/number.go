package account

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

const (
	numberFloor = 1_000_000_000
	numberSpan  = 9_000_000_000
)

// NumberGenerator produces candidate external account numbers.
type NumberGenerator func() string

// RandomNumber returns a 10 digit account number with a non-zero leading digit.
// Uniqueness is enforced by the store, not here.
func RandomNumber() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	mixed := binary.BigEndian.Uint64(buf[:]) ^ uint64(time.Now().UnixNano())
	return strconv.FormatUint(numberFloor+mixed%numberSpan, 10)
}
