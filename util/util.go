package util

import (
	"encoding/hex"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ValueLength is the width of a stored transaction value, the values are 256 bit integers.
const ValueLength = 32

var ErrValueOverflow = errors.New("value does not fit in 32 bytes")

// StringToUint64 converts string to uint64
func StringToUint64(str string) (uint64, error) {
	ui64, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, err
	}
	return ui64, nil
}

// StringToEpoch converts a decimal epoch to its stored form, the far future epoch (2^64-1) wraps to -1.
func StringToEpoch(str string) (int64, error) {
	ui64, err := StringToUint64(str)
	if err != nil {
		return 0, err
	}
	if ui64 > math.MaxInt64 {
		return int64(ui64 - math.MaxUint64 - 1), nil
	}
	return int64(ui64), nil
}

// Uint64ToString coverts uint64 to string
func Uint64ToString(u uint64) string {
	return strconv.FormatUint(u, 10)
}

// HashToString is the stored form of a hash: lower case hex without 0x.
func HashToString(h common.Hash) string {
	return hex.EncodeToString(h.Bytes())
}

// AddressToString is the stored form of an address: lower case hex without 0x.
func AddressToString(a common.Address) string {
	return hex.EncodeToString(a.Bytes())
}

// PubkeyToString is the stored form of a validator public key, the way the beacon API prints it.
func PubkeyToString(pubkey []byte) string {
	return "0x" + hex.EncodeToString(pubkey)
}

// IsZeroHash reports a hash made of zero bytes only.
func IsZeroHash(h common.Hash) bool {
	return h == (common.Hash{})
}

// NormalizeHex lower-cases a hex string and makes sure it carries the 0x prefix.
func NormalizeHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}

// BigToLE32 serializes a non negative integer as a fixed width 32 byte little endian array.
func BigToLE32(v *big.Int) ([]byte, error) {
	out := make([]byte, ValueLength)
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 || v.BitLen() > ValueLength*8 {
		return nil, errors.Wrapf(ErrValueOverflow, "value %s", v.String())
	}
	v.FillBytes(out)
	reverse(out)
	return out, nil
}

// LE32ToBig reads back a value written by BigToLE32.
func LE32ToBig(b []byte) (*big.Int, error) {
	if len(b) != ValueLength {
		return nil, errors.Errorf("value should be %d bytes, got %d", ValueLength, len(b))
	}
	be := make([]byte, ValueLength)
	copy(be, b)
	reverse(be)
	return new(big.Int).SetBytes(be), nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
