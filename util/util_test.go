package util

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigToLE32(t *testing.T) {
	b, err := BigToLE32(big.NewInt(0x0102))
	require.NoError(t, err)
	require.Len(t, b, 32)
	assert.Equal(t, byte(0x02), b[0])
	assert.Equal(t, byte(0x01), b[1])
	for _, x := range b[2:] {
		assert.Equal(t, byte(0), x)
	}

	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	b, err = BigToLE32(oneEth)
	require.NoError(t, err)
	back, err := LE32ToBig(b)
	require.NoError(t, err)
	assert.Equal(t, 0, oneEth.Cmp(back))

	b, err = BigToLE32(nil)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), b)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	b, err = BigToLE32(max)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), b[31])

	_, err = BigToLE32(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, ErrValueOverflow)

	_, err = BigToLE32(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrValueOverflow)

	_, err = LE32ToBig([]byte{1})
	assert.Error(t, err)
}

func TestStringToEpoch(t *testing.T) {
	e, err := StringToEpoch("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), e)

	e, err = StringToEpoch("1024")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), e)

	_, err = StringToEpoch("abc")
	assert.Error(t, err)
}

func TestPubkeyToString(t *testing.T) {
	assert.Equal(t, "0xabcd", PubkeyToString([]byte{0xab, 0xcd}))
	assert.Equal(t, "0xabcd", NormalizeHex("ABCD"))
	assert.Equal(t, "0xabcd", NormalizeHex("0xAbCd"))
}
