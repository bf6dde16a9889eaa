package pio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBigEndian(t *testing.T) {
	t.Parallel()

	b := make([]byte, 8)
	PutU64BE(b, 0x0102030405060708)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b)
	require.Equal(t, uint64(0x0102030405060708), U64BE(b))
	require.Equal(t, uint32(0x01020304), U32BE(b))
	require.Equal(t, uint32(0x010203), U24BE(b))
	require.Equal(t, uint16(0x0102), U16BE(b))
	require.Equal(t, uint8(1), U8(b))

	PutI64BE(b, -1)
	require.Equal(t, int64(-1), I64BE(b))
	require.Equal(t, uint64(0xffffffffffffffff), U64BE(b))

	PutU24BE(b, 0xabcdef)
	require.Equal(t, []byte{0xab, 0xcd, 0xef}, b[:3])

	PutU16BE(b, 0xbeef)
	require.Equal(t, uint16(0xbeef), U16BE(b))
}
