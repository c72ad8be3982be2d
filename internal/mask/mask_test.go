package mask

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllOnes_TrailingBitsClear(t *testing.T) {
	m := AllOnes(5)
	require.Len(t, m, 1)
	assert.Equal(t, uint64(0x1F), m[0])

	m = AllOnes(64)
	require.Len(t, m, 1)
	assert.Equal(t, ^uint64(0), m[0])

	m = AllOnes(65)
	require.Len(t, m, 2)
	assert.Equal(t, ^uint64(0), m[0])
	assert.Equal(t, uint64(1), m[1])
}

func TestSynthesize_NonOverlapping(t *testing.T) {
	// Pattern 0xFF over FF FF 00 FF: the first match covers byte 0, the
	// scan resumes at byte 1 and matches again, byte 2 differs, byte 3
	// matches. Bits 0, 1, 3 clear; bit 2 set.
	m := Synthesize([]byte{0xFF, 0xFF, 0x00, 0xFF}, []byte{0xFF})
	require.Len(t, m, 1)
	assert.Equal(t, uint64(0x4), m[0])
}

func TestSynthesize_MultiByteSkipsPastMatch(t *testing.T) {
	// Pattern AB AB over AB AB AB: one match at 0..1, the scan resumes at
	// 2 where no full occurrence fits.
	m := Synthesize([]byte{0xAB, 0xAB, 0xAB}, []byte{0xAB, 0xAB})
	require.Len(t, m, 1)
	assert.Equal(t, uint64(0x4), m[0])
}

func TestSynthesize_EmptyOrOversizedJoker(t *testing.T) {
	ref := []byte{1, 2, 3}

	m := Synthesize(ref, nil)
	assert.Equal(t, AllOnes(3), m)

	m = Synthesize(ref, []byte{1, 2, 3, 4})
	assert.Equal(t, AllOnes(3), m)
}

func TestMatchBuffer_AllOnesIsByteEquality(t *testing.T) {
	for _, size := range []int{1, 5, 63, 64, 65, 128, 200} {
		ref := make([]byte, size)
		for i := range ref {
			ref[i] = byte(i * 7)
		}
		m := AllOnes(size)

		same := append([]byte(nil), ref...)
		ok, err := MatchBuffer(same, ref, m)
		require.NoError(t, err)
		assert.True(t, ok, "size %d", size)

		diff := append([]byte(nil), ref...)
		diff[size-1] ^= 1
		ok, err = MatchBuffer(diff, ref, m)
		require.NoError(t, err)
		assert.Equal(t, bytes.Equal(diff, ref), ok, "size %d", size)
	}
}

func TestMatchBuffer_WildcardSemantics(t *testing.T) {
	ref := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	m := Synthesize(ref, []byte{0xAD})

	ok, err := MatchBuffer([]byte{0xDE, 0x00, 0xBE, 0xEF}, ref, m)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchBuffer([]byte{0xDE, 0x00, 0xBE, 0x00}, ref, m)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchBuffer_EveryMaskedPositionChecked(t *testing.T) {
	// Flip one byte at a time; only wildcard positions may differ.
	ref := make([]byte, 100)
	for i := range ref {
		ref[i] = byte(i)
	}
	joker := []byte{10, 11, 12}
	m := Synthesize(ref, joker)

	for i := range ref {
		data := append([]byte(nil), ref...)
		data[i] ^= 0xFF
		ok, err := MatchBuffer(data, ref, m)
		require.NoError(t, err)
		wildcard := i >= 10 && i <= 12
		assert.Equal(t, wildcard, ok, "position %d", i)
	}
}

func TestMatchBuffer_LengthMismatch(t *testing.T) {
	ref := []byte{1, 2, 3}
	_, err := MatchBuffer([]byte{1, 2}, ref, AllOnes(3))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMatchBuffer_ShortMask(t *testing.T) {
	ref := make([]byte, 65)
	_, err := MatchBuffer(ref, ref, Mask{^uint64(0)})
	assert.ErrorIs(t, err, ErrMaskSize)
}
