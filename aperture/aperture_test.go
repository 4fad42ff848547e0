package aperture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryString(t *testing.T) {
	tables := []struct {
		value int64
		want  string
	}{
		{0, "0"},
		{1, "1"},
		{3, "11"},
		{15, "1111"},
		{32, "100000"},
	}

	for _, table := range tables {
		s, err := BinaryString(table.value)
		require.NoError(t, err)
		assert.Equal(t, table.want, s)
	}
}

func TestBinaryStringNegative(t *testing.T) {
	_, err := BinaryString(-3)
	require.Error(t, err)

	verr, ok := err.(*InvalidValueError)
	require.True(t, ok)
	assert.Equal(t, int64(-3), verr.Value)
}

func TestBitSet(t *testing.T) {
	tables := []struct {
		value int64
		bit   uint
		want  bool
	}{
		{0, 0, false},
		{1, 0, true},
		{2, 0, false},
		{2, 1, true},
		{3, 1, true},
		{3, 2, false},
		// Positions beyond the binary width are unset, never an error.
		{0, 1, false},
		{1, 5, false},
		{1, 100, false},
	}

	for _, table := range tables {
		set, err := BitSet(table.value, table.bit)
		require.NoError(t, err)
		assert.Equal(t, table.want, set, "value %d bit %d", table.value, table.bit)
	}
}

func TestBitSetNegative(t *testing.T) {
	_, err := BitSet(-1, 0)
	assert.Error(t, err)
}

func TestBitSetParity(t *testing.T) {
	for v := int64(0); v < 256; v++ {
		set, err := BitSet(v, 0)
		require.NoError(t, err)
		assert.Equal(t, v%2 == 1, set, "value %d", v)
	}
}

func TestBitSetRoundTrip(t *testing.T) {
	for v := int64(0); v < 1024; v++ {
		var sum int64
		for bit := uint(0); bit < 10; bit++ {
			set, err := BitSet(v, bit)
			require.NoError(t, err)
			if set {
				sum += 1 << bit
			}
		}
		assert.Equal(t, v, sum)
	}
}

func TestMaskShape(t *testing.T) {
	m := Mask{{0, 1, 2}, {3, 4, 5}}
	rows, cols := m.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	rows, cols = Mask{}.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 0, cols)
}

func TestMaskDecode(t *testing.T) {
	m := Mask{{0, 1}, {2, 3}}

	bits, err := m.Decode(BitAperture)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{{false, false}, {true, true}}, bits)
}

func TestMaskDecodeAllSet(t *testing.T) {
	m := Mask{{3, 3, 3}, {3, 3, 3}}

	bits, err := m.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{{true, true, true}, {true, true, true}}, bits)
}

func TestMaskDecodeAllClear(t *testing.T) {
	m := Mask{{0, 0}, {0, 0}, {0, 0}}

	bits, err := m.Decode(2)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{{false, false}, {false, false}, {false, false}}, bits)
}

func TestMaskDecodeNegative(t *testing.T) {
	m := Mask{{0, 1}, {-2, 3}}

	bits, err := m.Decode(0)
	require.Error(t, err)
	assert.Nil(t, bits)

	verr, ok := err.(*InvalidValueError)
	require.True(t, ok)
	assert.Equal(t, int64(-2), verr.Value)
	assert.Equal(t, 1, verr.Row)
	assert.Equal(t, 0, verr.Col)
}
