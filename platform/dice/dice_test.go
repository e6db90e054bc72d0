package dice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRollRange(t *testing.T) {
	s := NewSource(42)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		d := s.Roll()
		require.True(t, d.Valid(), "roll %v", d)
		seen[d[0]] = true
	}
	require.Len(t, seen, 6)
}

func TestDrawRange(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 200; i++ {
		idx := s.Draw(16)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 16)
	}
}

func TestSameSeedSameRolls(t *testing.T) {
	a, b := NewSource(99), NewSource(99)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Roll(), b.Roll())
		require.Equal(t, a.Draw(16), b.Draw(16))
	}
}
