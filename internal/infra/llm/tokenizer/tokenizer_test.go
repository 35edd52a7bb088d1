package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	require.Zero(t, Estimate{}.Count(""))
	require.Equal(t, 1, Estimate{}.Count("four"))
	require.Equal(t, 2, Estimate{}.Count("five!"))
	require.Equal(t, 1, Estimate{}.Count("日本"))
}

func TestCounter(t *testing.T) {
	counter, err := New("")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	require.Zero(t, counter.Count(""))
	short := counter.Count("hello")
	long := counter.Count("hello there, how much CO2 does a bus ride emit per kilometre?")
	require.Positive(t, short)
	require.Greater(t, long, short)
}
