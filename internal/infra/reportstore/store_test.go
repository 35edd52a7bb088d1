package reportstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	data := []byte(`{"score":60}`)

	stored, err := store.Put(context.Background(), "runs/2026/10/15/a.json", data, "application/json")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), stored.Size)
	require.Len(t, stored.ETag, 32)

	data[0] = '['
	got, contentType, ok := store.Get("runs/2026/10/15/a.json")
	require.True(t, ok)
	require.Equal(t, `{"score":60}`, string(got))
	require.Equal(t, "application/json", contentType)

	_, _, ok = store.Get("missing")
	require.False(t, ok)
}

func TestSanitizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://acct.r2.cloudflarestorage.com":        "acct.r2.cloudflarestorage.com",
		"http://localhost:9000/bucket":                 "localhost:9000",
		" acct.r2.cloudflarestorage.com/path/ignored ": "acct.r2.cloudflarestorage.com",
	}
	for in, want := range cases {
		require.Equal(t, want, sanitizeEndpoint(in), in)
	}
	require.Empty(t, sanitizeEndpoint(""))
}

func TestNewR2Store_RequiresBucket(t *testing.T) {
	_, err := NewR2Store("https://acct.r2.cloudflarestorage.com", "k", "s", " ", "auto", nil)
	require.Error(t, err)

	store, err := NewR2Store("https://acct.r2.cloudflarestorage.com", "k", "s", "reports", "auto", nil)
	require.NoError(t, err)
	require.Equal(t, "reports", store.bucket)
}
