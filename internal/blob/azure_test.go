package blob

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAzureStore(t *testing.T, endpoint string) *AzureStore {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("not-a-real-account-key"))
	s, err := NewAzureStore("reportacct", key, endpoint)
	require.NoError(t, err)
	return s
}

func TestAzureSignedURL_ReadOnlyForTTL(t *testing.T) {
	s := newTestAzureStore(t, "")
	ttl := 15 * time.Minute

	signed, err := s.SignedURL(context.Background(), "client-2", "r 1.pdf", ttl)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	assert.Equal(t, "reportacct.blob.core.windows.net", u.Host)
	assert.Equal(t, "/client-2/r 1.pdf", u.Path)
	assert.Equal(t, "/client-2/r%201.pdf", u.EscapedPath())

	q := u.Query()
	assert.Equal(t, "r", q.Get("sp"), "read permission only")
	assert.Equal(t, "b", q.Get("sr"), "scoped to one blob")
	assert.NotEmpty(t, q.Get("sig"))
	st, err := time.Parse(time.RFC3339, q.Get("st"))
	require.NoError(t, err)
	se, err := time.Parse(time.RFC3339, q.Get("se"))
	require.NoError(t, err)
	assert.Equal(t, ttl, se.Sub(st))
	assert.WithinDuration(t, time.Now(), st, time.Minute)
}

func TestAzureSignedURL_RejectsTraversal(t *testing.T) {
	s := newTestAzureStore(t, "")

	for _, key := range []string{"../client-3/r.pdf", "a/b.pdf", ".."} {
		_, err := s.SignedURL(context.Background(), "client-2", key, time.Minute)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestAzureStore_DoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	s := newTestAzureStore(t, srv.URL+"/")

	_, err := s.List(context.Background(), "client-2")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
