package images

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBase64(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0} // jpeg magic
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	encoded, err := NewClient(5*time.Second).FetchBase64(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), encoded)
}

func TestFetchBase64NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(5*time.Second).FetchBase64(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}
