package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureValidEventUsesCachedID(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, mem := newTestClient(t, server.URL)
	mem.values[eventIDKey] = "42"

	id, err := client.EnsureValidEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEnsureValidEventPrefersTitleMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 9, "titulo": "Aniversário"},
			{"id": 3, "titulo": "chá revelação"},
			{"id": 7, "titulo": "Outro"}
		]`))
	}))
	defer server.Close()

	client, mem := newTestClient(t, server.URL)

	id, err := client.EnsureValidEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, "3", mem.values[eventIDKey])
}

func TestEnsureValidEventFallsBackToHighestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 2, "titulo": "Aniversário"},
			{"id": 11, "titulo": "Casamento"},
			{"id": 5, "titulo": "Outro"}
		]`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	id, err := client.EnsureValidEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestEnsureValidEventCreatesWhenNoneExist(t *testing.T) {
	var created atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			created.Add(1)
			_, _ = w.Write([]byte(`{"id": 7, "titulo": "Chá Revelação"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, mem := newTestClient(t, server.URL)

	id, err := client.EnsureValidEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, "7", mem.values[eventIDKey])
}

func TestEnsureValidEventConcurrentCallsResolveOnce(t *testing.T) {
	var listHits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		<-release
		_, _ = w.Write([]byte(`[{"id": 4, "titulo": "Chá Revelação"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	var wg sync.WaitGroup
	ids := make([]int64, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := client.EnsureValidEvent(context.Background())
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}

	close(release)
	wg.Wait()

	// Later callers either joined the in-flight resolution or read the
	// cached id, so the backend saw at most one listing.
	assert.Equal(t, int32(1), listHits.Load())
	for _, id := range ids {
		assert.Equal(t, int64(4), id)
	}
}
