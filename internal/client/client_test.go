package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ASHISH26940/booksdb/internal/config"
	internal_raft "github.com/ASHISH26940/booksdb/internal/raft"
	"github.com/ASHISH26940/booksdb/internal/server"
	"github.com/ASHISH26940/booksdb/internal/store"
	"github.com/carlmjohnson/requests"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer runs the real HTTP stack on a single-node in-memory raft.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.New()
	cfg.NodeID = "client-test"
	cfg.Raft.HeartbeatTimeout = 50 * time.Millisecond
	cfg.Raft.ElectionTimeout = 50 * time.Millisecond
	cfg.Raft.LeaderLeaseTimeout = 50 * time.Millisecond
	cfg.Raft.CommitTimeout = 5 * time.Millisecond

	logger := hclog.NewNullLogger()
	st, err := store.NewStore(store.WithSeed(store.DefaultSeed(time.Now())...))
	require.NoError(t, err)
	node, err := internal_raft.NewNode(cfg, internal_raft.NewFSM(st, logger), logger)
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, node.WaitForLeader(ctx))

	ts := httptest.NewServer(server.New(st, node, cfg, logger))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_RoundTrip(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.URL, ts.Client())
	ctx := context.Background()

	books, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)

	b, err := c.Add(ctx, "Go in Produktion", "A. Beispiel")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.ID)

	u, ok, err := c.UpdateTitle(ctx, 2, "GraphQL Profi-Tipps")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "GraphQL Profi-Tipps", u.Title)
	assert.Equal(t, "Lisa Musterfrau", u.Author)
	assert.True(t, books[1].CreatedAt.Equal(u.CreatedAt))

	_, ok, err = c.UpdateTitle(ctx, 99, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	books, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "GraphQL Profi-Tipps", books[1].Title)
	assert.Equal(t, "Go in Produktion", books[2].Title)
}

func TestClient_InvalidInput(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.URL, nil)

	_, err := c.Add(context.Background(), "", "someone")
	require.Error(t, err)
	assert.True(t, requests.HasStatusErr(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "title must not be blank")

	_, ok, err := c.UpdateTitle(context.Background(), 1, "  ")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, requests.HasStatusErr(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "title must not be blank")
}
