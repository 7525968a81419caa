package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessage(room string, i int) Message {
	return Message{
		ID:        uuid.NewString(),
		Room:      room,
		Sender:    "tester",
		Text:      fmt.Sprintf("MSG %d", i),
		Encoding:  "text",
		CreatedAt: time.Unix(int64(1700000000+i), 0).UTC(),
	}
}

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, s Store, maxPerRoom int) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	assert.ErrorIs(t, s.Save(ctx, Message{}), ErrInvalidRoom)
	_, err := s.Recent(ctx, "", 10)
	assert.ErrorIs(t, err, ErrInvalidRoom)

	empty, err := s.Recent(ctx, "nobody-here", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	room := "room-" + uuid.NewString()
	for i := 0; i < maxPerRoom+3; i++ {
		require.NoError(t, s.Save(ctx, newMessage(room, i)))
	}
	require.NoError(t, s.Save(ctx, newMessage(room+"-other", 0)))

	all, err := s.Recent(ctx, room, 0)
	require.NoError(t, err)
	require.Len(t, all, maxPerRoom)
	assert.Equal(t, "MSG 3", all[0].Text)
	assert.Equal(t, fmt.Sprintf("MSG %d", maxPerRoom+2), all[len(all)-1].Text)

	latest, err := s.Recent(ctx, room, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, fmt.Sprintf("MSG %d", maxPerRoom+1), latest[0].Text)
	assert.Equal(t, fmt.Sprintf("MSG %d", maxPerRoom+2), latest[1].Text)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(5), 5)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	s := NewMemoryStore(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Save(ctx, newMessage("lobby", i))
		}(i)
	}
	wg.Wait()

	msgs, err := s.Recent(ctx, "lobby", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 50)
}

func TestMemoryStoreRecentReturnsCopy(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newMessage("lobby", 0)))

	msgs, err := s.Recent(ctx, "lobby", 0)
	require.NoError(t, err)
	msgs[0].Text = "changed"

	again, err := s.Recent(ctx, "lobby", 0)
	require.NoError(t, err)
	assert.Equal(t, "MSG 0", again[0].Text)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client, 5), 5)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	for _, key := range keys {
		entries, err := mr.List(key)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(entries), 5, key)
	}
}

func TestRedisStoreRejectsCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = mr.Push(roomKey("lobby"), "not json")
	require.NoError(t, err)
	_, err = NewRedisStore(client, 5).Recent(context.Background(), "lobby", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode message")
}

// TestRedisStoreLive needs a live server, e.g. REDIS_URL=redis://localhost:6379/15.
func TestRedisStoreLive(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := ConnectRedis(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client, 5), 5)
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, 5)
	ctx := context.Background()

	assert.Error(t, s.Ping(ctx))
	err := s.Save(ctx, newMessage("lobby", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save message")
}

func TestConnectRedis(t *testing.T) {
	client, err := ConnectRedis("redis://:pw@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	client, err = ConnectRedis("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	_ = client.Close()

	_, err = ConnectRedis("redis://host:notaport/x")
	assert.Error(t, err)
}

// fakePostgREST serves just enough of /rest/v1/messages for SupabaseStore.
type fakePostgREST struct {
	mu   sync.Mutex
	rows []supabaseRow
	fail bool
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer anon-key" {
		http.Error(w, `{"message":"no api key"}`, http.StatusUnauthorized)
		return
	}
	if r.URL.Path != "/rest/v1/messages" {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row supabaseRow
		if err := json.Unmarshal(body, &row); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, row)
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		room := r.URL.Query().Get("room")
		var out []supabaseRow
		for i := len(f.rows) - 1; i >= 0; i-- {
			if room == "" || "eq."+f.rows[i].Room == room {
				out = append(out, f.rows[i])
			}
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			var n int
			fmt.Sscanf(raw, "%d", &n)
			if n < len(out) {
				out = out[:n]
			}
		}
		if out == nil {
			out = []supabaseRow{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSupabaseStore(t *testing.T) {
	fake := &fakePostgREST{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewSupabaseStore(SupabaseConfig{URL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Save(ctx, newMessage("lobby", i)))
	}
	require.NoError(t, s.Save(ctx, newMessage("other", 9)))

	latest, err := s.Recent(ctx, "lobby", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "MSG 2", latest[0].Text)
	assert.Equal(t, "MSG 3", latest[1].Text)
	assert.Equal(t, time.Unix(1700000003, 0).UTC(), latest[1].CreatedAt.UTC())

	_, err = s.Recent(ctx, "", 2)
	assert.ErrorIs(t, err, ErrInvalidRoom)

	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()
	err = s.Save(ctx, newMessage("lobby", 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSupabaseStoreRejectsBadKey(t *testing.T) {
	srv := httptest.NewServer(&fakePostgREST{})
	t.Cleanup(srv.Close)

	s, err := NewSupabaseStore(SupabaseConfig{URL: srv.URL, APIKey: "wrong"})
	require.NoError(t, err)
	err = s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewSupabaseStoreValidation(t *testing.T) {
	_, err := NewSupabaseStore(SupabaseConfig{APIKey: "k"})
	assert.Error(t, err)
	_, err = NewSupabaseStore(SupabaseConfig{URL: "https://x.supabase.co"})
	assert.Error(t, err)
}
