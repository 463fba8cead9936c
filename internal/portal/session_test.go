package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/solienne/internal/eden"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	limits []int
	result []eden.Creation
	err    error
}

func (f *fakeFetcher) FetchCreations(_ context.Context, limit int) ([]eden.Creation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limits = append(f.limits, limit)
	return f.result, f.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(f *fakeFetcher) *Session {
	return NewSession(NewAllowList(adminAddr), f, slog.Default())
}

func TestSessionStartsUnready(t *testing.T) {
	s := newTestSession(&fakeFetcher{})
	assert.Equal(t, StateUnready, s.View().State)
}

func TestSessionUnreadyIgnoresOtherSignals(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(f)

	v := s.Apply(context.Background(), Signals{Ready: false, Authenticated: true, Address: adminAddr})
	assert.Equal(t, StateUnready, v.State)
	assert.Zero(t, f.Calls())
}

func TestSessionUnauthenticated(t *testing.T) {
	s := newTestSession(&fakeFetcher{})

	v := s.Apply(context.Background(), Signals{Ready: true})
	assert.Equal(t, StateUnauthenticated, v.State)
	assert.Equal(t, "unauthenticated", v.StateName)

	v = s.Apply(context.Background(), Signals{Ready: true, Authenticated: true})
	assert.Equal(t, StateUnauthenticated, v.State, "authenticated without a wallet address")
}

func TestSessionDenied(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(f)

	v := s.Apply(context.Background(), Signals{Ready: true, Authenticated: true, Address: "0xnotadmin"})
	assert.Equal(t, StateDenied, v.State)
	assert.Zero(t, f.Calls())

	v = s.Logout()
	assert.Equal(t, StateUnauthenticated, v.State)
	assert.Empty(t, v.Address)
}

func TestSessionAdminFetchesOnce(t *testing.T) {
	f := &fakeFetcher{result: []eden.Creation{{ID: "c1", Thumbnail: "t1"}, {ID: "c2"}}}
	s := newTestSession(f)
	ctx := context.Background()
	sig := Signals{Ready: true, Authenticated: true, Address: strings.ToUpper(adminAddr)}

	v := s.Apply(ctx, sig)
	assert.Equal(t, StateAdmin, v.State)
	assert.False(t, v.Loading)
	assert.Len(t, v.Creations, 2)
	assert.False(t, v.Empty())

	s.Apply(ctx, sig)
	s.Apply(ctx, Signals{Ready: true, Authenticated: true, Address: strings.ToLower(adminAddr)})
	assert.Equal(t, 1, f.Calls())
	assert.Equal(t, []int{CreationsLimit}, f.limits)
}

func TestSessionRefetchesAfterReauthentication(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(f)
	ctx := context.Background()
	sig := Signals{Ready: true, Authenticated: true, Address: adminAddr}

	s.Apply(ctx, sig)
	s.Logout()
	s.Apply(ctx, sig)
	assert.Equal(t, 2, f.Calls())
}

func TestSessionRefetchesOnWalletChange(t *testing.T) {
	f := &fakeFetcher{}
	allow := NewAllowList(adminAddr, "0xsecondadmin")
	s := NewSession(allow, f, slog.Default())
	ctx := context.Background()

	s.Apply(ctx, Signals{Ready: true, Authenticated: true, Address: adminAddr})
	v := s.Apply(ctx, Signals{Ready: true, Authenticated: true, Address: "0xSecondAdmin"})
	assert.Equal(t, StateAdmin, v.State)
	assert.Equal(t, 2, f.Calls())
}

func TestSessionFetchErrorShowsEmptyState(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	s := newTestSession(f)

	v := s.Apply(context.Background(), Signals{Ready: true, Authenticated: true, Address: adminAddr})
	assert.Equal(t, StateAdmin, v.State)
	assert.False(t, v.Loading)
	assert.Empty(t, v.Creations)
	assert.True(t, v.Empty())
}

func TestSessionsGet(t *testing.T) {
	sessions := NewSessions(NewAllowList(), &fakeFetcher{}, slog.Default())

	id, s1 := sessions.Get("")
	require.NotEmpty(t, id)

	sameID, s2 := sessions.Get(id)
	assert.Equal(t, id, sameID)
	assert.Same(t, s1, s2)

	otherID, s3 := sessions.Get("unknown")
	assert.NotEqual(t, "unknown", otherID)
	assert.NotSame(t, s1, s3)

	sessions.Delete(id)
	newID, _ := sessions.Get(id)
	assert.NotEqual(t, id, newID)
}

func TestSessionsLookupDoesNotCreate(t *testing.T) {
	sessions := NewSessions(NewAllowList(), &fakeFetcher{}, slog.Default())

	_, ok := sessions.Lookup("")
	assert.False(t, ok)
	_, ok = sessions.Lookup("unknown")
	assert.False(t, ok)
	assert.Zero(t, sessions.Len())

	id, s1 := sessions.Get("")
	got, ok := sessions.Lookup(id)
	require.True(t, ok)
	assert.Same(t, s1, got)
}

func TestSessionsExpireWhenIdle(t *testing.T) {
	sessions := NewSessions(NewAllowList(), &fakeFetcher{}, slog.Default())
	sessions.idle = time.Hour
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	stale, _ := sessions.Get("")
	now = now.Add(30 * time.Minute)
	kept, _ := sessions.Get("")

	// Touching a session keeps it alive.
	now = now.Add(45 * time.Minute)
	_, ok := sessions.Lookup(kept)
	require.True(t, ok)

	_, ok = sessions.Lookup(stale)
	assert.False(t, ok)
	assert.Equal(t, 1, sessions.Len())

	// New sessions sweep idle ones.
	now = now.Add(2 * time.Hour)
	fresh, _ := sessions.Get(kept)
	assert.NotEqual(t, kept, fresh)
	assert.Equal(t, 1, sessions.Len())
}

func TestProxyFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/creations", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"docs":[{"_id":"c1","url":"https://cdn/1.png"}],"totalDocs":1}`))
	}))
	defer server.Close()

	creations, err := NewProxyFetcher(server.URL+"/", nil).FetchCreations(context.Background(), CreationsLimit)
	require.NoError(t, err)
	require.Len(t, creations, 1)
	assert.Equal(t, "https://cdn/1.png", creations[0].ImageURL())
}

func TestProxyFetcherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"SOLIENNE_AGENT_ID not configured"}`))
	}))
	defer server.Close()

	_, err := NewProxyFetcher(server.URL, nil).FetchCreations(context.Background(), CreationsLimit)
	assert.Error(t, err)
}
