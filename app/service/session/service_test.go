package session

import (
	"fairwaydesk/app/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Session.TTL = ttl

	svc, err := NewInMemory(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = svc.Shutdown()
	})

	return svc
}

func TestGet_UnknownSessionIsEmpty(t *testing.T) {
	svc := newTestStore(t, time.Hour)

	turns, err := svc.Get("nope")

	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppend_PreservesOrder(t *testing.T) {
	svc := newTestStore(t, time.Hour)

	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "hi"}))
	require.NoError(t, svc.Append("s1", Turn{Role: RoleAssistant, Content: "hello"}))
	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "bye"}))

	turns, err := svc.Get("s1")

	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "hi", turns[0].Content)
	assert.Equal(t, "hello", turns[1].Content)
	assert.Equal(t, "bye", turns[2].Content)
}

func TestAppend_RoundTripsTask(t *testing.T) {
	svc := newTestStore(t, time.Hour)

	task := &Task{Kind: "query_user", Params: map[string]string{"user_email": "a@b.com"}}
	require.NoError(t, svc.Append("s1", Turn{
		Role:    RoleAssistant,
		Content: `{"app_task":"query_user","user_email":"a@b.com"}`,
		Task:    task,
	}))

	turns, err := svc.Get("s1")

	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.NotNil(t, turns[0].Task)
	assert.True(t, turns[0].Task.Equal(task))
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newTestStore(t, time.Hour)

	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "one"}))
	require.NoError(t, svc.Append("s2", Turn{Role: RoleUser, Content: "two"}))

	turns, err := svc.Get("s1")

	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "one", turns[0].Content)
}

func TestSessionExpires(t *testing.T) {
	svc := newTestStore(t, 200*time.Millisecond)

	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "hi"}))

	time.Sleep(400 * time.Millisecond)

	turns, err := svc.Get("s1")

	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppend_RefreshesTTL(t *testing.T) {
	svc := newTestStore(t, 500*time.Millisecond)

	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "hi"}))
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, svc.Append("s1", Turn{Role: RoleAssistant, Content: "hello"}))
	time.Sleep(300 * time.Millisecond)

	// 600ms after creation, 300ms after the refresh: still alive.
	turns, err := svc.Get("s1")

	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestArchive_ExtendsLifetime(t *testing.T) {
	svc := newTestStore(t, 200*time.Millisecond)
	svc.cfg.Session.ArchiveTTL = time.Hour

	require.NoError(t, svc.Append("s1", Turn{Role: RoleUser, Content: "hi"}))
	require.NoError(t, svc.Archive("s1"))

	time.Sleep(400 * time.Millisecond)

	turns, err := svc.Get("s1")

	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestArchive_UnknownSessionIsNoop(t *testing.T) {
	svc := newTestStore(t, time.Hour)

	assert.NoError(t, svc.Archive("nope"))
}

func TestTaskEqual(t *testing.T) {
	base := &Task{Kind: "query_user", Params: map[string]string{"user_email": "a@b.com"}}

	assert.True(t, base.Equal(&Task{Kind: "query_user", Params: map[string]string{"user_email": "a@b.com"}}))
	assert.False(t, base.Equal(&Task{Kind: "query_general_data", Params: map[string]string{"user_email": "a@b.com"}}))
	assert.False(t, base.Equal(&Task{Kind: "query_user", Params: map[string]string{"user_email": "x@y.com"}}))
	assert.False(t, base.Equal(&Task{Kind: "query_user"}))
	assert.False(t, base.Equal(&Task{Kind: "query_user", Params: map[string]string{
		"user_email": "a@b.com",
		"phone":      "555-0100",
	}}))
	assert.False(t, base.Equal(nil))

	var nilTask *Task
	assert.True(t, nilTask.Equal(nil))
}
