package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fairwaydesk/app/config"
	"fairwaydesk/app/service/dialog"
	"fairwaydesk/app/service/session"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialog struct {
	message string
	err     error

	lastSessionID string
	lastUserText  string
}

func (f *fakeDialog) HandleUserTurn(_ context.Context, sessionID, userText string) (string, error) {
	f.lastSessionID = sessionID
	f.lastUserText = userText

	return f.message, f.err
}

func newTestGateway(t *testing.T, dialogSvc dialogService) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	sessionSvc, err := session.NewInMemory(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sessionSvc.Shutdown()
	})

	s := &Service{
		cfg:        cfg,
		dialogSvc:  dialogSvc,
		sessionSvc: sessionSvc,
	}
	s.initRouter()

	return s
}

func postJSON(t *testing.T, s *Service, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(data, &out))

	return out
}

func TestAgentTurn(t *testing.T) {
	fake := &fakeDialog{message: "Your pass covers all nine regions."}
	s := newTestGateway(t, fake)

	resp := postJSON(t, s, "/api/support/agent", `{"session_id":"s1","user_message":"what do I get"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[turnResponse](t, resp)
	assert.Equal(t, "Your pass covers all nine regions.", body.BotMessage)
	assert.Equal(t, "s1", fake.lastSessionID)
	assert.Equal(t, "what do I get", fake.lastUserText)
}

func TestAgentTurn_MissingSessionID(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{})

	resp := postJSON(t, s, "/api/support/agent", `{"user_message":"hi"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgentTurn_DialogFailureStaysSpoken(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{err: errors.New("session db closed")})

	resp := postJSON(t, s, "/api/support/agent", `{"session_id":"s1","user_message":"hi"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[turnResponse](t, resp)
	assert.Equal(t, dialog.FallbackMessage, body.BotMessage)
}

func TestGreeting(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{})

	req := httptest.NewRequest(http.MethodGet, "/api/support/greeting", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[greetingResponse](t, resp)
	assert.NotEmpty(t, body.SessionID)
	assert.Contains(t, greetingMessages, body.BotMessage)
}

func TestHolding(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{})

	req := httptest.NewRequest(http.MethodGet, "/api/support/holding", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[turnResponse](t, resp)
	assert.Contains(t, holdingMessages, body.BotMessage)
}

func TestArchive(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{})
	require.NoError(t, s.sessionSvc.Append("s1", session.Turn{Role: session.RoleUser, Content: "hi"}))

	resp := postJSON(t, s, "/api/support/archive", `{"session_id":"s1"}`)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestArchive_MissingSessionID(t *testing.T) {
	s := newTestGateway(t, &fakeDialog{})

	resp := postJSON(t, s, "/api/support/archive", `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
