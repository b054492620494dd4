package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aeroassist/backend/internal/ai"
	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/config"
	"github.com/aeroassist/backend/internal/identity"
)

type staticVerifier struct {
	tokens map[string]identity.Identity
}

func (v *staticVerifier) Verify(ctx context.Context, token string) (identity.Identity, error) {
	_ = ctx
	if id, ok := v.tokens[token]; ok {
		return id, nil
	}
	return identity.Identity{}, identity.ErrInvalidCredentials
}

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Generate(ctx context.Context, prior []ai.Message, userMessage string) (ai.Result, error) {
	_ = ctx
	_ = prior
	_ = userMessage
	if p.err != nil {
		return ai.Result{}, p.err
	}
	return ai.Result{Text: p.reply, TokensUsed: 11}, nil
}

func testVerifier() *staticVerifier {
	return &staticVerifier{tokens: map[string]identity.Identity{
		"alice-token": {ID: "alice", Email: "alice@example.com", Role: "user"},
		"bob-token":   {ID: "bob", Email: "bob@example.com", Role: "user"},
	}}
}

func newTestRouter(t *testing.T, prov ai.Provider, degraded bool) (*gin.Engine, *chat.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var store *chat.Store
	if !degraded {
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
		gdb, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
		require.NoError(t, err)
		store = chat.NewStore(gdb)
		require.NoError(t, store.Migrate())
	}

	sessions := chat.NewSessionManager(store, nil)
	svc := chat.NewService(store, sessions, prov, nil, nil)
	cfg := config.Config{AllowedOrigins: []string{"http://localhost:3000"}}
	return NewRouter(svc, testVerifier(), cfg, zap.NewNop()), store
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{reply: "hi"}, false)

	w := doJSON(r, http.MethodPost, "/chat", "", map[string]string{"message": "Hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/chat", "unknown-token", map[string]string{"message": "Hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ChatTurnAndFollowUp(t *testing.T) {
	r, store := newTestRouter(t, &stubProvider{reply: "welcome aboard"}, false)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]any{"message": "Hi", "session_id": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first chat.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "welcome aboard", first.Reply)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, 11, first.TokensUsed)

	w = doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]any{
		"message":    "More",
		"session_id": first.SessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var second chat.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)

	msgs, err := store.ListMessages(context.Background(), first.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"user", "assistant", "user", "assistant"},
		[]string{msgs[0].Role, msgs[1].Role, msgs[2].Role, msgs[3].Role})
}

func TestRouter_EmptyMessageIs400(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{reply: "hi"}, false)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ProviderFailureIs500AndUserMessageSurvives(t *testing.T) {
	prov := &stubProvider{err: &ai.GenerationError{Cause: errors.New("boom")}}
	r, store := newTestRouter(t, prov, false)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]string{"message": "Hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	sessions, err := store.ListSessionsByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	msgs, err := store.ListMessages(context.Background(), sessions[0].SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestRouter_SessionListIsOwnerScoped(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{reply: "hi"}, false)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/sessions/alice", "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/sessions/alice", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []chat.SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 1)
	assert.EqualValues(t, 2, resp.Sessions[0].MessageCount)
}

func TestRouter_ConversationHiddenFromOtherUsers(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{reply: "hi"}, false)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)
	var res chat.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	w = doJSON(r, http.MethodGet, "/conversation/"+res.SessionID, "bob-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/conversation/"+res.SessionID, "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var conv struct {
		Conversation []chat.ConversationMessage `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	require.Len(t, conv.Conversation, 2)
}

func TestRouter_DegradedModeChatStillWorks(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{reply: "hi"}, true)

	w := doJSON(r, http.MethodPost, "/chat", "alice-token", map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var res chat.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.SessionID)

	w = doJSON(r, http.MethodGet, "/sessions/alice", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Sessions []chat.SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Sessions)

	w = doJSON(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded":true`)
}
