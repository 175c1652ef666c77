package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/domain/model"
	"github.com/promptline/promptline-api/internal/mocks"
	"github.com/promptline/promptline-api/internal/service"
)

const (
	testPassword = "password1234"
	testUserID   = "user-1"
)

type routerFixture struct {
	handler       http.Handler
	users         *mocks.MockUserRepository
	provider      *mocks.MockCompletionProvider
	conversations *mocks.MockConversationRepository
	store         *mocks.MockJobRecordStore
	executor      *mocks.MockJobExecutor
	limiter       *mocks.MockRateLimiter
	healthErr     error
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &routerFixture{
		users:         mocks.NewMockUserRepository(ctrl),
		provider:      mocks.NewMockCompletionProvider(ctrl),
		conversations: mocks.NewMockConversationRepository(ctrl),
		store:         mocks.NewMockJobRecordStore(ctrl),
		executor:      mocks.NewMockJobExecutor(ctrl),
		limiter:       mocks.NewMockRateLimiter(ctrl),
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Users:     f.users,
		JWTSecret: []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)
	jobs, err := service.NewJobService(service.JobServiceOptions{Store: f.store, Executor: f.executor})
	require.NoError(t, err)
	chat, err := service.NewChatService(service.ChatServiceOptions{
		Provider:      f.provider,
		Conversations: f.conversations,
		Jobs:          jobs,
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{
		Auth:        auth,
		Chat:        chat,
		Jobs:        jobs,
		RateLimiter: f.limiter,
		HealthChecks: map[string]HealthCheck{
			"database": func(context.Context) error { return f.healthErr },
		},
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.7:40000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// login performs a real token issue round trip so protected routes are
// exercised through the same verification path production uses.
func (f *routerFixture) login(t *testing.T) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		ID:           testUserID,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	f.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
	f.users.EXPECT().GetByID(gomock.Any(), testUserID).Return(user, nil).AnyTimes()

	rec := f.do(t, http.MethodPost, "/auth/login", "",
		model.LoginRequest{Username: "alice", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	var token model.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegister(t *testing.T) {
	f := newRouterFixture(t)

	f.users.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&model.User{ID: testUserID, Username: "alice", Email: "alice@example.com"}, nil)

	rec := f.do(t, http.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username: "al",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeErrorBody(t, rec)["error"])
}

func TestRegisterUnknownField(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		bytes.NewReader([]byte(`{"username":"alice","bogus":true}`)))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeErrorBody(t, rec)["error"])
}

func TestLoginBadCredentials(t *testing.T) {
	f := newRouterFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	f.users.EXPECT().GetByUsername(gomock.Any(), "alice").
		Return(&model.User{ID: testUserID, Username: "alice", PasswordHash: string(hash)}, nil)

	rec := f.do(t, http.MethodPost, "/auth/login", "",
		model.LoginRequest{Username: "alice", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeErrorBody(t, rec)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/chat"},
		{http.MethodPost, "/chat/background"},
		{http.MethodGet, "/chat/jobs/job-1"},
		{http.MethodGet, "/conversations"},
	} {
		rec := f.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRequireUserRejectsGarbageToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/conversations", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatComplete(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t)

	f.limiter.EXPECT().Allow(gomock.Any(), "user:"+testUserID).Return(true, nil)
	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(&model.ChatResponse{ID: "chatcmpl-1", Message: "hi there", Model: "gpt-3.5-turbo"}, nil)
	f.conversations.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&model.Conversation{ID: "conv-1"}, nil)

	rec := f.do(t, http.MethodPost, "/chat", token, model.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hi there", resp.Message)
}

func TestChatRateLimited(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t)

	f.limiter.EXPECT().Allow(gomock.Any(), "user:"+testUserID).Return(false, nil)

	rec := f.do(t, http.MethodPost, "/chat", token, model.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeErrorBody(t, rec)["error"])
}

func TestChatLimiterFailureLetsRequestThrough(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t)

	f.limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(&model.ChatResponse{ID: "chatcmpl-1", Message: "hi"}, nil)
	f.conversations.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&model.Conversation{ID: "conv-1"}, nil)

	rec := f.do(t, http.MethodPost, "/chat", token, model.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChatUpstreamError(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t)

	f.limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, nil)
	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.New(apperrors.CodeUpstream, "provider returned status 500"))

	rec := f.do(t, http.MethodPost, "/chat", token, model.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_error", decodeErrorBody(t, rec)["error"])
}
