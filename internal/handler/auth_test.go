package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockswift/internal/config"
	"stockswift/internal/dto"
	"stockswift/internal/middleware"
	"stockswift/internal/model"
	"stockswift/internal/service"
	"stockswift/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── In-memory UserRepository stub ────────────────────────────────────────────

type memUserRepo struct{ users map[string]*model.User }

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	u.ID = uuid.New()
	r.users[u.Email] = u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newAuthRouter(repo *memUserRepo) (*gin.Engine, *token.Service) {
	gin.SetMode(gin.TestMode)
	tokens := token.NewService(&config.Config{JWTSecret: testSecret})
	h := NewAuthHandler(service.NewAuthService(repo, tokens), tokens)

	r := gin.New()
	auth := r.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", middleware.Auth(tokens), h.Me)
	return r, tokens
}

func doJSON(r *gin.Engine, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := http.Response{Header: w.Header()}
	for _, ck := range res.Cookies() {
		if ck.Name == token.CookieName {
			return ck
		}
	}
	t.Fatalf("no %q cookie in response", token.CookieName)
	return nil
}

// ── Signup ───────────────────────────────────────────────────────────────────

func TestSignupEndpoint(t *testing.T) {
	r, tokens := newAuthRouter(newMemUserRepo())

	w := doJSON(r, http.MethodPost, "/auth/signup", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Signup successful", resp.Message)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)

	// The same token lands in an httpOnly session cookie
	ck := sessionCookie(t, w)
	assert.Equal(t, resp.Token, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, int(token.TTL.Seconds()), ck.MaxAge)

	_, err := tokens.Verify(ck.Value)
	assert.NoError(t, err)
}

func TestSignupEndpointErrors(t *testing.T) {
	r, _ := newAuthRouter(newMemUserRepo())

	// missing fields
	w := doJSON(r, http.MethodPost, "/auth/signup", gin.H{"email": "a@b.c", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Name, email and password are required"}`, w.Body.String())

	// short password
	w = doJSON(r, http.MethodPost, "/auth/signup", gin.H{"name": "A", "email": "a@b.c", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Password must be at least 6 characters"}`, w.Body.String())

	// duplicate email
	w = doJSON(r, http.MethodPost, "/auth/signup", gin.H{"name": "A", "email": "a@b.c", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, http.MethodPost, "/auth/signup", gin.H{"name": "B", "email": "a@b.c", "password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Email already in use"}`, w.Body.String())
}

func TestSignupEndpointMalformedJSON(t *testing.T) {
	r, _ := newAuthRouter(newMemUserRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// unparseable bodies fall under the catch-all server error contract
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLoginEndpoint(t *testing.T) {
	repo := newMemUserRepo()
	r, _ := newAuthRouter(repo)

	w := doJSON(r, http.MethodPost, "/auth/signup", gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email": "bob@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, resp.Token, sessionCookie(t, w).Value)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	repo := newMemUserRepo()
	r, _ := newAuthRouter(repo)

	doJSON(r, http.MethodPost, "/auth/signup", gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "hunter22",
	})

	for _, body := range []gin.H{
		{"email": "bob@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "hunter22"},
	} {
		w := doJSON(r, http.MethodPost, "/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())
	}
}

// ── Me ───────────────────────────────────────────────────────────────────────

func TestMeEndpoint(t *testing.T) {
	repo := newMemUserRepo()
	r, tokens := newAuthRouter(repo)

	w := doJSON(r, http.MethodPost, "/auth/signup", gin.H{
		"name": "Carol", "email": "carol@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var signup dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))

	t.Run("bearer header", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/auth/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signup.Token)
		})
		require.Equal(t, http.StatusOK, w.Code)
		var me dto.MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, "carol@example.com", me.User.Email)
		assert.Equal(t, "user", me.User.Role)
	})

	t.Run("cookie", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/auth/me", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: token.CookieName, Value: signup.Token})
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Missing token"}`, w.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/auth/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Invalid token"}`, w.Body.String())
	})

	t.Run("valid token for deleted user", func(t *testing.T) {
		tok, err := tokens.Issue(uuid.New(), "ghost@example.com")
		require.NoError(t, err)
		w := doJSON(r, http.MethodGet, "/auth/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+tok)
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())
	})
}

// ── Logout ───────────────────────────────────────────────────────────────────

func TestLogoutEndpointClearsCookie(t *testing.T) {
	r, _ := newAuthRouter(newMemUserRepo())

	w := doJSON(r, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, w.Body.String())

	ck := sessionCookie(t, w)
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge)
}
