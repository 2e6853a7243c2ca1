package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/service/auth"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// memoryUserStore is an in-memory store.UserStore that hashes with the
// cheapest bcrypt cost.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*domain.User)}
}

func (m *memoryUserStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := user.Validate(); err != nil {
		return err
	}
	if _, exists := m.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hash)
	user.Password = ""
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func newAuthTestHandler(t *testing.T) (*AuthHandler, *memoryUserStore, auth.JWTService) {
	t.Helper()

	users := newMemoryUserStore()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-long-enough!!",
		TokenLifetimeMinutes: 7 * 24 * 60,
	})
	require.NoError(t, err)

	return NewAuthHandler(users, jwtService, auth.NewBcryptVerifier()), users, jwtService
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	handler, _, jwtService := newAuthTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse battery",
		"name":     "Alice",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.NotEmpty(t, resp.Token)

	// The token decodes back to the new user's ID.
	claims, err := jwtService.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegisterNeverEchoesPassword(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "super-secret-password",
		"name":     "Alice",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "super-secret-password")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)
	body := map[string]string{
		"email":    "alice@example.com",
		"password": "pw-one-two-three",
		"name":     "Alice",
	}

	rec := postJSON(t, handler.Register, "/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Register, "/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

func TestRegisterValidation(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)

	testCases := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "pw-one-two-three", "name": "Alice"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "pw", "name": "Alice"}},
		{"missing password", map[string]string{"email": "a@example.com", "name": "Alice"}},
		{"missing name", map[string]string{"email": "a@example.com", "password": "pw-one"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handler.Register, "/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	handler, _, jwtService := newAuthTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"email":    "bob@example.com",
		"password": "bobs-password-123",
		"name":     "Bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, "/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "bobs-password-123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "bob@example.com", resp.User.Email)

	claims, err := jwtService.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"email":    "bob@example.com",
		"password": "bobs-password-123",
		"name":     "Bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password and unknown email produce identical responses.
	wrongPassword := postJSON(t, handler.Login, "/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "not-the-password",
	})
	unknownEmail := postJSON(t, handler.Login, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "bobs-password-123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)

	rec := postJSON(t, handler.Login, "/auth/login", map[string]string{
		"email": "bob@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEmailIsCaseSensitive(t *testing.T) {
	handler, _, _ := newAuthTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"email":    "carol@example.com",
		"password": "carols-password",
		"name":     "Carol",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, "/auth/login", map[string]string{
		"email":    "Carol@example.com",
		"password": "carols-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
