package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/dto"
	"github.com/bizgrid/bizgrid-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, *testutil.MockTokenService, *testutil.MockJWTService, *AuthHandler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)

	handler := NewAuthHandler(mockUserService, mockTokenService, mockJWTService)

	return mockUserService, mockTokenService, mockJWTService, handler
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	pair, err := jwtSvc.GenerateTokenPair(userID, email)
	require.NoError(t, err)
	return pair.AccessToken
}

func postJSON(t *testing.T, app http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{
		ID:    userID,
		Email: "new@example.com",
		Name:  "New User",
	}
	tokenPair := &services.TokenPair{
		AccessToken:  "access-token-123",
		RefreshToken: "refresh-token-456",
		ExpiresIn:    900,
	}

	mockUserService.On("Create", mock.Anything, "new@example.com", "New User", "password123", false).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "new@example.com").Return(tokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", handler.Register)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "New@Example.com",
		Name:     "New User",
		Password: "password123",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.AuthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", response.User.Email)
	assert.Equal(t, "access-token-123", response.Token.AccessToken)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", handler.Register)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at least 8 characters")
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", handler.Register)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Name:     "New User",
		Password: "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "a valid email is required")
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	mockUserService.On("Create", mock.Anything, "taken@example.com", "New User", "password123", false).
		Return(nil, services.ErrEmailTaken)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", handler.Register)

	rec := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "taken@example.com",
		Name:     "New User",
		Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is already registered")

	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com", Name: "Test User"}
	tokenPair := &services.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
	}

	mockUserService.On("Authenticate", mock.Anything, "test@example.com", "password123").Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(tokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{
		Email:    "Test@Example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.AuthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, userID, response.User.ID)

	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	mockUserService.On("Authenticate", mock.Anything, "test@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)

	rec := postJSON(t, app, "/auth/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")

	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com", Name: "Test User"}

	oldRefreshToken := "old-refresh-token"
	newTokenPair := &services.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresIn:    900,
	}

	mockJWTService.On("ValidateRefreshToken", oldRefreshToken).Return(userID, nil)
	mockTokenService.On("ValidateRefreshToken", mock.Anything, mock.Anything).Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockTokenService.On("RevokeRefreshToken", mock.Anything, mock.Anything).Return(nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(newTokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: oldRefreshToken})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	_, _, mockJWTService, handler := setupAuthTest(t)

	mockJWTService.On("ValidateRefreshToken", "invalid-token").Return(uuid.Nil, errors.New("invalid token"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "invalid-token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")

	mockJWTService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	rec := postJSON(t, app, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token is required")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	mockTokenService.On("RevokeRefreshToken", mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	rec := postJSON(t, app, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: "some-refresh-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Logout_EmptyToken(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	rec := postJSON(t, app, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: ""})

	// Still succeeds with an empty token
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)

	userID := uuid.New()
	mockTokenService.On("RevokeAllUserTokens", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/auth/logout-all", handler.LogoutAll)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Me_Success(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com", Name: "Test User", EmailVerified: true}
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/users/me", handler.Me)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.UserResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, userID, response.ID)
	assert.True(t, response.EmailVerified)

	mockUserService.AssertExpectations(t)
}
