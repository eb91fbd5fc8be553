package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"movie-tracker/internal/domain"
	"movie-tracker/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	id, ok := m.usersByAuth[provider+"|"+subject]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthProvider = provider
	user.AuthSubject = subject
	m.usersByID[id] = user
	m.usersByAuth[provider+"|"+subject] = id
	return nil
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerifiedAt = &verifiedAt
	m.usersByID[id] = user
	return nil
}

type mockTokenRepo struct {
	tokens map[string]domain.VerificationToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]domain.VerificationToken)}
}

func (m *mockTokenRepo) Create(_ context.Context, token domain.VerificationToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenRepo) GetValid(_ context.Context, token string, now time.Time) (domain.VerificationToken, error) {
	t, ok := m.tokens[token]
	if !ok || !t.ExpiresAt.After(now) {
		return domain.VerificationToken{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTokenRepo) Consume(_ context.Context, token string, now time.Time) error {
	t, ok := m.tokens[token]
	if !ok || !t.ExpiresAt.After(now) {
		return pgx.ErrNoRows
	}
	delete(m.tokens, token)
	return nil
}

type mockEmailSender struct {
	lastTo    string
	lastToken string
	err       error
}

func (m *mockEmailSender) SendVerificationEmail(_ context.Context, toEmail string, token string) error {
	m.lastTo = toEmail
	m.lastToken = token
	return m.err
}

type accountFixture struct {
	router *gin.Engine
	users  *mockUserRepo
	tokens *mockTokenRepo
	sender *mockEmailSender
	jwtSvc *service.JWTService
}

func setupAccountRouter() accountFixture {
	gin.SetMode(gin.TestMode)

	users := newMockUserRepo()
	tokens := newMockTokenRepo()
	sender := &mockEmailSender{}
	accountSvc := service.NewAccountService(zap.NewNop(), users, tokens, sender, bcrypt.MinCost, 24*time.Hour)
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour, nil)
	contentSvc := service.NewContentService(nil, nil)

	accountH := NewAccountHandler(zap.NewNop(), accountSvc, jwtSvc)
	contentH := NewContentHandler(zap.NewNop(), contentSvc)
	searchH := NewSearchHandler(zap.NewNop(), nil)
	router := NewRouter(zap.NewNop(), jwtSvc, accountH, contentH, searchH)

	return accountFixture{
		router: router,
		users:  users,
		tokens: tokens,
		sender: sender,
		jwtSvc: jwtSvc,
	}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func signupBody() map[string]string {
	return map[string]string{
		"name":     "Jo",
		"email":    "jo@x.com",
		"password": "Weak1aaaa",
	}
}

func TestSignup_Created(t *testing.T) {
	fx := setupAccountRouter()

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected confirmation message")
	}

	user, err := fx.users.GetByEmail(context.Background(), "jo@x.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.EmailVerifiedAt != nil {
		t.Error("user must start unverified")
	}
	if len(fx.tokens.tokens) != 1 {
		t.Fatalf("expected 1 token row, got %d", len(fx.tokens.tokens))
	}
	for _, tok := range fx.tokens.tokens {
		if tok.Identifier != "jo@x.com" {
			t.Errorf("token identifier: got %q", tok.Identifier)
		}
	}
}

func TestSignup_ValidationErrors(t *testing.T) {
	fx := setupAccountRouter()

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "J",
		"email":    "not-an-email",
		"password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Errors["name"] != "Name must be at least 2 characters" {
		t.Errorf("name error: %q", resp.Errors["name"])
	}
	if resp.Errors["email"] != "Please enter a valid email" {
		t.Errorf("email error: %q", resp.Errors["email"])
	}
	if resp.Errors["password"] != "Password must be at least 8 characters" {
		t.Errorf("password error: %q", resp.Errors["password"])
	}
	if len(fx.users.usersByID) != 0 || len(fx.tokens.tokens) != 0 {
		t.Error("validation failure must not create records")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	fx := setupAccountRouter()

	if rec := performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody()); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: %d", rec.Code)
	}

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Errors["email"] != "An account with this email already exists" {
		t.Errorf("email error: %q", resp.Errors["email"])
	}
	if len(fx.users.usersByID) != 1 {
		t.Error("duplicate signup must not create a second user")
	}
}

func TestSignup_EmailFailureStillCreated(t *testing.T) {
	fx := setupAccountRouter()
	fx.sender.err = errors.New("smtp down")

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 despite email failure, got %d", rec.Code)
	}
	if len(fx.tokens.tokens) != 1 {
		t.Error("token must still be created")
	}
}

func TestVerify_Success(t *testing.T) {
	fx := setupAccountRouter()

	performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())
	token := fx.sender.lastToken
	if token == "" {
		t.Fatal("no token issued")
	}

	rec := performRequest(fx.router, http.MethodGet, "/api/auth/verify?token="+token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Email verified successfully" {
		t.Errorf("message: %q", resp.Message)
	}

	user, _ := fx.users.GetByEmail(context.Background(), "jo@x.com")
	if user.EmailVerifiedAt == nil {
		t.Error("user must be verified")
	}

	// Mismo token otra vez: ya consumido.
	rec = performRequest(fx.router, http.MethodGet, "/api/auth/verify?token="+token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second verify: expected status 400, got %d", rec.Code)
	}
}

func TestVerify_MissingToken(t *testing.T) {
	fx := setupAccountRouter()

	rec := performRequest(fx.router, http.MethodGet, "/api/auth/verify", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Verification token is required" {
		t.Errorf("message: %q", resp.Message)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	fx := setupAccountRouter()

	// Token emitido hace 25 horas con TTL de 24.
	_ = fx.tokens.Create(context.Background(), domain.VerificationToken{
		Identifier: "jo@x.com",
		Token:      "stale-token",
		ExpiresAt:  time.Now().UTC().Add(-time.Hour),
	})

	rec := performRequest(fx.router, http.MethodGet, "/api/auth/verify?token=stale-token", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Invalid or expired verification token" {
		t.Errorf("message: %q", resp.Message)
	}
}

func TestVerify_OrphanToken(t *testing.T) {
	fx := setupAccountRouter()

	_ = fx.tokens.Create(context.Background(), domain.VerificationToken{
		Identifier: "ghost@x.com",
		Token:      "orphan-token",
		ExpiresAt:  time.Now().UTC().Add(time.Hour),
	})

	rec := performRequest(fx.router, http.MethodGet, "/api/auth/verify?token=orphan-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "User not found" {
		t.Errorf("message: %q", resp.Message)
	}
}

func TestSignin(t *testing.T) {
	fx := setupAccountRouter()
	performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())

	t.Run("valid credentials", func(t *testing.T) {
		rec := performRequest(fx.router, http.MethodPost, "/api/auth/signin", map[string]string{
			"email":    "jo@x.com",
			"password": "Weak1aaaa",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Tokens service.TokenPair `json:"tokens"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
			t.Error("expected token pair")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := performRequest(fx.router, http.MethodPost, "/api/auth/signin", map[string]string{
			"email":    "jo@x.com",
			"password": "Wrong1aaa",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestOAuthSignin(t *testing.T) {
	fx := setupAccountRouter()

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/oauth", map[string]string{
		"provider": "google",
		"subject":  "sub-1",
		"email":    "fed@x.com",
		"name":     "Fed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := fx.users.GetByAuth(context.Background(), "google", "sub-1")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.EmailVerifiedAt == nil {
		t.Error("federated user must be verified")
	}

	rec = performRequest(fx.router, http.MethodPost, "/api/auth/oauth", map[string]string{
		"provider": "google",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing subject: expected status 400, got %d", rec.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	fx := setupAccountRouter()
	performRequest(fx.router, http.MethodPost, "/api/auth/signup", signupBody())

	rec := performRequest(fx.router, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "jo@x.com",
		"password": "Weak1aaaa",
	})
	var signin struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &signin); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = performRequest(fx.router, http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": signin.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected status 200, got %d", rec.Code)
	}

	var refreshed struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = performRequest(fx.router, http.MethodPost, "/api/auth/logout", map[string]string{
		"refresh_token": refreshed.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected status 204, got %d", rec.Code)
	}

	rec = performRequest(fx.router, http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": refreshed.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected status 401, got %d", rec.Code)
	}
}
