package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sarthakdev/medium-be/internal/auth"
	"github.com/sarthakdev/medium-be/internal/models"
	"github.com/sarthakdev/medium-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	createUser   func(ctx context.Context, email, password, name string) (models.User, error)
	authenticate func(ctx context.Context, email, password string) (models.User, error)
	getByID      func(ctx context.Context, id string) (models.User, error)
}

func (f *fakeUserService) CreateUser(ctx context.Context, email, password, name string) (models.User, error) {
	return f.createUser(ctx, email, password, name)
}

func (f *fakeUserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	return f.authenticate(ctx, email, password)
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return f.getByID(ctx, id)
}

func testTokens() *auth.Service {
	return auth.NewService("test-secret")
}

func TestSignup(t *testing.T) {
	svc := &fakeUserService{
		createUser: func(_ context.Context, email, password, name string) (models.User, error) {
			assert.Equal(t, "a@x.com", email)
			assert.Equal(t, "password", password)
			assert.Equal(t, "A", name)
			return models.User{ID: "user-1", Email: email, Name: name}, nil
		},
	}
	tokens := testTokens()
	h := NewUserHandler(svc, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signup",
		strings.NewReader(`{"name":"A","email":"a@x.com","password":"password"}`))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	claims, err := tokens.ValidateJWT(body["jwt"])
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSignup_InvalidShape(t *testing.T) {
	for name, payload := range map[string]string{
		"missing email":  `{"password":"password"}`,
		"bad email":      `{"email":"not-an-email","password":"password"}`,
		"short password": `{"email":"a@x.com","password":"pw"}`,
		"not json":       `title=x`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeUserService{
				createUser: func(context.Context, string, string, string) (models.User, error) {
					t.Fatal("CreateUser must not be called after failed validation")
					return models.User{}, nil
				},
			}
			h := NewUserHandler(svc, testTokens())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signup", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			h.Signup(rec, req)

			assert.Equal(t, http.StatusLengthRequired, rec.Code)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := &fakeUserService{
		createUser: func(context.Context, string, string, string) (models.User, error) {
			return models.User{}, services.ErrEmailTaken
		},
	}
	h := NewUserHandler(svc, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signup",
		strings.NewReader(`{"email":"a@x.com","password":"password"}`))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	// Generic message only; the underlying error stays server-side.
	assert.Equal(t, "Error while signing up", body["error"])
}

func TestSignin(t *testing.T) {
	svc := &fakeUserService{
		authenticate: func(_ context.Context, email, password string) (models.User, error) {
			assert.Equal(t, "a@x.com", email)
			assert.Equal(t, "password", password)
			return models.User{ID: "user-1", Email: email}, nil
		},
	}
	tokens := testTokens()
	h := NewUserHandler(svc, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signin",
		strings.NewReader(`{"email":"a@x.com","password":"password"}`))
	rec := httptest.NewRecorder()
	h.Signin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)

	claims, err := tokens.ValidateJWT(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSignin_NotFound(t *testing.T) {
	svc := &fakeUserService{
		authenticate: func(context.Context, string, string) (models.User, error) {
			return models.User{}, services.ErrNotFound
		},
	}
	h := NewUserHandler(svc, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signin",
		strings.NewReader(`{"email":"nobody@x.com","password":"password"}`))
	rec := httptest.NewRecorder()
	h.Signin(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "User not found", body["error"])
}

func TestMe(t *testing.T) {
	svc := &fakeUserService{
		getByID: func(_ context.Context, id string) (models.User, error) {
			assert.Equal(t, "user-1", id)
			return models.User{ID: id, Email: "a@x.com", Name: "A"}, nil
		},
	}
	h := NewUserHandler(svc, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/auth", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "a@x.com", user.Email)
}

func TestMe_MissingRowKeeps200(t *testing.T) {
	svc := &fakeUserService{
		getByID: func(context.Context, string) (models.User, error) {
			return models.User{}, services.ErrNotFound
		},
	}
	h := NewUserHandler(svc, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/auth", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	// Documented contract: the missing-row case answers 200 with an error body.
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "User not found", body["error"])
}
