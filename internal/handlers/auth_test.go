package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupCreatesEditorAccount(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "new@x.com",
		Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[map[string]string](t, rec)
	require.NotEmpty(t, body["user_id"])

	user, err := f.users.GetByID(context.Background(), body["user_id"])
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

	role, err := f.roles.GetByID(context.Background(), user.RoleID)
	require.NoError(t, err)
	assert.Equal(t, auth.EditorRoleName, role.Name)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	req := SignupRequest{Email: "dup@x.com", Password: "secret"}
	rec := f.do(http.MethodPost, "/api/auth/signup", "", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/signup", "", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "secret"}},
		{"missing password", SignupRequest{Email: "a@x.com"}},
		{"not an email", SignupRequest{Email: "not-an-email", Password: "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/auth/signup", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSignupFailsWhenDefaultRoleMissing(t *testing.T) {
	f := newFixture(t)

	editor, err := f.roles.GetByName(context.Background(), auth.EditorRoleName)
	require.NoError(t, err)
	delete(f.roles.byID, editor.ID)

	rec := f.do(http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "orphan@x.com",
		Password: "secret",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "default user role not configured", decodeBody[ErrorResponse](t, rec).Error)
}

func TestLoginReturnsUsableToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    f.editorA.Email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token := decodeBody[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	me := decodeBody[map[string]string](t, rec)
	assert.Equal(t, f.editorA.ID, me["id"])
	assert.Equal(t, f.editorA.Email, me["email"])
	assert.Equal(t, auth.EditorRoleName, me["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    f.editorA.Email,
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "nobody@x.com",
		Password: testPassword,
	})
	// Unknown account and wrong password are indistinguishable.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody[ErrorResponse](t, rec).Error)
}

func TestMeRequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newFixture(t)

	expired, err := auth.IssueToken(f.editorA.ID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token has expired", decodeBody[ErrorResponse](t, rec).Error)
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	f := newFixture(t)

	ghost := types.User{ID: "00000000-0000-0000-0000-999999999999"}
	rec := f.do(http.MethodGet, "/api/auth/me", f.token(ghost), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
