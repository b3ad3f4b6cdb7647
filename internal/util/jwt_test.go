package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"sheet_lms_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	user := model.User{ID: "u1", Email: "ada@example.com", Role: model.Instructor}
	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, model.Instructor, claims.Role)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(model.User{ID: "u1", Role: model.Student}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: "u1", Role: model.Admin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestGetUserFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetUserFromContext(c))

	SetUser(c, &Claims{UserID: "u1"})
	require.NotNil(t, GetUserFromContext(c))
	assert.Equal(t, "u1", GetUserFromContext(c).UserID)
}

func TestJWT_RejectsForeignIssuer(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		Role:   model.Student,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT(model.User{ID: "u1"}, "", time.Hour)
	assert.Error(t, err)
}

func TestClaims_CanAccess(t *testing.T) {
	var none *Claims
	assert.False(t, none.CanAccess("u1"))
	assert.True(t, (&Claims{UserID: "u1", Role: model.Student}).CanAccess("u1"))
	assert.False(t, (&Claims{UserID: "u2", Role: model.Instructor}).CanAccess("u1"))
	assert.True(t, (&Claims{UserID: "root", Role: model.Admin}).CanAccess("u1"))
}
