package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
)

func testUser(role string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "alice", Name: "Alice", Role: role}
}

func Test_TokenRoundTrip(t *testing.T) {
	ts := service.NewTokenService("secret", time.Hour)
	u := testUser(models.RoleEditor)

	raw, expiresAt, err := ts.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	id, err := ts.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, models.RoleEditor, id.Role)
}

func Test_TokenDefaultTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := service.NewTokenService("secret", 0).WithClock(func() time.Time { return now })

	_, expiresAt, err := ts.Issue(testUser(models.RoleViewer))
	require.NoError(t, err)
	assert.Equal(t, now.Add(service.DefaultTokenTTL), expiresAt)
}

func Test_TokenExpired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := service.NewTokenService("secret", time.Hour).WithClock(func() time.Time { return issued })
	raw, _, err := ts.Issue(testUser(models.RoleAdmin))
	require.NoError(t, err)

	later := ts.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = later.Parse(raw)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "expired")
}

func Test_TokenRejected(t *testing.T) {
	ts := service.NewTokenService("secret", time.Hour)
	good, _, err := ts.Issue(testUser(models.RoleAdmin))
	require.NoError(t, err)

	foreign, _, err := service.NewTokenService("other", time.Hour).Issue(testUser(models.RoleAdmin))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   models.RoleAdmin,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   models.RoleAdmin,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "ROOT",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not-a-token"},
		{name: "tampered", raw: good + "x"},
		{name: "wrong secret", raw: foreign},
		{name: "alg none", raw: none},
		{name: "missing exp", raw: noExp},
		{name: "unknown role", raw: badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
		})
	}
}

func Test_PasswordHash(t *testing.T) {
	service.PasswordCost = 4
	hash, err := service.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, service.CheckPassword(hash, "hunter22"))
	assert.False(t, service.CheckPassword(hash, "hunter23"))

	_, err = service.HashPassword(strings.Repeat("x", 73))
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
