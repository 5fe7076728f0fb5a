package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens. Tokens are stateless:
// they stay valid until exp and there is no server-side revocation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

func (s *TokenService) Issue(u *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl).Truncate(time.Second)
	claims := &Claims{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse validates signature, algorithm and expiry and returns the caller.
func (s *TokenService) Parse(raw string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, apperr.Wrap(apperr.Unauthenticated, "Token expired, please log in again", err)
		}
		return models.Identity{}, apperr.Wrap(apperr.Unauthenticated, "Invalid token", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, apperr.New(apperr.Unauthenticated, "Invalid token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Identity{}, apperr.Wrap(apperr.Unauthenticated, "Invalid token subject", err)
	}
	if !models.RoleValid(claims.Role) {
		return models.Identity{}, apperr.New(apperr.Unauthenticated, "Invalid token role")
	}
	return models.Identity{UserID: id, Username: claims.Username, Role: claims.Role}, nil
}
