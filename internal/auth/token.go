package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lazypos/admin-api/internal"
)

// Claims carries the principal inside the signed token so the middleware
// can rebuild it without a database round trip.
type Claims struct {
	UserID      int64   `json:"uid"`
	IsAdmin     bool    `json:"adm"`
	AccountType int     `json:"act"`
	RoleIDs     []int64 `json:"rid"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// GenerateAccessToken signs the full principal into a short-lived token.
func (j *JWTTokenGenerator) GenerateAccessToken(principal *internal.Principal) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      principal.UserID,
		IsAdmin:     principal.IsAdmin,
		AccountType: int(principal.AccountType),
		RoleIDs:     principal.RoleIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprint(principal.UserID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.AccessTokenSecret)
}

// GenerateRefreshToken signs a long-lived token carrying only the user id;
// the principal is rebuilt from storage when it is redeemed.
func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprint(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccessToken rebuilds the principal from an access token. It
// satisfies the transport middleware's TokenVerifier.
func (j *JWTTokenGenerator) VerifyAccessToken(tokenString string) (*internal.Principal, error) {
	claims, err := j.parse(tokenString, j.AccessTokenSecret)
	if err != nil {
		return nil, err
	}
	return &internal.Principal{
		UserID:      claims.UserID,
		IsAdmin:     claims.IsAdmin,
		AccountType: internal.AccountType(claims.AccountType),
		RoleIDs:     claims.RoleIDs,
	}, nil
}

// ValidateRefreshToken returns the user id a refresh token was issued to.
func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (int64, error) {
	claims, err := j.parse(tokenString, j.RefreshTokenSecret)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
