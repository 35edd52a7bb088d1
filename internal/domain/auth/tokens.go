package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yanqian/carbonlens/pkg/util"
)

const (
	tokenIssuer      = "carbonlens"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	TokenType string `json:"type"`
}

// signer issues and verifies HS256 tokens. The nickname travels in the token
// so compute requests can attribute runs without a user lookup.
type signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        util.Clock
}

func newSigner(cfg Config, now util.Clock) *signer {
	s := &signer{secret: []byte(cfg.Secret), accessTTL: cfg.TokenTTL, refreshTTL: cfg.RefreshTokenTTL, now: now}
	if s.accessTTL <= 0 {
		s.accessTTL = time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	return s
}

func (s *signer) pair(user User) (access, refresh string, err error) {
	if access, err = s.sign(user, tokenTypeAccess, s.accessTTL); err != nil {
		return "", "", err
	}
	if refresh, err = s.sign(user, tokenTypeRefresh, s.refreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *signer) sign(user User, tokenType string, ttl time.Duration) (string, error) {
	issued := s.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		UserID:    user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", storeFailure("failed to sign token", err)
	}
	return signed, nil
}

// verify parses raw and requires the given token type.
func (s *signer) verify(raw, tokenType string) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, invalidToken("token validation failed", err)
	}
	if claims.TokenType != tokenType {
		return Claims{}, invalidToken("expected a "+tokenType+" token", nil)
	}
	return Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Nickname:  claims.Nickname,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
