package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"navega/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "navega-api"
	tokenAudience = "navega-client"

	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired and wrongly signed credentials.
var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Role models.Role `json:"role,omitempty"`
	Type string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is what login and registration hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService signs and verifies the HS256 access and refresh credentials.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssuePair signs a fresh access and refresh credential for user.
func (s *TokenService) IssuePair(user *models.User) (TokenPair, error) {
	access, err := s.IssueAccess(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user.ID, "", tokenTypeRefresh, RefreshTokenTTL, s.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess signs an access credential carrying the user's current role.
func (s *TokenService) IssueAccess(user *models.User) (string, error) {
	return s.sign(user.ID, user.Role, tokenTypeAccess, AccessTokenTTL, s.accessSecret)
}

func (s *TokenService) sign(userID uint, role models.Role, typ string, ttl time.Duration, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%s token secret not configured", typ)
	}
	now := s.now()
	claims := tokenClaims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access credential and returns its principal.
func (s *TokenService) VerifyAccess(token string) (*models.Principal, error) {
	claims, err := s.parse(token, tokenTypeAccess, s.accessSecret)
	if err != nil {
		return nil, err
	}
	userID, err := subjectID(claims)
	if err != nil {
		return nil, err
	}
	return &models.Principal{UserID: userID, Role: claims.Role}, nil
}

// VerifyRefresh validates a refresh credential and returns the user id it
// was issued to.
func (s *TokenService) VerifyRefresh(token string) (uint, error) {
	claims, err := s.parse(token, tokenTypeRefresh, s.refreshSecret)
	if err != nil {
		return 0, err
	}
	return subjectID(claims)
}

func (s *TokenService) parse(token, typ string, secret []byte) (*tokenClaims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return &claims, nil
}

func subjectID(claims *tokenClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}
