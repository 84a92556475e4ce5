package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "tasksphere"

type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access tokens. It signs with HS256 by default, or with
// RS256 and a kid header when a KeyManager is set. Immutable after construction.
type TokenService struct {
	secret []byte
	keys   *KeyManager
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func NewTokenServiceRS256(km *KeyManager, ttl time.Duration) *TokenService {
	return &TokenService{keys: km, ttl: ttl, now: time.Now}
}

// WithClock returns a copy that reads time from now. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Keys() *KeyManager { return s.keys }

func (s *TokenService) method() jwt.SigningMethod {
	if s.keys != nil {
		return jwt.SigningMethodRS256
	}
	return jwt.SigningMethodHS256
}

// Issue signs a token for uid that expires after the configured TTL.
func (s *TokenService) Issue(uid string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	c := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(s.method(), c)
	if s.keys != nil {
		signed, err := s.keys.sign(t)
		return signed, exp, err
	}
	signed, err := t.SignedString(s.secret)
	return signed, exp, err
}

// Verify returns the uid carried by token. Errors are domain.ErrExpiredToken for a valid
// signature past expiry and domain.ErrInvalidToken for everything else.
func (s *TokenService) Verify(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method().Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return "", fmt.Errorf("%w: no uid", domain.ErrInvalidToken)
	}
	return uid, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if s.keys == nil {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}
	kid, _ := t.Header["kid"].(string)
	pk, ok := s.keys.PublicKey(kid)
	if !ok {
		return nil, errors.New("no key by kid")
	}
	return pk, nil
}
