package oauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrStateInvalid = errors.New("oauth state invalid")
	ErrStateExpired = errors.New("oauth state expired")
)

// StateSigner mints CSRF state values of the form nonce.issuedAt.mac.
type StateSigner struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewStateSigner(secret string, maxAge time.Duration) *StateSigner {
	return &StateSigner{key: []byte(secret), maxAge: maxAge, now: time.Now}
}

func (s *StateSigner) MaxAge() time.Duration { return s.maxAge }

func (s *StateSigner) sign(raw string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *StateSigner) New() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(b) + "." + strconv.FormatInt(s.now().Unix(), 10)
	return raw + "." + s.sign(raw), nil
}

func (s *StateSigner) Verify(state string) error {
	i := strings.LastIndexByte(state, '.')
	if i <= 0 {
		return ErrStateInvalid
	}
	raw, sig := state[:i], state[i+1:]
	if !hmac.Equal([]byte(s.sign(raw)), []byte(sig)) {
		return ErrStateInvalid
	}
	_, ts, ok := strings.Cut(raw, ".")
	if !ok {
		return ErrStateInvalid
	}
	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrStateInvalid
	}
	if s.now().Sub(time.Unix(issued, 0)) > s.maxAge {
		return ErrStateExpired
	}
	return nil
}
