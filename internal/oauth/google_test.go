package oauth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testClientID = "client-123.apps.googleusercontent.com"

type fakeGoogle struct {
	key     *rsa.PrivateKey
	srv     *httptest.Server
	claims  jwt.MapClaims
	failTok bool
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeGoogle{key: k}
	f.srv = httptest.NewServer(http.HandlerFunc(f.token))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoogle) token(w http.ResponseWriter, r *http.Request) {
	if f.failTok || r.FormValue("code") != "good-code" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		return
	}
	idt, err := jwt.NewWithClaims(jwt.SigningMethodRS256, f.claims).SignedString(f.key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "at",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idt,
	})
}

func (f *fakeGoogle) provider() *Google {
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}}
	return newGoogle(&oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:5000/api/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.google.com/o/oauth2/auth",
			TokenURL:  f.srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{oidc.ScopeOpenID, "email", "profile"},
	}, oidc.NewVerifier(googleIssuer, keys, &oidc.Config{ClientID: testClientID}))
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            googleIssuer,
		"aud":            testClientID,
		"sub":            "1098765",
		"email":          "g@x.com",
		"email_verified": true,
		"name":           "G User",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestGoogleAuthURL(t *testing.T) {
	g := newFakeGoogle(t).provider()
	u, err := url.Parse(g.AuthURL("st.123.sig"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "st.123.sig", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Equal(t, domain.ProviderGoogle, g.Name())
}

func TestGoogleExchange(t *testing.T) {
	f := newFakeGoogle(t)
	f.claims = validClaims()

	id, err := f.provider().Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "1098765", id.ExternalID)
	assert.Equal(t, "g@x.com", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "G User", id.DisplayName)
	assert.Equal(t, domain.ProviderGoogle, id.Provider)
}

func TestGoogleExchangeFailures(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		f := newFakeGoogle(t)
		f.claims = validClaims()
		_, err := f.provider().Exchange(context.Background(), "bad-code")
		assert.ErrorIs(t, err, ErrExchange)
	})

	t.Run("wrong audience", func(t *testing.T) {
		f := newFakeGoogle(t)
		f.claims = validClaims()
		f.claims["aud"] = "someone-else"
		_, err := f.provider().Exchange(context.Background(), "good-code")
		assert.ErrorIs(t, err, ErrExchange)
	})

	t.Run("expired id token", func(t *testing.T) {
		f := newFakeGoogle(t)
		f.claims = validClaims()
		f.claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := f.provider().Exchange(context.Background(), "good-code")
		assert.ErrorIs(t, err, ErrExchange)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newFakeGoogle(t)
		f.claims = validClaims()
		delete(f.claims, "email")
		_, err := f.provider().Exchange(context.Background(), "good-code")
		assert.ErrorIs(t, err, domain.ErrProviderAssertionInvalid)
	})
}

func TestNewGoogleRequiresConfig(t *testing.T) {
	_, err := NewGoogle(context.Background(), "", "secret", "http://cb")
	assert.Error(t, err)

	g, err := NewGoogle(context.Background(), testClientID, "secret", "http://cb")
	require.NoError(t, err)
	assert.Contains(t, g.AuthURL("s"), "client_id=")
}
