package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/auth"
	"github.com/Saatvik786/TaskSphere/internal/domain"
	api "github.com/Saatvik786/TaskSphere/internal/http"
	"github.com/Saatvik786/TaskSphere/internal/oauth"
	"github.com/Saatvik786/TaskSphere/internal/repo"
	"github.com/Saatvik786/TaskSphere/internal/security"
	"github.com/Saatvik786/TaskSphere/internal/tasks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const clientURL = "http://localhost:5173"

type published struct {
	Key   string
	Event any
	ReqID string
}

type recordingPub struct {
	mu  sync.Mutex
	out []published
}

func (p *recordingPub) Publish(_ context.Context, key string, ev any, reqID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, published{key, ev, reqID})
	return nil
}

func (p *recordingPub) Close() error { return nil }

func (p *recordingPub) find(key string) (published, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.out {
		if e.Key == key {
			return e, true
		}
	}
	return published{}, false
}

// fakeProvider maps authorization codes to identities.
type fakeProvider struct {
	ids map[string]auth.ExternalIdentity
}

func (f *fakeProvider) Name() string { return domain.ProviderGoogle }

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.google.test/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.ExternalIdentity, error) {
	id, ok := f.ids[code]
	if !ok {
		return nil, oauth.ErrExchange
	}
	return &id, nil
}

type testEnv struct {
	T      *testing.T
	Store  *repo.MemoryStore
	Tokens *security.TokenService
	Google *fakeProvider
	Events *recordingPub
	H      *api.Handler
	Router *gin.Engine
}

func newTestEnv(t *testing.T, opts ...func(*api.Handler)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repo.NewMemoryStore()
	tokens := security.NewTokenService("test-secret", time.Hour)
	authSvc := auth.NewService(store, tokens, security.NewHasher(bcrypt.MinCost))
	pub := &recordingPub{}
	google := &fakeProvider{ids: map[string]auth.ExternalIdentity{}}

	h := api.NewHandler(authSvc, tasks.NewService(store), tokens, store, pub)
	h.Google = google
	h.State = oauth.NewStateSigner("state-secret", 10*time.Minute)
	h.ClientURL = clientURL
	h.Log = zap.NewNop()
	for _, o := range opts {
		o(h)
	}

	return &testEnv{
		T: t, Store: store, Tokens: tokens, Google: google, Events: pub, H: h,
		Router: api.NewRouter(h, []string{clientURL}),
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

type authBody struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

// register creates a local account and returns its token and profile.
func (e *testEnv) register(name, email, pw string) authBody {
	e.T.Helper()
	w := e.do("POST", "/api/auth/register",
		`{"name":"`+name+`","email":"`+email+`","password":"`+pw+`"}`, nil)
	if w.Code != http.StatusCreated {
		e.T.Fatalf("register code=%d body=%s", w.Code, w.Body.String())
	}
	return decode[authBody](e.T, w)
}

var errBoom = errors.New("boom")
