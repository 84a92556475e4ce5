package http

import (
	"context"

	"github.com/Saatvik786/TaskSphere/internal/auth"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/oauth"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"github.com/Saatvik786/TaskSphere/internal/security"
	"github.com/Saatvik786/TaskSphere/internal/tasks"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth   *auth.Service
	Tasks  *tasks.Service
	Tokens *security.TokenService
	Store  Pinger
	Events queue.Publisher

	// Google is nil when the provider is not configured.
	Google oauth.Provider
	State  *oauth.StateSigner

	Limiter         Limiter
	ClientURL       string
	SecureCookies   bool
	ExposeErrDetail bool
	Log             *zap.Logger
}

func NewHandler(a *auth.Service, t *tasks.Service, tokens *security.TokenService, store Pinger, pub queue.Publisher) *Handler {
	if pub == nil {
		pub = queue.NewNoop()
	}
	return &Handler{Auth: a, Tasks: t, Tokens: tokens, Store: store, Events: pub}
}

func (h *Handler) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return log.L()
}
